package maya

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/scene"
)

// Error codes the listener returns. Relation codes mean the scene already
// looks the way the caller wanted; everything else is a real failure.
const (
	codeNodeMissing   = 1001
	codeNodeExists    = 1002
	codeBadHandle     = 1003
	codeCommandFailed = 1004
	codeAlreadyChild  = 1010
	codeAlreadyRoot   = 1011
)

var _ scene.Scene = (*Session)(nil)

type wirePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toWire(v r3.Vec) wirePosition { return wirePosition{X: v.X, Y: v.Y, Z: v.Z} }
func (p wirePosition) vec() r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// hostError wraps a failed call, tagging relation errors as benign so the
// rig layer can tolerate them.
func hostError(op string, err error) error {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case codeAlreadyChild, codeAlreadyRoot:
			return fmt.Errorf("%s: %s: %w", op, rpcErr.Message, scene.ErrBenign)
		}
		return fmt.Errorf("%s: %s (code %d)", op, rpcErr.Message, rpcErr.Code)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Session) Selection(ctx context.Context) ([]string, error) {
	var res struct {
		Handles []string `json:"handles"`
	}
	if err := s.call(ctx, "scene/selection", nil, &res); err != nil {
		return nil, hostError("query selection", err)
	}
	return res.Handles, nil
}

func (s *Session) VertexPosition(ctx context.Context, handle string) (r3.Vec, error) {
	params := struct {
		Handle string `json:"handle"`
	}{handle}
	var res wirePosition
	if err := s.call(ctx, "scene/vertexPosition", params, &res); err != nil {
		return r3.Vec{}, hostError("vertex position", err)
	}
	return res.vec(), nil
}

func (s *Session) CreateJoint(ctx context.Context, name string, at r3.Vec) error {
	params := struct {
		Name     string       `json:"name"`
		Position wirePosition `json:"position"`
	}{name, toWire(at)}
	var res struct {
		Name string `json:"name"`
	}
	if err := s.call(ctx, "scene/createJoint", params, &res); err != nil {
		return hostError("create joint", err)
	}
	if res.Name != name {
		// Maya silently renames on collision; the rig's bookkeeping relies
		// on exact names, so surface it.
		return fmt.Errorf("create joint: host created %q instead of %q", res.Name, name)
	}
	return nil
}

func (s *Session) DeleteNode(ctx context.Context, name string) error {
	params := struct {
		Name string `json:"name"`
	}{name}
	if err := s.call(ctx, "scene/deleteNode", params, nil); err != nil {
		return hostError("delete node", err)
	}
	return nil
}

func (s *Session) NodeExists(ctx context.Context, name string) (bool, error) {
	params := struct {
		Name string `json:"name"`
	}{name}
	var res struct {
		Exists bool `json:"exists"`
	}
	if err := s.call(ctx, "scene/nodeExists", params, &res); err != nil {
		return false, hostError("node exists", err)
	}
	return res.Exists, nil
}

func (s *Session) Parent(ctx context.Context, child, parent string) error {
	params := struct {
		Child  string `json:"child"`
		Parent string `json:"parent"`
	}{child, parent}
	if err := s.call(ctx, "scene/parent", params, nil); err != nil {
		return hostError("parent", err)
	}
	return nil
}

func (s *Session) Unparent(ctx context.Context, child string) error {
	params := struct {
		Child string `json:"child"`
	}{child}
	if err := s.call(ctx, "scene/unparent", params, nil); err != nil {
		return hostError("unparent", err)
	}
	return nil
}

func (s *Session) ClearSelection(ctx context.Context) error {
	if err := s.call(ctx, "scene/clearSelection", nil, nil); err != nil {
		return hostError("clear selection", err)
	}
	return nil
}

// Settle blocks until the host has flushed its idle queue, plus the
// configured extra delay for scenes that need the viewport to catch up.
func (s *Session) Settle(ctx context.Context) error {
	if err := s.call(ctx, "scene/idle", nil, nil); err != nil {
		return hostError("settle", err)
	}
	if s.cfg.SettleDelay > 0 {
		select {
		case <-time.After(s.cfg.SettleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Session) OpenHelp(ctx context.Context, url string) error {
	params := struct {
		URL string `json:"url"`
	}{url}
	if err := s.call(ctx, "app/openHelp", params, nil); err != nil {
		return hostError("open help", err)
	}
	return nil
}
