// Package rig models a bipedal joint rig: placement records for every
// skeleton joint, a resizable spine chain interpolated between pelvis and
// neck, bilateral mirroring, and the two-pass bone assembly that parents
// the joints into a hierarchy.
//
// All host interaction goes through scene.Scene; the rig itself keeps no
// connection state and persists nothing. A Rig is not safe for concurrent
// use, callers serialize access.
package rig

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/logger"
	"github.com/alucardeht/maya-rig-mcp/internal/scene"
)

// Rig owns the joint records of one character plus the spine chain, and
// drives the host scene through the Scene interface.
type Rig struct {
	scene scene.Scene
	log   *slog.Logger

	joints map[string]*Joint // keyed by lowercased canonical name
	order  []string
	spine  *Spine
}

func New(sc scene.Scene, log *slog.Logger) *Rig {
	if log == nil {
		log = logger.ForComponent("rig")
	}

	r := &Rig{
		scene:  sc,
		log:    log,
		joints: make(map[string]*Joint),
		order:  catalogNames(),
		spine:  newSpine(defaultHelpURL),
	}
	for _, name := range r.order {
		r.joints[strings.ToLower(name)] = newJoint(name, defaultHelpURL)
	}
	return r
}

// Joint resolves a catalog joint by name, case-insensitively.
func (r *Rig) Joint(name string) (*Joint, error) {
	j, ok := r.joints[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJoint, name)
	}
	return j, nil
}

// JointNames returns the catalog in UI order.
func (r *Rig) JointNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Rig) Spine() *Spine { return r.spine }

// createNode clears the host selection before creating, because a new
// joint auto-parents under whatever is still selected.
func (r *Rig) createNode(ctx context.Context, name string, at r3.Vec) error {
	if err := r.scene.ClearSelection(ctx); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	if err := r.scene.CreateJoint(ctx, name, at); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	return nil
}

func (r *Rig) averagePosition(ctx context.Context, handles []string) (r3.Vec, error) {
	var sum r3.Vec
	for _, handle := range handles {
		at, err := r.scene.VertexPosition(ctx, handle)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("vertex %s: %w", handle, err)
		}
		sum = r3.Add(sum, at)
	}
	return r3.Scale(1/float64(len(handles)), sum), nil
}

// SelectionPreview reports what a placement would use: the number of
// selected vertices and their centroid.
type SelectionPreview struct {
	VertexCount int
	Centroid    r3.Vec
}

func (r *Rig) SelectionPreview(ctx context.Context) (*SelectionPreview, error) {
	handles, err := r.scene.Selection(ctx)
	if err != nil {
		return nil, fmt.Errorf("query selection: %w", err)
	}
	if len(handles) == 0 {
		return nil, ErrNothingSelected
	}
	centroid, err := r.averagePosition(ctx, handles)
	if err != nil {
		return nil, err
	}
	return &SelectionPreview{VertexCount: len(handles), Centroid: centroid}, nil
}

// OpenHelp opens the documentation page of a joint, or of the spine when
// name is "Spine".
func (r *Rig) OpenHelp(ctx context.Context, name string) error {
	var url string
	if strings.EqualFold(name, r.spine.name) {
		url = r.spine.helpURL
	} else {
		j, err := r.Joint(name)
		if err != nil {
			return err
		}
		url = j.helpURL
	}
	if err := r.scene.OpenHelp(ctx, url); err != nil {
		return fmt.Errorf("open help for %s: %w", name, err)
	}
	return nil
}

// JointStatus is one joint's record snapshot.
type JointStatus struct {
	Name     string
	State    State
	Position *r3.Vec
	Mirror   *r3.Vec
}

type SpineStatus struct {
	Exists    bool
	Count     int
	Vertebrae []string
}

type Status struct {
	Spine  SpineStatus
	Joints []JointStatus
}

// Status snapshots every record without touching the host.
func (r *Rig) Status() *Status {
	st := &Status{
		Spine: SpineStatus{
			Exists: r.spine.exists,
			Count:  r.spine.count,
		},
		Joints: make([]JointStatus, 0, len(r.order)),
	}
	if r.spine.exists {
		st.Spine.Vertebrae = r.spine.VertebraNames()
	}
	for _, name := range r.order {
		j := r.joints[strings.ToLower(name)]
		js := JointStatus{Name: j.name, State: j.State()}
		if j.placement != nil {
			at := *j.placement
			js.Position = &at
		}
		if j.mirror != nil {
			at := *j.mirror
			js.Mirror = &at
		}
		st.Joints = append(st.Joints, js)
	}
	return st
}
