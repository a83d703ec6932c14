// Package rigtools exposes the rig operations as MCP tools. Every tool runs
// through one Service so concurrent tools/call requests are serialized: the
// rig mutates live scene state and two interleaved operations could tear it.
package rigtools

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
	"github.com/alucardeht/maya-rig-mcp/internal/logger"
	"github.com/alucardeht/maya-rig-mcp/internal/rig"
	"github.com/alucardeht/maya-rig-mcp/internal/scene/maya"
)

// Service wraps one rig and the optional live session behind a mutex.
type Service struct {
	mu      sync.Mutex
	rig     *rig.Rig
	session *maya.Session // nil when the rig runs on an in-memory scene
	mayaCfg config.MayaConfig
	log     *slog.Logger
}

func NewService(r *rig.Rig, session *maya.Session, mayaCfg config.MayaConfig, log *slog.Logger) *Service {
	if log == nil {
		log = logger.ForComponent("rigtools")
	}
	return &Service{
		rig:     r,
		session: session,
		mayaCfg: mayaCfg,
		log:     log,
	}
}

// Refused is the response when an operation declines to run. Refusals are
// successful calls: the precondition is reported, nothing else happens.
type Refused struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// run serializes an operation and converts refusals into responses. Host
// failures stay errors and surface as tool errors.
func (s *Service) run(op func() (interface{}, error)) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := op()
	if err != nil {
		if rig.IsRefusal(err) {
			s.log.Info("operation refused", "reason", err.Error())
			return Refused{Status: "refused", Reason: err.Error()}, nil
		}
		return nil, err
	}
	return result, nil
}

// Position is the wire shape for a world-space point.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func fromVec(v r3.Vec) Position { return Position{X: v.X, Y: v.Y, Z: v.Z} }

func fromVecPtr(v *r3.Vec) *Position {
	if v == nil {
		return nil
	}
	p := fromVec(*v)
	return &p
}

func fromVecs(vs []r3.Vec) []Position {
	out := make([]Position, len(vs))
	for i, v := range vs {
		out[i] = fromVec(v)
	}
	return out
}

// HealthProbe contributes the host link state to the health tool.
func (s *Service) HealthProbe() map[string]interface{} {
	if s.session == nil {
		return map[string]interface{}{"host": "in-memory"}
	}
	stats := s.session.Stats()
	return map[string]interface{}{
		"host":         "maya",
		"host_state":   string(stats.State),
		"host_address": stats.Address,
	}
}
