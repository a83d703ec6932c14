// Package memscene provides an in-memory Scene for tests and dry-run mode.
//
// The fake reproduces the two host behaviors the rig code has to be careful
// about: a freshly created joint stays selected and auto-parents the next
// one unless the selection is cleared, and deleting a node takes its whole
// subtree with it.
package memscene

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/scene"
)

type node struct {
	at     r3.Vec
	parent string
}

// Scene is an in-memory stand-in for a live host session. Tests script the
// selection and vertex table, optionally inject failures per operation, and
// assert on the resulting node graph and call log.
type Scene struct {
	mu sync.Mutex

	// SelectionHandles is what Selection returns until cleared.
	SelectionHandles []string
	// Vertices maps selection handles to world positions.
	Vertices map[string]r3.Vec
	// Fail injects an error for an operation name: "selection",
	// "vertexPosition", "createJoint", "deleteNode", "nodeExists",
	// "parent", "unparent", "clearSelection", "settle", "openHelp".
	Fail map[string]error

	nodes       map[string]*node
	lastCreated string
	cleared     bool
	clearCount  int
	settleCount int
	helpOpened  []string
	calls       []string
}

var _ scene.Scene = (*Scene)(nil)

func New() *Scene {
	return &Scene{
		Vertices: make(map[string]r3.Vec),
		Fail:     make(map[string]error),
		nodes:    make(map[string]*node),
	}
}

func (s *Scene) failure(op string) error {
	s.calls = append(s.calls, op)
	if err, ok := s.Fail[op]; ok {
		return err
	}
	return nil
}

func (s *Scene) Selection(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("selection"); err != nil {
		return nil, err
	}
	if s.cleared {
		return nil, nil
	}
	out := make([]string, len(s.SelectionHandles))
	copy(out, s.SelectionHandles)
	return out, nil
}

func (s *Scene) VertexPosition(ctx context.Context, handle string) (r3.Vec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("vertexPosition"); err != nil {
		return r3.Vec{}, err
	}
	at, ok := s.Vertices[handle]
	if !ok {
		return r3.Vec{}, fmt.Errorf("no vertex %q", handle)
	}
	return at, nil
}

func (s *Scene) CreateJoint(ctx context.Context, name string, at r3.Vec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("createJoint"); err != nil {
		return err
	}
	if _, ok := s.nodes[name]; ok {
		return fmt.Errorf("node %q already exists", name)
	}

	n := &node{at: at}
	// A new joint chains under whatever joint is still selected, which is
	// the previously created one unless the selection was cleared.
	if s.lastCreated != "" {
		n.parent = s.lastCreated
	}
	s.nodes[name] = n
	s.lastCreated = name
	return nil
}

func (s *Scene) DeleteNode(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("deleteNode"); err != nil {
		return err
	}
	if _, ok := s.nodes[name]; !ok {
		return fmt.Errorf("node %q does not exist", name)
	}
	s.deleteSubtree(name)
	if s.lastCreated == name {
		s.lastCreated = ""
	}
	return nil
}

func (s *Scene) deleteSubtree(name string) {
	for child, n := range s.nodes {
		if n.parent == name {
			s.deleteSubtree(child)
		}
	}
	delete(s.nodes, name)
}

func (s *Scene) NodeExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("nodeExists"); err != nil {
		return false, err
	}
	_, ok := s.nodes[name]
	return ok, nil
}

func (s *Scene) Parent(ctx context.Context, child, parent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("parent"); err != nil {
		return err
	}
	c, ok := s.nodes[child]
	if !ok {
		return fmt.Errorf("node %q does not exist", child)
	}
	if _, ok := s.nodes[parent]; !ok {
		return fmt.Errorf("node %q does not exist", parent)
	}
	if c.parent == parent {
		return fmt.Errorf("%q is already a child of %q: %w", child, parent, scene.ErrBenign)
	}
	c.parent = parent
	return nil
}

func (s *Scene) Unparent(ctx context.Context, child string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("unparent"); err != nil {
		return err
	}
	c, ok := s.nodes[child]
	if !ok {
		return fmt.Errorf("node %q does not exist", child)
	}
	if c.parent == "" {
		return fmt.Errorf("%q is already at the world root: %w", child, scene.ErrBenign)
	}
	c.parent = ""
	return nil
}

func (s *Scene) ClearSelection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("clearSelection"); err != nil {
		return err
	}
	s.cleared = true
	s.lastCreated = ""
	s.clearCount++
	return nil
}

func (s *Scene) Settle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("settle"); err != nil {
		return err
	}
	s.settleCount++
	return nil
}

func (s *Scene) OpenHelp(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("openHelp"); err != nil {
		return err
	}
	s.helpOpened = append(s.helpOpened, url)
	return nil
}

// Test accessors.

// Select arms the scripted selection, replacing whatever was selected and
// undoing any previous clear.
func (s *Scene) Select(handles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectionHandles = handles
	s.cleared = false
	s.lastCreated = ""
}

// SetVertex scripts a selection handle's world position.
func (s *Scene) SetVertex(handle string, at r3.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Vertices[handle] = at
}

// NodeNames returns every node in the scene, sorted.
func (s *Scene) NodeNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasNode reports whether a node exists without going through the Scene
// interface (and its failure injection).
func (s *Scene) HasNode(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[name]
	return ok
}

// PositionOf returns a node's position. The second result is false when the
// node does not exist.
func (s *Scene) PositionOf(name string) (r3.Vec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	if !ok {
		return r3.Vec{}, false
	}
	return n.at, true
}

// ParentOf returns a node's parent name, empty for root nodes.
func (s *Scene) ParentOf(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[name]; ok {
		return n.parent
	}
	return ""
}

// AddNode places a node directly, bypassing the auto-parent behavior. Tests
// use it to stage preexisting scene content.
func (s *Scene) AddNode(name string, at r3.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[name] = &node{at: at}
}

// RemoveNode drops a node directly, without touching its children. Tests
// use it to simulate out-of-band deletions by the user.
func (s *Scene) RemoveNode(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, name)
}

// ClearCount returns how many times the selection was cleared.
func (s *Scene) ClearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearCount
}

// SettleCount returns how many settle barriers were requested.
func (s *Scene) SettleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleCount
}

// HelpOpened returns every URL passed to OpenHelp, in order.
func (s *Scene) HelpOpened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.helpOpened))
	copy(out, s.helpOpened)
	return out
}

// Calls returns the operation log, in call order.
func (s *Scene) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
