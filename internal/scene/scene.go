package scene

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBenign marks host refusals that are safe to treat as no-ops: parenting
// a node into a relation it already has, unparenting a node that sits at the
// world root, and similar relationship complaints.
var ErrBenign = errors.New("benign scene refusal")

// Scene is the capability surface a rig needs from the hosting 3D
// application. Implementations: the live Maya bridge and the in-memory
// scene used by tests and dry-run mode.
type Scene interface {
	// Selection returns the handles of the currently selected components,
	// in selection order. An empty selection is not an error.
	Selection(ctx context.Context) ([]string, error)

	// VertexPosition resolves a selection handle to a world-space point.
	VertexPosition(ctx context.Context, handle string) (r3.Vec, error)

	// CreateJoint realizes a joint node at a world-space position.
	CreateJoint(ctx context.Context, name string, at r3.Vec) error

	DeleteNode(ctx context.Context, name string) error

	NodeExists(ctx context.Context, name string) (bool, error)

	// Parent makes child a child of parent. Refusals that leave the scene
	// graph as requested wrap ErrBenign.
	Parent(ctx context.Context, child, parent string) error

	// Unparent moves child to the world root. Unparenting a root node
	// wraps ErrBenign.
	Unparent(ctx context.Context, child string) error

	ClearSelection(ctx context.Context) error

	// Settle blocks until the host has processed all prior mutations.
	Settle(ctx context.Context) error

	// OpenHelp opens a documentation URL with the host's browser.
	OpenHelp(ctx context.Context, url string) error
}

// IsBenign reports whether err is a host refusal the caller may ignore.
func IsBenign(err error) bool {
	return errors.Is(err, ErrBenign)
}
