package rig

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is a joint's lifecycle position, derived from its record fields so
// it can never drift from them.
type State string

const (
	StateEmpty             State = "empty"
	StatePlaced            State = "placed"
	StatePlacedAndMirrored State = "placed_and_mirrored"
)

// Joint is the placement record of one skeleton joint. The scene node it
// describes carries the same name; the mirrored counterpart, when created,
// lives in the same record so deletion removes both.
type Joint struct {
	name         string
	mirroredName string
	helpURL      string

	placement *r3.Vec
	mirror    *r3.Vec
	exists    bool
}

func newJoint(name, helpURL string) *Joint {
	return &Joint{
		name:         name,
		mirroredName: MirroredName(name),
		helpURL:      helpURL,
	}
}

func (j *Joint) Name() string         { return j.name }
func (j *Joint) MirroredName() string { return j.mirroredName }
func (j *Joint) HelpURL() string      { return j.helpURL }

// Placed reports whether the joint's node has been created.
func (j *Joint) Placed() bool { return j.exists }

// Placement returns the recorded node position.
func (j *Joint) Placement() (r3.Vec, bool) {
	if j.placement == nil {
		return r3.Vec{}, false
	}
	return *j.placement, true
}

// MirrorPlacement returns the recorded mirrored node position.
func (j *Joint) MirrorPlacement() (r3.Vec, bool) {
	if j.mirror == nil {
		return r3.Vec{}, false
	}
	return *j.mirror, true
}

func (j *Joint) State() State {
	switch {
	case !j.exists:
		return StateEmpty
	case j.mirror != nil:
		return StatePlacedAndMirrored
	default:
		return StatePlaced
	}
}

// clear returns the record to its initial state.
func (j *Joint) clear() {
	j.placement = nil
	j.mirror = nil
	j.exists = false
}

type PlaceResult struct {
	Joint       string
	VertexCount int
	Position    r3.Vec
}

// PlaceJoint creates a joint node at the centroid of the current vertex
// selection and records the placement. Placing an already placed joint or
// placing with nothing selected is refused.
func (r *Rig) PlaceJoint(ctx context.Context, name string) (*PlaceResult, error) {
	j, err := r.Joint(name)
	if err != nil {
		return nil, err
	}
	if j.exists {
		return nil, fmt.Errorf("%s: %w", j.name, ErrAlreadyPlaced)
	}

	handles, err := r.scene.Selection(ctx)
	if err != nil {
		return nil, fmt.Errorf("query selection: %w", err)
	}
	if len(handles) == 0 {
		return nil, ErrNothingSelected
	}

	mean, err := r.averagePosition(ctx, handles)
	if err != nil {
		return nil, err
	}

	if err := r.createNode(ctx, j.name, mean); err != nil {
		return nil, err
	}

	j.placement = &mean
	j.exists = true
	r.log.Info("joint placed",
		"joint", j.name,
		"vertices", len(handles),
		"x", mean.X, "y", mean.Y, "z", mean.Z)

	return &PlaceResult{Joint: j.name, VertexCount: len(handles), Position: mean}, nil
}

type MirrorResult struct {
	Joint      string
	MirroredAs string
	Plane      string
	Position   r3.Vec
}

// MirrorJoint creates the bilateral counterpart of a placed joint on the
// opposite side of the dominant axis: |x| > |z| reflects across the YZ
// plane, |z| > |x| across the XY plane. Equal magnitudes leave the mirror
// plane ambiguous and the operation is refused.
func (r *Rig) MirrorJoint(ctx context.Context, name string) (*MirrorResult, error) {
	j, err := r.Joint(name)
	if err != nil {
		return nil, err
	}
	if !j.exists {
		return nil, fmt.Errorf("%s: %w", j.name, ErrNotPlaced)
	}
	if j.mirror != nil {
		return nil, fmt.Errorf("%s: %w", j.mirroredName, ErrAlreadyMirrored)
	}

	src := *j.placement
	var at r3.Vec
	var plane string
	switch {
	case math.Abs(src.X) > math.Abs(src.Z):
		at = r3.Vec{X: -src.X, Y: src.Y, Z: src.Z}
		plane = "YZ"
	case math.Abs(src.Z) > math.Abs(src.X):
		at = r3.Vec{X: src.X, Y: src.Y, Z: -src.Z}
		plane = "XY"
	default:
		return nil, fmt.Errorf("%s sits equidistant from both mirror planes: %w", j.name, ErrMirrorAmbiguous)
	}

	if err := r.createNode(ctx, j.mirroredName, at); err != nil {
		return nil, err
	}

	j.mirror = &at
	r.log.Info("joint mirrored", "joint", j.name, "as", j.mirroredName, "plane", plane)

	return &MirrorResult{Joint: j.name, MirroredAs: j.mirroredName, Plane: plane, Position: at}, nil
}

type DeleteResult struct {
	Joint string
	// Removed lists the scene nodes actually deleted.
	Removed []string
	// Missing lists nodes the record expected but the scene no longer had.
	Missing []string
}

// DeleteJoint removes the joint's node and, when one was mirrored, its
// counterpart, then resets the record. When the primary node is already
// gone from the scene only the record is cleared and no host nodes are
// touched.
func (r *Rig) DeleteJoint(ctx context.Context, name string) (*DeleteResult, error) {
	j, err := r.Joint(name)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Joint: j.name}

	exists, err := r.scene.NodeExists(ctx, j.name)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", j.name, err)
	}
	if !exists {
		if j.exists {
			r.log.Warn("joint node missing from scene, clearing record only", "joint", j.name)
		}
		res.Missing = append(res.Missing, j.name)
		j.clear()
		return res, nil
	}

	if err := r.scene.DeleteNode(ctx, j.name); err != nil {
		return nil, fmt.Errorf("delete %s: %w", j.name, err)
	}
	res.Removed = append(res.Removed, j.name)

	if j.mirror != nil {
		mirrorExists, err := r.scene.NodeExists(ctx, j.mirroredName)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", j.mirroredName, err)
		}
		if mirrorExists {
			if err := r.scene.DeleteNode(ctx, j.mirroredName); err != nil {
				return nil, fmt.Errorf("delete %s: %w", j.mirroredName, err)
			}
			res.Removed = append(res.Removed, j.mirroredName)
		} else {
			r.log.Warn("mirrored node missing from scene", "joint", j.mirroredName)
			res.Missing = append(res.Missing, j.mirroredName)
		}
	}

	j.clear()
	r.log.Info("joint deleted", "joint", j.name, "removed", res.Removed)
	return res, nil
}
