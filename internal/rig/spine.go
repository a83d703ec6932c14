package rig

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/scene"
)

// Spine is the resizable vertebra chain between pelvis and neck. The chain
// is only ever rebuilt as a whole; the configured count survives demolition
// so the next build reuses it.
type Spine struct {
	name    string
	helpURL string

	count     int
	exists    bool
	vertebrae []*Joint
}

func newSpine(helpURL string) *Spine {
	return &Spine{
		name:    "Spine",
		helpURL: helpURL,
		count:   DefaultSpineCount,
	}
}

func (s *Spine) Name() string { return s.name }
func (s *Spine) Count() int   { return s.count }
func (s *Spine) Exists() bool { return s.exists }

func (s *Spine) maxIndex() int { return s.count - 1 }

// VertebraNames returns Spine_0 .. Spine_{count-1} for the current count.
func (s *Spine) VertebraNames() []string {
	names := make([]string, s.count)
	for i := range names {
		names[i] = fmt.Sprintf("Spine_%d", i)
	}
	return names
}

// Vertebrae returns the live vertebra records, nil when no spine exists.
func (s *Spine) Vertebrae() []*Joint {
	out := make([]*Joint, len(s.vertebrae))
	copy(out, s.vertebrae)
	return out
}

type SpineResult struct {
	Count     int
	Vertebrae []string
	Positions []r3.Vec
}

// BuildSpine creates count vertebrae evenly spaced along the segment from
// the pelvis placement to the neck placement, both endpoints excluded:
// vertebra i sits at pelvis + (i+1)*(neck-pelvis)/(count+1). Requires both
// anchors placed and no existing spine.
func (r *Rig) BuildSpine(ctx context.Context) (*SpineResult, error) {
	s := r.spine
	if s.exists {
		return nil, ErrSpineExists
	}
	pelvis := r.joints["pelvis"]
	neck := r.joints["neck"]
	if !pelvis.exists || !neck.exists {
		return nil, ErrAnchorsNotPlaced
	}

	start := *pelvis.placement
	step := r3.Scale(1/float64(s.count+1), r3.Sub(*neck.placement, start))

	vertebrae := make([]*Joint, s.count)
	res := &SpineResult{Count: s.count}
	for i := range vertebrae {
		at := r3.Add(start, r3.Scale(float64(i+1), step))
		v := newJoint(fmt.Sprintf("Spine_%d", i), s.helpURL)
		if err := r.createNode(ctx, v.name, at); err != nil {
			return nil, err
		}
		v.placement = &at
		v.exists = true
		vertebrae[i] = v
		res.Vertebrae = append(res.Vertebrae, v.name)
		res.Positions = append(res.Positions, at)
	}

	s.vertebrae = vertebrae
	s.exists = true
	r.log.Info("spine created", "count", s.count)
	return res, nil
}

// DemolishSpine detaches the chain from everything attached to it, waits
// for the host to settle, then deletes each vertebra and resets the
// records. The configured count survives for the next build.
func (r *Rig) DemolishSpine(ctx context.Context) error {
	s := r.spine
	if !s.exists {
		return ErrNoSpine
	}

	// The neck and both shoulders may hang off the top vertebra after bone
	// assembly; freeing them first keeps them alive through the deletes.
	for _, name := range []string{"Neck", "Shoulder", MirroredName("Shoulder")} {
		if err := r.unparentIfPresent(ctx, name); err != nil {
			return err
		}
	}
	for i := s.maxIndex(); i >= 0; i-- {
		if err := r.unparentIfPresent(ctx, s.vertebrae[i].name); err != nil {
			return err
		}
	}

	if err := r.settle(ctx); err != nil {
		return err
	}

	for _, v := range s.vertebrae {
		exists, err := r.scene.NodeExists(ctx, v.name)
		if err != nil {
			return fmt.Errorf("check %s: %w", v.name, err)
		}
		if !exists {
			r.log.Warn("vertebra missing from scene", "joint", v.name)
			continue
		}
		if err := r.scene.DeleteNode(ctx, v.name); err != nil {
			return fmt.Errorf("delete %s: %w", v.name, err)
		}
	}

	s.vertebrae = nil
	s.exists = false
	r.log.Info("spine deleted", "count", s.count)
	return nil
}

type SpineAdjustResult struct {
	Count   int
	Rebuilt bool
	// RebuildRefusal carries the reason when a live chain was demolished
	// but could not be rebuilt, because an anchor went missing in between.
	RebuildRefusal string
}

// AddSpineJoint raises the vertebra count by one. A live chain is
// demolished and rebuilt with the new count.
func (r *Rig) AddSpineJoint(ctx context.Context) (*SpineAdjustResult, error) {
	return r.resizeSpine(ctx, r.spine.count+1)
}

// RemoveSpineJoint lowers the vertebra count by one, refusing below one.
// A live chain is demolished and rebuilt with the new count.
func (r *Rig) RemoveSpineJoint(ctx context.Context) (*SpineAdjustResult, error) {
	if r.spine.count <= 1 {
		return nil, ErrSpineAtMinimum
	}
	return r.resizeSpine(ctx, r.spine.count-1)
}

// ResetSpine restores the default vertebra count through the same
// demolish-and-rebuild cycle.
func (r *Rig) ResetSpine(ctx context.Context) (*SpineAdjustResult, error) {
	return r.resizeSpine(ctx, DefaultSpineCount)
}

// resizeSpine applies a new count. The chain is never resized in place.
func (r *Rig) resizeSpine(ctx context.Context, count int) (*SpineAdjustResult, error) {
	s := r.spine
	if !s.exists {
		s.count = count
		return &SpineAdjustResult{Count: count}, nil
	}

	if err := r.DemolishSpine(ctx); err != nil {
		return nil, err
	}
	s.count = count

	res := &SpineAdjustResult{Count: count}
	_, err := r.BuildSpine(ctx)
	switch {
	case err == nil:
		res.Rebuilt = true
	case IsRefusal(err):
		res.RebuildRefusal = err.Error()
		r.log.Warn("spine rebuild refused", "reason", err)
	default:
		return nil, err
	}
	return res, nil
}

func (r *Rig) unparentIfPresent(ctx context.Context, name string) error {
	exists, err := r.scene.NodeExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check %s: %w", name, err)
	}
	if !exists {
		r.log.Debug("skipping unparent, node missing", "node", name)
		return nil
	}
	if err := r.scene.Unparent(ctx, name); err != nil {
		if scene.IsBenign(err) {
			r.log.Debug("unparent not needed", "node", name)
			return nil
		}
		return fmt.Errorf("unparent %s: %w", name, err)
	}
	return nil
}

func (r *Rig) settle(ctx context.Context) error {
	if err := r.scene.Settle(ctx); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	return nil
}
