package rig

import (
	"context"
	"fmt"

	"github.com/alucardeht/maya-rig-mcp/internal/scene"
)

type bonePair struct {
	parent string
	child  string
}

// limbPairs is the fixed parenting table for everything outside the spine
// chain: leg, head, arm, and finger chains, then the same rows projected
// onto the mirrored side. Both hips hang off the single Pelvis; every
// other mirrored row parents under the mirrored counterpart.
func limbPairs() []bonePair {
	primary := []bonePair{
		{"Pelvis", "Hip"},
		{"Hip", "Knee"},
		{"Knee", "Ankle"},
		{"Ankle", "Ball_Of_Foot"},
		{"Ball_Of_Foot", "Toes"},
		{"Neck", "Head"},
		{"Shoulder", "Elbow"},
		{"Elbow", "Wrist"},
	}
	for _, finger := range fingers {
		primary = append(primary,
			bonePair{"Wrist", finger + "_Base"},
			bonePair{finger + "_Base", finger + "_Middle"},
			bonePair{finger + "_Middle", finger + "_Distal"},
			bonePair{finger + "_Distal", finger + "_Tip"},
		)
	}

	pairs := make([]bonePair, 0, 2*len(primary))
	pairs = append(pairs, primary...)
	for _, p := range primary {
		parent := MirroredName(p.parent)
		if p.parent == "Pelvis" {
			parent = p.parent
		}
		pairs = append(pairs, bonePair{parent, MirroredName(p.child)})
	}
	return pairs
}

type AssembleResult struct {
	SpineLinked   bool
	LinksApplied  int
	AlreadyLinked int
	NodesMissing  []string
}

// AssembleBones parents the placed joints into the final hierarchy in two
// independent passes: the spine chain onto the pelvis with the neck and
// both shoulders attached to the top vertebra, then the fixed limb table.
// Every link is skipped when either node is missing and tolerated when the
// host reports the relation already holds, so repeating the operation is
// safe. A missing spine chain skips the first pass only; the limb pass
// always runs.
func (r *Rig) AssembleBones(ctx context.Context) (*AssembleResult, error) {
	res := &AssembleResult{}

	rootExists, err := r.scene.NodeExists(ctx, "Spine_0")
	if err != nil {
		return nil, fmt.Errorf("check Spine_0: %w", err)
	}
	if rootExists {
		if err := r.assembleSpine(ctx, res); err != nil {
			return nil, err
		}
		res.SpineLinked = true
	} else {
		res.noteMissing("Spine_0")
		r.log.Warn("spine chain missing from scene, skipping spine pass")
	}

	if err := r.settle(ctx); err != nil {
		return nil, err
	}

	for _, pair := range limbPairs() {
		if err := r.link(ctx, pair.child, pair.parent, res); err != nil {
			return nil, err
		}
	}
	if err := r.settle(ctx); err != nil {
		return nil, err
	}

	r.log.Info("bones assembled",
		"spine_linked", res.SpineLinked,
		"applied", res.LinksApplied,
		"already_linked", res.AlreadyLinked,
		"missing", len(res.NodesMissing))
	return res, nil
}

// assembleSpine links the vertebra chain, roots it at the pelvis, and
// attaches the neck and both shoulders to the top vertebra. Chain before
// endpoints; the order of everything else is free.
func (r *Rig) assembleSpine(ctx context.Context, res *AssembleResult) error {
	for i := 0; i < r.spine.maxIndex(); i++ {
		if err := r.link(ctx, fmt.Sprintf("Spine_%d", i+1), fmt.Sprintf("Spine_%d", i), res); err != nil {
			return err
		}
	}
	if err := r.settle(ctx); err != nil {
		return err
	}

	if err := r.link(ctx, "Spine_0", "Pelvis", res); err != nil {
		return err
	}
	if err := r.settle(ctx); err != nil {
		return err
	}

	top := fmt.Sprintf("Spine_%d", r.spine.maxIndex())
	for _, child := range []string{"Neck", "Shoulder", MirroredName("Shoulder")} {
		if err := r.link(ctx, child, top, res); err != nil {
			return err
		}
	}
	return nil
}

// link parents child under parent when both nodes exist.
func (r *Rig) link(ctx context.Context, child, parent string, res *AssembleResult) error {
	for _, name := range []string{parent, child} {
		exists, err := r.scene.NodeExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check %s: %w", name, err)
		}
		if !exists {
			res.noteMissing(name)
			r.log.Debug("skipping bone, node missing",
				"node", name, "child", child, "parent", parent)
			return nil
		}
	}

	err := r.scene.Parent(ctx, child, parent)
	switch {
	case err == nil:
		res.LinksApplied++
	case scene.IsBenign(err):
		res.AlreadyLinked++
		r.log.Debug("bone already in place", "child", child, "parent", parent)
	default:
		return fmt.Errorf("parent %s under %s: %w", child, parent, err)
	}
	return nil
}

func (res *AssembleResult) noteMissing(name string) {
	for _, existing := range res.NodesMissing {
		if existing == name {
			return
		}
	}
	res.NodesMissing = append(res.NodesMissing, name)
}
