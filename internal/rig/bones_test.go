package rig

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/scene/memscene"
)

func TestLimbPairsTable(t *testing.T) {
	pairs := limbPairs()
	require.Len(t, pairs, 56, "28 primary rows plus their mirrored projection")

	wantHead := []bonePair{
		{"Pelvis", "Hip"},
		{"Hip", "Knee"},
		{"Knee", "Ankle"},
		{"Ankle", "Ball_Of_Foot"},
		{"Ball_Of_Foot", "Toes"},
		{"Neck", "Head"},
		{"Shoulder", "Elbow"},
		{"Elbow", "Wrist"},
	}
	if diff := cmp.Diff(wantHead, pairs[:8], cmp.AllowUnexported(bonePair{})); diff != "" {
		t.Errorf("leading rows mismatch (-want +got):\n%s", diff)
	}

	set := make(map[bonePair]bool, len(pairs))
	children := make(map[string]int, len(pairs))
	for _, p := range pairs {
		assert.False(t, set[p], "duplicate row %v", p)
		set[p] = true
		children[p.child]++
	}
	for child, n := range children {
		assert.Equal(t, 1, n, "%s must have exactly one parent", child)
	}

	// Spot checks: every finger chain roots at the wrist of its side, and
	// the mirrored projection keeps both hips on the single pelvis.
	for _, want := range []bonePair{
		{"Wrist", "Thumb_Base"},
		{"Wrist", "Ring_Finger_Base"},
		{"Ring_Finger_Distal", "Ring_Finger_Tip"},
		{"Mirrored_Wrist", "Mirrored_Ring_Finger_Base"},
		{"Mirrored_Ring_Finger_Distal", "Mirrored_Ring_Finger_Tip"},
		{"Pelvis", "Mirrored_Hip"},
		{"Mirrored_Neck", "Mirrored_Head"},
		{"Mirrored_Elbow", "Mirrored_Wrist"},
	} {
		assert.True(t, set[want], "missing row %v", want)
	}
	assert.False(t, set[bonePair{"Mirrored_Pelvis", "Mirrored_Hip"}],
		"no row may reference a mirrored pelvis")
}

// placeTestBiped places the center column, one arm, and one leg, mirrors the
// bilateral side, and builds the default spine.
func placeTestBiped(t *testing.T, r *Rig, ms *memscene.Scene) {
	t.Helper()
	ctx := context.Background()

	for name, at := range map[string]r3.Vec{
		"Pelvis":       {Y: 8},
		"Neck":         {Y: 14},
		"Head":         {Y: 16},
		"Shoulder":     {X: 3, Y: 13, Z: 1},
		"Elbow":        {X: 3.5, Y: 10.5, Z: 0.8},
		"Wrist":        {X: 4, Y: 8, Z: 1},
		"Hip":          {X: 1.5, Y: 7, Z: 0.3},
		"Knee":         {X: 1.6, Y: 4, Z: 0.4},
		"Ankle":        {X: 1.7, Y: 1, Z: 0.2},
		"Ball_Of_Foot": {X: 1.8, Y: 0.4, Z: 1.2},
		"Toes":         {X: 1.9, Y: 0.2, Z: 1.5},
	} {
		placeAt(t, r, ms, name, at)
	}
	_, err := r.MirrorLimbs(ctx)
	require.NoError(t, err)
	_, err = r.BuildSpine(ctx)
	require.NoError(t, err)
}

func TestAssembleBones(t *testing.T) {
	r, ms := newTestRig(t)
	ctx := context.Background()

	placeTestBiped(t, r, ms)

	res, err := r.AssembleBones(ctx)
	require.NoError(t, err)
	assert.True(t, res.SpineLinked)
	assert.Zero(t, res.AlreadyLinked)

	// Spine pass: chain linked upward, rooted at the pelvis, with the neck
	// and both shoulders on the top vertebra.
	assert.Equal(t, "Pelvis", ms.ParentOf("Spine_0"))
	assert.Equal(t, "Spine_0", ms.ParentOf("Spine_1"))
	assert.Equal(t, "Spine_1", ms.ParentOf("Spine_2"))
	assert.Equal(t, "Spine_2", ms.ParentOf("Neck"))
	assert.Equal(t, "Spine_2", ms.ParentOf("Shoulder"))
	assert.Equal(t, "Spine_2", ms.ParentOf("Mirrored_Shoulder"))

	// Limb pass, both sides.
	assert.Equal(t, "Pelvis", ms.ParentOf("Hip"))
	assert.Equal(t, "Pelvis", ms.ParentOf("Mirrored_Hip"))
	assert.Equal(t, "Hip", ms.ParentOf("Knee"))
	assert.Equal(t, "Mirrored_Hip", ms.ParentOf("Mirrored_Knee"))
	assert.Equal(t, "Ball_Of_Foot", ms.ParentOf("Toes"))
	assert.Equal(t, "Neck", ms.ParentOf("Head"))
	assert.Equal(t, "Shoulder", ms.ParentOf("Elbow"))
	assert.Equal(t, "Elbow", ms.ParentOf("Wrist"))
	assert.Equal(t, "Mirrored_Elbow", ms.ParentOf("Mirrored_Wrist"))

	// No fingers were placed, so their rows are skipped and reported.
	assert.Contains(t, res.NodesMissing, "Thumb_Base")
	assert.Contains(t, res.NodesMissing, "Mirrored_Pinky_Finger_Distal")
	assert.Contains(t, res.NodesMissing, "Mirrored_Neck",
		"the mirrored head row has no mirrored neck to hang from")
	assert.NotContains(t, res.NodesMissing, "Spine_0")

	// 6 spine links plus 8 primary and 7 mirrored limb links.
	assert.Equal(t, 21, res.LinksApplied)
}

func TestAssembleBonesIdempotent(t *testing.T) {
	r, ms := newTestRig(t)
	ctx := context.Background()

	placeTestBiped(t, r, ms)

	first, err := r.AssembleBones(ctx)
	require.NoError(t, err)
	graph := make(map[string]string)
	for _, name := range ms.NodeNames() {
		graph[name] = ms.ParentOf(name)
	}

	second, err := r.AssembleBones(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.LinksApplied, "a second pass must not re-link anything")
	assert.Equal(t, first.LinksApplied, second.AlreadyLinked,
		"every applied link now reports as already in place")
	assert.Equal(t, first.NodesMissing, second.NodesMissing)

	for _, name := range ms.NodeNames() {
		assert.Equal(t, graph[name], ms.ParentOf(name), "parent of %s changed", name)
	}
}

func TestAssembleBonesWithoutSpine(t *testing.T) {
	r, ms := newTestRig(t)
	ctx := context.Background()

	placeAt(t, r, ms, "Pelvis", r3.Vec{Y: 8})
	placeAt(t, r, ms, "Hip", r3.Vec{X: 1.5, Y: 7, Z: 0.3})
	placeAt(t, r, ms, "Knee", r3.Vec{X: 1.6, Y: 4, Z: 0.4})

	res, err := r.AssembleBones(ctx)
	require.NoError(t, err, "a missing spine chain is reported, not fatal")
	assert.False(t, res.SpineLinked)
	assert.Contains(t, res.NodesMissing, "Spine_0")

	// The limb pass still ran.
	assert.Equal(t, "Pelvis", ms.ParentOf("Hip"))
	assert.Equal(t, "Hip", ms.ParentOf("Knee"))
	assert.Equal(t, 2, res.LinksApplied)
}

func TestAssembleBonesHostFailure(t *testing.T) {
	r, ms := newTestRig(t)
	ctx := context.Background()

	placeAt(t, r, ms, "Pelvis", r3.Vec{Y: 8})
	placeAt(t, r, ms, "Hip", r3.Vec{X: 1.5, Y: 7, Z: 0.3})

	hostErr := errors.New("connection reset")
	ms.Fail["parent"] = hostErr

	_, err := r.AssembleBones(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, hostErr)
	assert.False(t, IsRefusal(err), "host failures are not refusals")
}
