package rig

import "context"

// MirrorOutcome is one joint's result from the bilateral mirror pass.
type MirrorOutcome struct {
	Joint    string
	Mirrored bool
	Plane    string
	Reason   string
}

// MirrorLimbs mirrors every bilateral joint in its fixed order: arm,
// fingers, leg. Joints that refuse (not placed, already mirrored, or
// sitting on the ambiguous diagonal) are reported and skipped; only a host
// failure aborts the walk.
func (r *Rig) MirrorLimbs(ctx context.Context) ([]MirrorOutcome, error) {
	names := bilateralNames()
	outcomes := make([]MirrorOutcome, 0, len(names))
	for _, name := range names {
		res, err := r.MirrorJoint(ctx, name)
		switch {
		case err == nil:
			outcomes = append(outcomes, MirrorOutcome{Joint: name, Mirrored: true, Plane: res.Plane})
		case IsRefusal(err):
			outcomes = append(outcomes, MirrorOutcome{Joint: name, Reason: err.Error()})
			r.log.Debug("mirror skipped", "joint", name, "reason", err)
		default:
			return outcomes, err
		}
	}
	return outcomes, nil
}
