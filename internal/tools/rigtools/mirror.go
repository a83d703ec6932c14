package rigtools

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/maya-rig-mcp/internal/tools"
)

type MirrorOutcomeView struct {
	Joint    string `json:"joint"`
	Mirrored bool   `json:"mirrored"`
	Plane    string `json:"plane,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type MirrorLimbsResponse struct {
	Status   string              `json:"status"`
	Mirrored int                 `json:"mirrored"`
	Skipped  int                 `json:"skipped"`
	Outcomes []MirrorOutcomeView `json:"outcomes"`
}

type MirrorLimbsTool struct{ svc *Service }

func (t *MirrorLimbsTool) Name() string {
	return "mirror_limbs"
}

func (t *MirrorLimbsTool) Description() string {
	return "Mirror every bilateral joint (arm, fingers, leg) in one pass. Joints " +
		"that cannot mirror are skipped with a reason, so the pass is safe to repeat."
}

func (t *MirrorLimbsTool) Title() string {
	return "Mirror Limbs"
}

func (t *MirrorLimbsTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *MirrorLimbsTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *MirrorLimbsTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.run(func() (interface{}, error) {
		outcomes, err := t.svc.rig.MirrorLimbs(ctx)
		if err != nil {
			return nil, err
		}

		res := MirrorLimbsResponse{
			Status:   "done",
			Outcomes: make([]MirrorOutcomeView, 0, len(outcomes)),
		}
		for _, o := range outcomes {
			res.Outcomes = append(res.Outcomes, MirrorOutcomeView{
				Joint:    o.Joint,
				Mirrored: o.Mirrored,
				Plane:    o.Plane,
				Reason:   o.Reason,
			})
			if o.Mirrored {
				res.Mirrored++
			} else {
				res.Skipped++
			}
		}
		return res, nil
	})
}
