package rigtools

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/maya-rig-mcp/internal/tools"
)

type AssembleBonesResponse struct {
	Status        string   `json:"status"`
	SpineLinked   bool     `json:"spine_linked"`
	LinksApplied  int      `json:"links_applied"`
	AlreadyLinked int      `json:"already_linked"`
	NodesMissing  []string `json:"nodes_missing,omitempty"`
}

type AssembleBonesTool struct{ svc *Service }

func (t *AssembleBonesTool) Name() string {
	return "assemble_bones"
}

func (t *AssembleBonesTool) Description() string {
	return "Parent the placed joints into the final skeleton hierarchy: the spine " +
		"chain onto the pelvis with neck and shoulders attached, then the fixed " +
		"limb table on both sides. Links whose nodes are missing are skipped and " +
		"reported, so the pass can run on a partial rig and again after more " +
		"joints are placed."
}

func (t *AssembleBonesTool) Title() string {
	return "Assemble Bones"
}

func (t *AssembleBonesTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *AssembleBonesTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *AssembleBonesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.run(func() (interface{}, error) {
		res, err := t.svc.rig.AssembleBones(ctx)
		if err != nil {
			return nil, err
		}
		return AssembleBonesResponse{
			Status:        "assembled",
			SpineLinked:   res.SpineLinked,
			LinksApplied:  res.LinksApplied,
			AlreadyLinked: res.AlreadyLinked,
			NodesMissing:  res.NodesMissing,
		}, nil
	})
}
