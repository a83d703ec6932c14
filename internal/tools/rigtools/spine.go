package rigtools

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/maya-rig-mcp/internal/rig"
	"github.com/alucardeht/maya-rig-mcp/internal/tools"
)

func emptySchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

type CreateSpineResponse struct {
	Status    string     `json:"status"`
	Count     int        `json:"count"`
	Vertebrae []string   `json:"vertebrae"`
	Positions []Position `json:"positions"`
}

type CreateSpineTool struct{ svc *Service }

func (t *CreateSpineTool) Name() string {
	return "create_spine"
}

func (t *CreateSpineTool) Description() string {
	return "Build the vertebra chain, evenly spaced between the placed Pelvis and " +
		"Neck joints with both endpoints excluded. Refused when a spine already " +
		"exists or either anchor is missing."
}

func (t *CreateSpineTool) Title() string {
	return "Create Spine"
}

func (t *CreateSpineTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *CreateSpineTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *CreateSpineTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.run(func() (interface{}, error) {
		res, err := t.svc.rig.BuildSpine(ctx)
		if err != nil {
			return nil, err
		}
		return CreateSpineResponse{
			Status:    "created",
			Count:     res.Count,
			Vertebrae: res.Vertebrae,
			Positions: fromVecs(res.Positions),
		}, nil
	})
}

type DeleteSpineResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DeleteSpineTool struct{ svc *Service }

func (t *DeleteSpineTool) Name() string {
	return "delete_spine"
}

func (t *DeleteSpineTool) Description() string {
	return "Delete the vertebra chain. Joints that were parented onto it are " +
		"detached first so only the vertebrae disappear. The configured count " +
		"is kept for the next build."
}

func (t *DeleteSpineTool) Title() string {
	return "Delete Spine"
}

func (t *DeleteSpineTool) Annotations() map[string]bool {
	return tools.DestructiveAnnotations()
}

func (t *DeleteSpineTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *DeleteSpineTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.run(func() (interface{}, error) {
		if err := t.svc.rig.DemolishSpine(ctx); err != nil {
			return nil, err
		}
		return DeleteSpineResponse{Status: "deleted", Count: t.svc.rig.Spine().Count()}, nil
	})
}

type SpineAdjustResponse struct {
	Status         string `json:"status"`
	Count          int    `json:"count"`
	Rebuilt        bool   `json:"rebuilt"`
	RebuildRefusal string `json:"rebuild_refusal,omitempty"`
}

// spineAdjust wraps the three count-changing operations, which only differ
// in the rig call they make.
func (s *Service) spineAdjust(call func() (*rig.SpineAdjustResult, error)) (interface{}, error) {
	return s.run(func() (interface{}, error) {
		res, err := call()
		if err != nil {
			return nil, err
		}
		return SpineAdjustResponse{
			Status:         "resized",
			Count:          res.Count,
			Rebuilt:        res.Rebuilt,
			RebuildRefusal: res.RebuildRefusal,
		}, nil
	})
}

type AddSpineJointTool struct{ svc *Service }

func (t *AddSpineJointTool) Name() string {
	return "add_spine_joint"
}

func (t *AddSpineJointTool) Description() string {
	return "Raise the vertebra count by one. A live chain is rebuilt with the " +
		"new count and respaced between the anchors."
}

func (t *AddSpineJointTool) Title() string {
	return "Add Spine Joint"
}

func (t *AddSpineJointTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *AddSpineJointTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *AddSpineJointTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.spineAdjust(func() (*rig.SpineAdjustResult, error) {
		return t.svc.rig.AddSpineJoint(ctx)
	})
}

type RemoveSpineJointTool struct{ svc *Service }

func (t *RemoveSpineJointTool) Name() string {
	return "remove_spine_joint"
}

func (t *RemoveSpineJointTool) Description() string {
	return "Lower the vertebra count by one, refused at the floor of one. A live " +
		"chain is rebuilt with the new count."
}

func (t *RemoveSpineJointTool) Title() string {
	return "Remove Spine Joint"
}

func (t *RemoveSpineJointTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *RemoveSpineJointTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *RemoveSpineJointTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.spineAdjust(func() (*rig.SpineAdjustResult, error) {
		return t.svc.rig.RemoveSpineJoint(ctx)
	})
}

type ResetSpineTool struct{ svc *Service }

func (t *ResetSpineTool) Name() string {
	return "reset_spine"
}

func (t *ResetSpineTool) Description() string {
	return "Restore the default vertebra count of three, rebuilding a live chain."
}

func (t *ResetSpineTool) Title() string {
	return "Reset Spine"
}

func (t *ResetSpineTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *ResetSpineTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *ResetSpineTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.spineAdjust(func() (*rig.SpineAdjustResult, error) {
		return t.svc.rig.ResetSpine(ctx)
	})
}
