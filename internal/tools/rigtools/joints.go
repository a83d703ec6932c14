package rigtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alucardeht/maya-rig-mcp/internal/tools"
)

type jointRequest struct {
	Joint string `json:"joint"`
}

func parseJointRequest(input json.RawMessage) (jointRequest, error) {
	var req jointRequest
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return req, fmt.Errorf("invalid request: %w", err)
		}
	}
	if req.Joint == "" {
		return req, fmt.Errorf("joint is required")
	}
	return req, nil
}

type PlaceJointResponse struct {
	Status   string   `json:"status"`
	Joint    string   `json:"joint"`
	Vertices int      `json:"vertices"`
	Position Position `json:"position"`
}

type PlaceJointTool struct{ svc *Service }

func (t *PlaceJointTool) Name() string {
	return "place_joint"
}

func (t *PlaceJointTool) Description() string {
	return "Create a skeleton joint at the centroid of the selected vertices. " +
		"Select the vertex loop around the joint's anatomical position first. " +
		"Refused when the joint is already placed or nothing is selected."
}

func (t *PlaceJointTool) Title() string {
	return "Place Joint"
}

func (t *PlaceJointTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *PlaceJointTool) Schema() json.RawMessage {
	return t.svc.jointSchema("Joint to place")
}

func (t *PlaceJointTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := parseJointRequest(input)
	if err != nil {
		return nil, err
	}
	return t.svc.run(func() (interface{}, error) {
		res, err := t.svc.rig.PlaceJoint(ctx, req.Joint)
		if err != nil {
			return nil, err
		}
		return PlaceJointResponse{
			Status:   "placed",
			Joint:    res.Joint,
			Vertices: res.VertexCount,
			Position: fromVec(res.Position),
		}, nil
	})
}

type MirrorJointResponse struct {
	Status     string   `json:"status"`
	Joint      string   `json:"joint"`
	MirroredAs string   `json:"mirrored_as"`
	Plane      string   `json:"plane"`
	Position   Position `json:"position"`
}

type MirrorJointTool struct{ svc *Service }

func (t *MirrorJointTool) Name() string {
	return "mirror_joint"
}

func (t *MirrorJointTool) Description() string {
	return "Create the bilateral counterpart of a placed joint, reflected across " +
		"the dominant mirror plane (YZ when |x| > |z|, XY when |z| > |x|). " +
		"Refused when the joint is not placed, already mirrored, or equidistant from both planes."
}

func (t *MirrorJointTool) Title() string {
	return "Mirror Joint"
}

func (t *MirrorJointTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *MirrorJointTool) Schema() json.RawMessage {
	return t.svc.jointSchema("Joint to mirror")
}

func (t *MirrorJointTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := parseJointRequest(input)
	if err != nil {
		return nil, err
	}
	return t.svc.run(func() (interface{}, error) {
		res, err := t.svc.rig.MirrorJoint(ctx, req.Joint)
		if err != nil {
			return nil, err
		}
		return MirrorJointResponse{
			Status:     "mirrored",
			Joint:      res.Joint,
			MirroredAs: res.MirroredAs,
			Plane:      res.Plane,
			Position:   fromVec(res.Position),
		}, nil
	})
}

type DeleteJointResponse struct {
	Status  string   `json:"status"`
	Joint   string   `json:"joint"`
	Removed []string `json:"removed"`
	Missing []string `json:"missing,omitempty"`
}

type DeleteJointTool struct{ svc *Service }

func (t *DeleteJointTool) Name() string {
	return "delete_joint"
}

func (t *DeleteJointTool) Description() string {
	return "Delete a joint's node and its mirrored counterpart, then reset its " +
		"record so it can be placed again. Deleting a joint that was never " +
		"placed is a no-op."
}

func (t *DeleteJointTool) Title() string {
	return "Delete Joint"
}

func (t *DeleteJointTool) Annotations() map[string]bool {
	return tools.DestructiveAnnotations()
}

func (t *DeleteJointTool) Schema() json.RawMessage {
	return t.svc.jointSchema("Joint to delete")
}

func (t *DeleteJointTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := parseJointRequest(input)
	if err != nil {
		return nil, err
	}
	return t.svc.run(func() (interface{}, error) {
		res, err := t.svc.rig.DeleteJoint(ctx, req.Joint)
		if err != nil {
			return nil, err
		}
		return DeleteJointResponse{
			Status:  "deleted",
			Joint:   res.Joint,
			Removed: res.Removed,
			Missing: res.Missing,
		}, nil
	})
}

type JointHelpResponse struct {
	Status string `json:"status"`
	Joint  string `json:"joint"`
}

type JointHelpTool struct{ svc *Service }

func (t *JointHelpTool) Name() string {
	return "joint_help"
}

func (t *JointHelpTool) Description() string {
	return "Open the placement documentation for a joint (or \"Spine\") in the host's browser."
}

func (t *JointHelpTool) Title() string {
	return "Joint Help"
}

func (t *JointHelpTool) Annotations() map[string]bool {
	a := tools.ReadOnlyAnnotations()
	a["openWorldHint"] = true
	return a
}

func (t *JointHelpTool) Schema() json.RawMessage {
	return t.svc.jointSchemaWithSpine("Joint to look up")
}

func (t *JointHelpTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	req, err := parseJointRequest(input)
	if err != nil {
		return nil, err
	}
	return t.svc.run(func() (interface{}, error) {
		if err := t.svc.rig.OpenHelp(ctx, req.Joint); err != nil {
			return nil, err
		}
		return JointHelpResponse{Status: "opened", Joint: req.Joint}, nil
	})
}
