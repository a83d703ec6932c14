package rigtools

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/maya-rig-mcp/internal/tools"
)

type JointStatusView struct {
	Name     string    `json:"name"`
	State    string    `json:"state"`
	Position *Position `json:"position,omitempty"`
	Mirror   *Position `json:"mirror,omitempty"`
}

type SpineStatusView struct {
	Exists    bool     `json:"exists"`
	Count     int      `json:"count"`
	Vertebrae []string `json:"vertebrae,omitempty"`
}

type RigStatusResponse struct {
	Spine  SpineStatusView   `json:"spine"`
	Joints []JointStatusView `json:"joints"`
}

type RigStatusTool struct{ svc *Service }

func (t *RigStatusTool) Name() string {
	return "rig_status"
}

func (t *RigStatusTool) Description() string {
	return "Report every joint's lifecycle state (empty, placed, placed_and_mirrored) " +
		"with recorded positions, plus the spine chain's count and vertebrae."
}

func (t *RigStatusTool) Title() string {
	return "Rig Status"
}

func (t *RigStatusTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *RigStatusTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *RigStatusTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.run(func() (interface{}, error) {
		st := t.svc.rig.Status()

		res := RigStatusResponse{
			Spine: SpineStatusView{
				Exists:    st.Spine.Exists,
				Count:     st.Spine.Count,
				Vertebrae: st.Spine.Vertebrae,
			},
			Joints: make([]JointStatusView, 0, len(st.Joints)),
		}
		for _, js := range st.Joints {
			res.Joints = append(res.Joints, JointStatusView{
				Name:     js.Name,
				State:    string(js.State),
				Position: fromVecPtr(js.Position),
				Mirror:   fromVecPtr(js.Mirror),
			})
		}
		return res, nil
	})
}

type SelectionInfoResponse struct {
	Vertices int      `json:"vertices"`
	Centroid Position `json:"centroid"`
}

type SelectionInfoTool struct{ svc *Service }

func (t *SelectionInfoTool) Name() string {
	return "selection_info"
}

func (t *SelectionInfoTool) Description() string {
	return "Preview what a placement would use: the number of selected vertices " +
		"and their centroid. Refused when nothing is selected."
}

func (t *SelectionInfoTool) Title() string {
	return "Selection Info"
}

func (t *SelectionInfoTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *SelectionInfoTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *SelectionInfoTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.run(func() (interface{}, error) {
		preview, err := t.svc.rig.SelectionPreview(ctx)
		if err != nil {
			return nil, err
		}
		return SelectionInfoResponse{
			Vertices: preview.VertexCount,
			Centroid: fromVec(preview.Centroid),
		}, nil
	})
}
