package rigtools

import (
	"encoding/json"
	"fmt"

	"github.com/alucardeht/maya-rig-mcp/internal/tools"
)

// GetTools returns every rig tool bound to the service.
func GetTools(svc *Service) []tools.Tool {
	return []tools.Tool{
		&PlaceJointTool{svc},
		&MirrorJointTool{svc},
		&DeleteJointTool{svc},
		&MirrorLimbsTool{svc},
		&CreateSpineTool{svc},
		&DeleteSpineTool{svc},
		&AddSpineJointTool{svc},
		&RemoveSpineJointTool{svc},
		&ResetSpineTool{svc},
		&AssembleBonesTool{svc},
		&RigStatusTool{svc},
		&SelectionInfoTool{svc},
		&JointHelpTool{svc},
		&HostStatusTool{svc},
		&HostSetupTool{svc},
	}
}

// jointSchema builds the one-parameter schema shared by the joint tools,
// with the catalog as the enum so clients can't guess names.
func (s *Service) jointSchema(description string) json.RawMessage {
	return buildJointSchema(description, s.rig.JointNames())
}

func (s *Service) jointSchemaWithSpine(description string) json.RawMessage {
	names := append(s.rig.JointNames(), s.rig.Spine().Name())
	return buildJointSchema(description, names)
}

func buildJointSchema(description string, names []string) json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"joint": map[string]interface{}{
				"type":        "string",
				"description": description,
				"enum":        names,
			},
		},
		"required": []string{"joint"},
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("marshal joint schema: %v", err))
	}
	return raw
}
