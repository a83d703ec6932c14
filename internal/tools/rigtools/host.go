package rigtools

import (
	"context"
	"encoding/json"
	"net"
	"strconv"

	"github.com/alucardeht/maya-rig-mcp/internal/scene/maya"
	"github.com/alucardeht/maya-rig-mcp/internal/tools"
)

type HostStatusResponse struct {
	Mode      string             `json:"mode"`
	Connected bool               `json:"connected"`
	Reachable bool               `json:"reachable,omitempty"`
	Session   *maya.SessionStats `json:"session,omitempty"`
}

type HostStatusTool struct{ svc *Service }

func (t *HostStatusTool) Name() string {
	return "host_status"
}

func (t *HostStatusTool) Description() string {
	return "Report the Maya session: connection state, host application info, " +
		"request counters, and circuit breaker status. Pings the listener when connected."
}

func (t *HostStatusTool) Title() string {
	return "Host Status"
}

func (t *HostStatusTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *HostStatusTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *HostStatusTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.svc.run(func() (interface{}, error) {
		if t.svc.session == nil {
			return HostStatusResponse{Mode: "in-memory", Connected: true, Reachable: true}, nil
		}

		stats := t.svc.session.Stats()
		res := HostStatusResponse{
			Mode:      "maya",
			Connected: t.svc.session.Ready(),
			Session:   &stats,
		}
		if res.Connected {
			res.Reachable = t.svc.session.Ping(ctx) == nil
		}
		return res, nil
	})
}

type HostSetupResponse struct {
	Address      string   `json:"address"`
	Snippet      string   `json:"snippet"`
	Script       string   `json:"script"`
	Instructions []string `json:"instructions"`
}

type HostSetupTool struct{ svc *Service }

func (t *HostSetupTool) Name() string {
	return "host_setup"
}

func (t *HostSetupTool) Description() string {
	return "Return the Python listener that must run inside Maya, plus the " +
		"userSetup.py snippet that starts it on the configured address."
}

func (t *HostSetupTool) Title() string {
	return "Host Setup"
}

func (t *HostSetupTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *HostSetupTool) Schema() json.RawMessage {
	return emptySchema()
}

func (t *HostSetupTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	cfg := t.svc.mayaCfg
	return HostSetupResponse{
		Address: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Snippet: maya.SetupSnippet(cfg.Host, cfg.Port),
		Script:  maya.ListenerScript(),
		Instructions: []string{
			"Save the script as mayarig_listener.py in a directory on Maya's PYTHONPATH (for example the scripts folder of your Maya prefs).",
			"Add the snippet to userSetup.py, or paste it into the script editor to start the listener immediately.",
			"The listener binds localhost only; change host/port via MAYARIG_MAYA_HOST and MAYARIG_MAYA_PORT.",
		},
	}, nil
}
