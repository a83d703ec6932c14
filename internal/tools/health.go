package tools

import (
	"context"
	"encoding/json"
	"time"
)

// HealthTool reports daemon liveness plus whatever the probe contributes,
// typically the host link state.
type HealthTool struct {
	version string
	started time.Time
	probe   func() map[string]interface{}
}

func NewHealthTool(version string, probe func() map[string]interface{}) *HealthTool {
	return &HealthTool{
		version: version,
		started: time.Now(),
		probe:   probe,
	}
}

func (t *HealthTool) Name() string {
	return "health"
}

func (t *HealthTool) Description() string {
	return "Check daemon health, uptime, and host link status"
}

func (t *HealthTool) Title() string {
	return "Daemon Health"
}

func (t *HealthTool) Annotations() map[string]bool {
	return ReadOnlyAnnotations()
}

func (t *HealthTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *HealthTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	result := map[string]interface{}{
		"status":  "healthy",
		"version": t.version,
		"uptime":  time.Since(t.started).Round(time.Second).String(),
	}
	if t.probe != nil {
		for k, v := range t.probe() {
			result[k] = v
		}
	}
	return result, nil
}
