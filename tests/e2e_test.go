package tests

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
	"github.com/alucardeht/maya-rig-mcp/internal/daemon"
	"github.com/alucardeht/maya-rig-mcp/internal/rig"
	"github.com/alucardeht/maya-rig-mcp/internal/scene/memscene"
	"github.com/alucardeht/maya-rig-mcp/internal/tools"
	"github.com/alucardeht/maya-rig-mcp/internal/tools/rigtools"
	"github.com/alucardeht/maya-rig-mcp/pkg/version"
)

var bipedAnchors = []struct {
	joint string
	at    r3.Vec
}{
	{"Pelvis", r3.Vec{Y: 8}},
	{"Neck", r3.Vec{Y: 14}},
	{"Head", r3.Vec{Y: 16}},
	{"Shoulder", r3.Vec{X: 3, Y: 13, Z: 1}},
	{"Elbow", r3.Vec{X: 3.5, Y: 10.5, Z: 0.8}},
	{"Wrist", r3.Vec{X: 4, Y: 8, Z: 1}},
	{"Hip", r3.Vec{X: 1.5, Y: 7, Z: 0.3}},
	{"Knee", r3.Vec{X: 1.6, Y: 4, Z: 0.4}},
	{"Ankle", r3.Vec{X: 1.7, Y: 1, Z: 0.2}},
	{"Ball_Of_Foot", r3.Vec{X: 1.8, Y: 0.4, Z: 1.2}},
	{"Toes", r3.Vec{X: 1.9, Y: 0.2, Z: 1.5}},
}

func newRigStack(t *testing.T) (*tools.Registry, *memscene.Scene) {
	t.Helper()
	ms := memscene.New()
	svc := rigtools.NewService(rig.New(ms, nil), nil, config.MayaConfig{
		Host: config.DefaultMayaHost,
		Port: config.DefaultMayaPort,
	}, nil)

	reg := tools.NewRegistry()
	if err := reg.Register(tools.NewHealthTool(version.Version, svc.HealthProbe)); err != nil {
		t.Fatal(err)
	}
	for _, tool := range rigtools.GetTools(svc) {
		if err := reg.Register(tool); err != nil {
			t.Fatal(err)
		}
	}
	return reg, ms
}

func execute(t *testing.T, reg *tools.Registry, name string, args map[string]interface{}) interface{} {
	t.Helper()
	data, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	result, err := reg.Execute(context.Background(), name, data)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	return result
}

func pickVertex(ms *memscene.Scene, at r3.Vec) {
	ms.SetVertex("body.vtx[0]", at)
	ms.Select("body.vtx[0]")
}

func TestRigToolsE2E(t *testing.T) {
	t.Run("Registry_AllToolsRegistered", func(t *testing.T) {
		reg, _ := newRigStack(t)

		names := reg.Names()
		expectedCount := 16
		if len(names) != expectedCount {
			t.Errorf("Expected %d tools, got %d: %v", expectedCount, len(names), names)
		}

		t.Logf("✅ Registered %d tools: %v", len(names), names)
	})

	t.Run("Rig_FullSession", func(t *testing.T) {
		reg, ms := newRigStack(t)

		for _, anchor := range bipedAnchors {
			pickVertex(ms, anchor.at)
			result := execute(t, reg, "place_joint", map[string]interface{}{"joint": anchor.joint})
			if _, refused := result.(rigtools.Refused); refused {
				t.Fatalf("placing %s was refused: %+v", anchor.joint, result)
			}
		}
		t.Logf("✅ Placed %d anchors", len(bipedAnchors))

		mirrored := execute(t, reg, "mirror_limbs", nil).(rigtools.MirrorLimbsResponse)
		if mirrored.Mirrored != 8 {
			t.Errorf("expected 8 mirrored joints, got %d", mirrored.Mirrored)
		}
		t.Logf("✅ Mirror pass: %d mirrored, %d skipped", mirrored.Mirrored, mirrored.Skipped)

		created := execute(t, reg, "create_spine", nil).(rigtools.CreateSpineResponse)
		if created.Count != 3 {
			t.Errorf("expected the default 3 vertebrae, got %d", created.Count)
		}
		t.Logf("✅ Spine: %v", created.Vertebrae)

		assembled := execute(t, reg, "assemble_bones", nil).(rigtools.AssembleBonesResponse)
		if !assembled.SpineLinked {
			t.Error("the spine pass should have run")
		}
		if assembled.LinksApplied != 21 {
			t.Errorf("expected 21 links, got %d", assembled.LinksApplied)
		}
		t.Logf("✅ Assembled: %d links, missing %v", assembled.LinksApplied, assembled.NodesMissing)

		for child, parent := range map[string]string{
			"Spine_0":        "Pelvis",
			"Spine_1":        "Spine_0",
			"Spine_2":        "Spine_1",
			"Neck":           "Spine_2",
			"Shoulder":       "Spine_2",
			"Head":           "Neck",
			"Elbow":          "Shoulder",
			"Wrist":          "Elbow",
			"Hip":            "Pelvis",
			"Knee":           "Hip",
			"Mirrored_Hip":   "Pelvis",
			"Mirrored_Elbow": "Mirrored_Shoulder",
		} {
			if got := ms.ParentOf(child); got != parent {
				t.Errorf("%s should hang off %s, got %q", child, parent, got)
			}
		}

		status := execute(t, reg, "rig_status", nil).(rigtools.RigStatusResponse)
		if !status.Spine.Exists {
			t.Error("status should report the spine")
		}
		placed := 0
		for _, js := range status.Joints {
			if js.State != "empty" {
				placed++
			}
		}
		if placed != len(bipedAnchors) {
			t.Errorf("expected %d non-empty joints, got %d", len(bipedAnchors), placed)
		}
		t.Logf("✅ Status: spine %+v, %d joints placed", status.Spine, placed)
	})

	t.Run("Rig_TeardownFlow", func(t *testing.T) {
		reg, ms := newRigStack(t)

		for _, anchor := range bipedAnchors {
			pickVertex(ms, anchor.at)
			execute(t, reg, "place_joint", map[string]interface{}{"joint": anchor.joint})
		}
		execute(t, reg, "mirror_limbs", nil)
		execute(t, reg, "create_spine", nil)
		execute(t, reg, "assemble_bones", nil)

		deleted := execute(t, reg, "delete_spine", nil).(rigtools.DeleteSpineResponse)
		if deleted.Count != 3 {
			t.Errorf("unexpected surviving count %d", deleted.Count)
		}
		if ms.HasNode("Spine_0") || ms.HasNode("Spine_1") || ms.HasNode("Spine_2") {
			t.Error("vertebra nodes should be gone")
		}
		if !ms.HasNode("Neck") || ms.ParentOf("Neck") != "" {
			t.Error("the neck should survive demolition unparented")
		}
		t.Logf("✅ Spine demolished")

		removed := execute(t, reg, "delete_joint", map[string]interface{}{"joint": "Toes"}).(rigtools.DeleteJointResponse)
		if len(removed.Removed) != 2 {
			t.Errorf("expected both sides removed, got %+v", removed)
		}
		if ms.HasNode("Toes") || ms.HasNode("Mirrored_Toes") {
			t.Error("toe nodes should be gone")
		}
		t.Logf("✅ Joint deleted: %v", removed.Removed)
	})

	t.Run("Rig_Refusals", func(t *testing.T) {
		reg, ms := newRigStack(t)

		result := execute(t, reg, "selection_info", nil)
		if _, ok := result.(rigtools.Refused); !ok {
			t.Errorf("empty selection should refuse, got %T", result)
		}

		pickVertex(ms, r3.Vec{Y: 8})
		execute(t, reg, "place_joint", map[string]interface{}{"joint": "Pelvis"})

		pickVertex(ms, r3.Vec{Y: 9})
		result = execute(t, reg, "place_joint", map[string]interface{}{"joint": "Pelvis"})
		refused, ok := result.(rigtools.Refused)
		if !ok {
			t.Fatalf("repeated placement should refuse, got %T", result)
		}
		if refused.Status != "refused" || refused.Reason == "" {
			t.Errorf("unexpected refusal %+v", refused)
		}

		result = execute(t, reg, "create_spine", nil)
		if _, ok := result.(rigtools.Refused); !ok {
			t.Errorf("spine without both anchors should refuse, got %T", result)
		}

		t.Logf("✅ Refusals flow as successful payloads")
	})

	t.Run("Health_Check", func(t *testing.T) {
		reg, _ := newRigStack(t)

		result := execute(t, reg, "health", nil)
		health := result.(map[string]interface{})
		if health["status"] != "healthy" {
			t.Errorf("unexpected health %v", health)
		}
		t.Logf("✅ Health: %v", result)
	})
}

func TestDaemonSocketE2E(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		HomeDir:        dir,
		InstanceDir:    dir,
		SocketPath:     filepath.Join(dir, "daemon.sock"),
		PIDFilePath:    filepath.Join(dir, "daemon.pid"),
		LockFilePath:   filepath.Join(dir, "daemon.lock"),
		MaxConnections: 4,
		Maya: config.MayaConfig{
			Host:           config.DefaultMayaHost,
			Port:           config.DefaultMayaPort,
			ConnectTimeout: time.Second,
			RequestTimeout: time.Second,
			DryRun:         true,
		},
	}

	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer d.Shutdown()

	conn, err := daemon.NewSocketConnector(cfg.SocketPath).Connect()
	if err != nil {
		t.Fatal(err)
	}
	client := daemon.NewClient(conn)
	defer client.Close()

	result, err := client.Call("initialize", map[string]interface{}{
		"protocolVersion": version.ProtocolVersion,
		"clientInfo":      map[string]interface{}{"name": "e2e", "version": "0"},
	})
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	t.Logf("✅ Initialize: %v", result)

	result, err = client.Call("tools/list", nil)
	if err != nil {
		t.Fatalf("tools/list failed: %v", err)
	}
	listed := result.(map[string]interface{})["tools"].([]interface{})
	if len(listed) != 16 {
		t.Errorf("expected 16 tools over the wire, got %d", len(listed))
	}
	t.Logf("✅ Listed %d tools", len(listed))

	result, err = client.Call("tools/call", map[string]interface{}{
		"name":      "place_joint",
		"arguments": map[string]interface{}{"joint": "Pelvis"},
	})
	if err != nil {
		t.Fatalf("tools/call failed: %v", err)
	}
	content := result.(map[string]interface{})["content"].([]interface{})
	text := content[0].(map[string]interface{})["text"].(string)
	if !strings.Contains(text, "refused") {
		t.Errorf("placement without a selection should refuse, got %q", text)
	}
	t.Logf("✅ Refusal over the wire: %s", text)
}

func TestToolMetadata(t *testing.T) {
	reg, _ := newRigStack(t)

	for _, tool := range reg.List() {
		if tool.Name() == "" {
			t.Errorf("Tool has empty name")
		}
		if tool.Description() == "" {
			t.Errorf("Tool %s has empty description", tool.Name())
		}
		schema := tool.Schema()
		if len(schema) == 0 {
			t.Errorf("Tool %s has empty schema", tool.Name())
		}

		var schemaMap map[string]interface{}
		if err := json.Unmarshal(schema, &schemaMap); err != nil {
			t.Errorf("Tool %s has invalid JSON schema: %v", tool.Name(), err)
		}
	}

	t.Logf("✅ All %d tools have valid metadata", len(reg.List()))
}
