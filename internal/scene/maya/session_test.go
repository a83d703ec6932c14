package maya

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
	"github.com/alucardeht/maya-rig-mcp/internal/scene"
)

// fakeHost answers the listener protocol with canned responses. Methods in
// silent are never answered, which the client sees as a timeout.
type fakeHost struct {
	mu      sync.Mutex
	methods []string
	silent  map[string]bool
}

func (f *fakeHost) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.methods))
	copy(out, f.methods)
	return out
}

func (f *fakeHost) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	f.mu.Lock()
	f.methods = append(f.methods, req.Method)
	silent := f.silent[req.Method]
	f.mu.Unlock()
	if silent {
		return
	}

	switch req.Method {
	case "session/describe":
		conn.Reply(ctx, req.ID, HostInfo{Application: "maya", Version: "2025", Scene: "rigbench.ma"})
	case "session/ping":
		conn.Reply(ctx, req.ID, map[string]bool{"pong": true})
	case "scene/selection":
		conn.Reply(ctx, req.ID, map[string][]string{"handles": {"body.vtx[0]", "body.vtx[1]"}})
	case "scene/vertexPosition":
		conn.Reply(ctx, req.ID, wirePosition{X: 1, Y: 2, Z: 3})
	case "scene/createJoint":
		var p struct {
			Name string `json:"name"`
		}
		if req.Params != nil {
			json.Unmarshal(*req.Params, &p)
		}
		created := p.Name
		if created == "Clash" {
			created = "Clash1"
		}
		conn.Reply(ctx, req.ID, map[string]string{"name": created})
	case "scene/parent":
		conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
			Code: codeAlreadyChild, Message: "'Hip' is already a child of 'Pelvis'",
		})
	case "scene/deleteNode":
		conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
			Code: codeNodeMissing, Message: "node 'Ghost' does not exist",
		})
	default:
		conn.Reply(ctx, req.ID, struct{}{})
	}
}

func startFakeHost(t *testing.T, h jsonrpc2.Handler) config.MayaConfig {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			stream := jsonrpc2.NewBufferedStream(c, jsonrpc2.VSCodeObjectCodec{})
			jsonrpc2.NewConn(context.Background(), stream, h)
		}
	}()

	return config.MayaConfig{
		Host:           "127.0.0.1",
		Port:           l.Addr().(*net.TCPAddr).Port,
		ConnectTimeout: time.Second,
		RequestTimeout: time.Second,
	}
}

func connectedSession(t *testing.T, host *fakeHost, mutate func(*config.MayaConfig)) *Session {
	t.Helper()
	cfg := startFakeHost(t, host)
	if mutate != nil {
		mutate(&cfg)
	}
	s := NewSession(cfg, nil)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionConnect(t *testing.T) {
	host := &fakeHost{}
	s := connectedSession(t, host, nil)

	assert.True(t, s.Ready())
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, "maya", s.Host().Application)
	assert.Equal(t, "rigbench.ma", s.Host().Scene)
	assert.Equal(t, []string{"session/describe"}, host.seen())

	stats := s.Stats()
	assert.Equal(t, StateReady, stats.State)
	assert.Equal(t, "closed", stats.Circuit.State)
}

func TestSessionSceneCalls(t *testing.T) {
	host := &fakeHost{}
	s := connectedSession(t, host, nil)
	ctx := context.Background()

	handles, err := s.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"body.vtx[0]", "body.vtx[1]"}, handles)

	at, err := s.VertexPosition(ctx, "body.vtx[0]")
	require.NoError(t, err)
	assert.Equal(t, 2.0, at.Y)

	require.NoError(t, s.Ping(ctx))
	assert.Contains(t, host.seen(), "scene/vertexPosition")
}

func TestSessionRelationErrorIsBenign(t *testing.T) {
	s := connectedSession(t, &fakeHost{}, nil)

	err := s.Parent(context.Background(), "Hip", "Pelvis")
	require.Error(t, err)
	assert.True(t, scene.IsBenign(err), "relation codes must map to benign errors: %v", err)
}

func TestSessionDomainErrorIsNotBenign(t *testing.T) {
	s := connectedSession(t, &fakeHost{}, nil)

	err := s.DeleteNode(context.Background(), "Ghost")
	require.Error(t, err)
	assert.False(t, scene.IsBenign(err))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestSessionRejectsRenamedJoint(t *testing.T) {
	s := connectedSession(t, &fakeHost{}, nil)
	ctx := context.Background()

	require.NoError(t, s.CreateJoint(ctx, "Pelvis", r3.Vec{Y: 8}))

	err := s.CreateJoint(ctx, "Clash", r3.Vec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Clash1")
}

func TestSessionRequiresConnection(t *testing.T) {
	s := NewSession(config.MayaConfig{Host: "127.0.0.1", Port: 1}, nil)

	_, err := s.Selection(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSessionCircuitOpensAfterTimeouts(t *testing.T) {
	host := &fakeHost{silent: map[string]bool{"scene/idle": true}}
	s := connectedSession(t, host, func(cfg *config.MayaConfig) {
		cfg.RequestTimeout = 50 * time.Millisecond
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.Settle(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrHostUnavailable, "attempt %d should reach the wire", i)
	}

	err := s.Settle(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHostUnavailable, "the breaker should now fail fast")

	stats := s.Stats()
	assert.Equal(t, "open", stats.Circuit.State)
	assert.EqualValues(t, 3, stats.ErrorCount)
}

func TestSessionClose(t *testing.T) {
	s := connectedSession(t, &fakeHost{}, nil)

	require.NoError(t, s.Close())
	assert.Equal(t, StateClosed, s.State())

	_, err := s.Selection(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Close(), ErrSessionClosed)
}
