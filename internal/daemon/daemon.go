// Package daemon hosts the per-instance rig server behind a unix socket.
// The stdio bridge owns the daemon's lifetime: one bridge, one daemon, one
// socket directory.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
	"github.com/alucardeht/maya-rig-mcp/internal/logger"
	"github.com/alucardeht/maya-rig-mcp/internal/mcp"
	"github.com/alucardeht/maya-rig-mcp/internal/rig"
	"github.com/alucardeht/maya-rig-mcp/internal/scene"
	"github.com/alucardeht/maya-rig-mcp/internal/scene/maya"
	"github.com/alucardeht/maya-rig-mcp/internal/scene/memscene"
	"github.com/alucardeht/maya-rig-mcp/internal/tools"
	"github.com/alucardeht/maya-rig-mcp/internal/tools/rigtools"
	"github.com/alucardeht/maya-rig-mcp/pkg/version"
)

// reconnectInterval paces the background attempts to reach the Maya
// listener after a failed or dropped connection.
const reconnectInterval = 15 * time.Second

type Daemon struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *tools.Registry
	server   *mcp.Server
	session  *maya.Session

	socket       *SocketListener
	connections  map[net.Conn]bool
	connMu       sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	shutdown     chan struct{}
	shutdownOnce sync.Once
	startTime    time.Time
}

func New(cfg *config.Config, log *slog.Logger) (*Daemon, error) {
	if log == nil {
		log = logger.ForComponent("daemon")
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		cfg:         cfg,
		log:         log,
		registry:    tools.NewRegistry(),
		connections: make(map[net.Conn]bool),
		ctx:         ctx,
		cancel:      cancel,
		shutdown:    make(chan struct{}),
		startTime:   time.Now(),
	}

	var sc scene.Scene
	if cfg.Maya.DryRun {
		d.log.Info("dry run: using the in-memory scene")
		sc = memscene.New()
	} else {
		d.session = maya.NewSession(cfg.Maya, nil)
		sc = d.session
	}

	svc := rigtools.NewService(rig.New(sc, nil), d.session, cfg.Maya, nil)

	if err := d.registerTools(svc); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	d.server = mcp.NewServer(d.registry)

	return d, nil
}

func (d *Daemon) registerTools(svc *rigtools.Service) error {
	if err := d.registry.Register(tools.NewHealthTool(version.Version, svc.HealthProbe)); err != nil {
		return err
	}
	for _, tool := range rigtools.GetTools(svc) {
		if err := d.registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// Start binds the unix socket and begins serving. It returns once the
// daemon is accepting connections; Shutdown stops it.
func (d *Daemon) Start() error {
	socket := NewSocketListener(d.cfg.SocketPath)
	if err := socket.Start(); err != nil {
		return fmt.Errorf("failed to bind socket: %w", err)
	}
	d.socket = socket

	if d.session != nil {
		d.connectSession()
		go d.keepSessionAlive()
	}

	go d.acceptConnections()

	d.log.Info("daemon listening",
		"socket", d.cfg.SocketPath,
		"tools", len(d.registry.Names()),
		"version", version.Version)

	return nil
}

// connectSession makes one attempt to reach the Maya listener. Failure is
// not fatal: tools answer with host errors until the link comes up.
func (d *Daemon) connectSession() {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Maya.ConnectTimeout)
	defer cancel()

	if err := d.session.Connect(ctx); err != nil {
		d.log.Warn("maya listener unreachable, continuing without it",
			"address", d.session.Address(),
			"error", err)
		return
	}
	d.log.Info("connected to maya", "address", d.session.Address())
}

func (d *Daemon) keepSessionAlive() {
	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.shutdown:
			return
		case <-ticker.C:
		}

		switch d.session.State() {
		case maya.StateDisconnected, maya.StateError:
			d.connectSession()
		}
	}
}

func (d *Daemon) acceptConnections() {
	for {
		conn, err := d.socket.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return
			default:
				continue
			}
		}

		d.connMu.Lock()
		if len(d.connections) >= d.cfg.MaxConnections {
			d.connMu.Unlock()
			d.log.Warn("connection limit reached, rejecting client",
				"limit", d.cfg.MaxConnections)
			conn.Close()
			continue
		}
		d.connections[conn] = true
		d.connMu.Unlock()

		go d.handleConnection(conn)
	}
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer func() {
		conn.Close()
		d.connMu.Lock()
		delete(d.connections, conn)
		d.connMu.Unlock()
	}()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req mcp.Request
		if err := decoder.Decode(&req); err != nil {
			return
		}

		resp := d.server.HandleRequest(d.ctx, &req)

		if err := encoder.Encode(resp); err != nil {
			return
		}
	}
}

func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		close(d.shutdown)
		d.cancel()

		if d.socket != nil {
			d.socket.Close()
		}

		d.connMu.Lock()
		for conn := range d.connections {
			conn.Close()
		}
		d.connMu.Unlock()

		if d.session != nil {
			d.session.Close()
		}

		os.Remove(d.cfg.SocketPath)

		d.log.Info("daemon stopped", "uptime", d.Uptime().Round(time.Second))
	})
}

func (d *Daemon) SocketPath() string {
	return d.cfg.SocketPath
}

func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}

func (d *Daemon) ToolCount() int {
	return len(d.registry.Names())
}

func (d *Daemon) Registry() *tools.Registry {
	return d.registry
}
