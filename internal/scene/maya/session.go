// Package maya drives a live Maya session over the JSON-RPC command
// listener that ships with this module (see listener.py). The daemon keeps
// one Session per instance; it implements scene.Scene so the rig code never
// knows whether it talks to Maya or to an in-memory stand-in.
package maya

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
	"github.com/alucardeht/maya-rig-mcp/internal/logger"
	"github.com/alucardeht/maya-rig-mcp/pkg/version"
)

var (
	ErrNotConnected    = errors.New("maya session not connected")
	ErrSessionClosed   = errors.New("maya session closed")
	ErrHostUnavailable = errors.New("maya host unavailable")
)

// SessionState tracks the connection lifecycle.
type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StateConnecting   SessionState = "connecting"
	StateHandshaking  SessionState = "handshaking"
	StateReady        SessionState = "ready"
	StateError        SessionState = "error"
	StateClosed       SessionState = "closed"
)

// HostInfo is what the listener reports about its Maya process during the
// handshake.
type HostInfo struct {
	Application string `json:"application"`
	Version     string `json:"version"`
	APIVersion  string `json:"apiVersion,omitempty"`
	Scene       string `json:"scene,omitempty"`
}

type handshakeParams struct {
	Client    string `json:"client"`
	Version   string `json:"version"`
	ProcessID int    `json:"processId"`
}

// Session is one connection to the in-Maya listener.
type Session struct {
	cfg config.MayaConfig
	log *slog.Logger

	state   atomic.Value
	breaker *breaker

	mu          sync.RWMutex
	conn        *jsonrpc2.Conn
	host        HostInfo
	lastRequest time.Time

	requestCount int64
	errorCount   int64

	closedCh chan struct{}
}

func NewSession(cfg config.MayaConfig, log *slog.Logger) *Session {
	if log == nil {
		log = logger.ForComponent("maya")
	}
	s := &Session{
		cfg:      cfg,
		log:      log,
		breaker:  newBreaker(defaultBreakerConfig()),
		closedCh: make(chan struct{}),
	}
	s.state.Store(StateDisconnected)
	return s
}

// Address returns the listener endpoint this session dials.
func (s *Session) Address() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Connect dials the listener and performs the describe handshake. It can be
// called again after a connection was lost.
func (s *Session) Connect(ctx context.Context) error {
	select {
	case <-s.closedCh:
		return ErrSessionClosed
	default:
	}

	switch s.State() {
	case StateDisconnected, StateError:
	default:
		return fmt.Errorf("cannot connect in state %s", s.State())
	}
	s.state.Store(StateConnecting)

	addr := s.Address()
	dialer := net.Dialer{Timeout: s.cfg.ConnectTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		s.state.Store(StateError)
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	stream := jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(context.Background(), stream, &sessionHandler{log: s.log})

	s.state.Store(StateHandshaking)
	hctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	params := handshakeParams{
		Client:    "mayarig",
		Version:   version.Version,
		ProcessID: os.Getpid(),
	}
	var host HostInfo
	if err := conn.Call(hctx, "session/describe", params, &host); err != nil {
		conn.Close()
		s.state.Store(StateError)
		return fmt.Errorf("describe handshake: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.host = host
	s.mu.Unlock()
	s.breaker.reset()
	s.state.Store(StateReady)

	go s.watchDisconnect(conn)

	s.log.Info("connected to host",
		"address", addr,
		"application", host.Application,
		"version", host.Version,
		"scene", host.Scene)
	return nil
}

// watchDisconnect flips the session into the error state when the host
// drops the connection, so the next call fails fast and a reconnect is
// allowed.
func (s *Session) watchDisconnect(conn *jsonrpc2.Conn) {
	<-conn.DisconnectNotify()
	select {
	case <-s.closedCh:
		return
	default:
	}
	if s.State() == StateReady {
		s.state.Store(StateError)
		s.log.Warn("host connection lost", "address", s.Address())
	}
}

// sessionHandler receives server-initiated traffic. The listener only sends
// informational notifications; none require an answer.
type sessionHandler struct {
	log *slog.Logger
}

func (h *sessionHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		h.log.Debug("host notification", "method", req.Method)
	}
}

func (s *Session) Close() error {
	select {
	case <-s.closedCh:
		return ErrSessionClosed
	default:
		close(s.closedCh)
	}
	s.state.Store(StateClosed)

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *Session) State() SessionState {
	return s.state.Load().(SessionState)
}

func (s *Session) Ready() bool { return s.State() == StateReady }

// Host returns the handshake info of the current connection.
func (s *Session) Host() HostInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host
}

// Ping round-trips through the listener to verify the host still answers.
func (s *Session) Ping(ctx context.Context) error {
	var ok struct {
		Pong bool `json:"pong"`
	}
	return s.call(ctx, "session/ping", nil, &ok)
}

// call sends one request with the configured timeout. Transport failures
// feed the circuit breaker; errors the listener itself returns mean the
// host is alive and are handed back to the caller untouched.
func (s *Session) call(ctx context.Context, method string, params, result interface{}) error {
	select {
	case <-s.closedCh:
		return ErrSessionClosed
	default:
	}
	if !s.Ready() {
		return fmt.Errorf("%w (state %s)", ErrNotConnected, s.State())
	}
	if !s.breaker.allow() {
		return fmt.Errorf("%w: too many consecutive failures, backing off", ErrHostUnavailable)
	}

	s.recordRequest()

	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	err := conn.Call(callCtx, method, params, result)
	if err == nil {
		s.breaker.success()
		return nil
	}

	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		s.breaker.success()
		return err
	}

	s.recordError()
	s.breaker.failure()
	return fmt.Errorf("%s: %w", method, err)
}

// SessionStats is the transport snapshot reported by the host status tool.
type SessionStats struct {
	State        SessionState `json:"state"`
	Address      string       `json:"address"`
	Host         HostInfo     `json:"host,omitempty"`
	RequestCount int64        `json:"request_count"`
	ErrorCount   int64        `json:"error_count"`
	LastRequest  time.Time    `json:"last_request,omitempty"`
	Circuit      CircuitStats `json:"circuit"`
}

func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	host := s.host
	last := s.lastRequest
	s.mu.RUnlock()

	return SessionStats{
		State:        s.State(),
		Address:      s.Address(),
		Host:         host,
		RequestCount: atomic.LoadInt64(&s.requestCount),
		ErrorCount:   atomic.LoadInt64(&s.errorCount),
		LastRequest:  last,
		Circuit:      s.breaker.stats(),
	}
}

func (s *Session) recordRequest() {
	atomic.AddInt64(&s.requestCount, 1)
	s.mu.Lock()
	s.lastRequest = time.Now()
	s.mu.Unlock()
}

func (s *Session) recordError() {
	atomic.AddInt64(&s.errorCount, 1)
}
