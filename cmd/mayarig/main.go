// Command mayarig is the stdio MCP bridge. It spawns a private daemon
// instance, forwards newline-delimited JSON-RPC between stdin/stdout and the
// daemon's unix socket, and tears the instance down when the client hangs
// up.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
	"github.com/alucardeht/maya-rig-mcp/internal/daemon"
	"github.com/alucardeht/maya-rig-mcp/pkg/protocol"
)

const readyTimeout = 10 * time.Second

var (
	daemonPID   int
	instanceDir string
	cleanupOnce sync.Once
	daemonDone  chan struct{}
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("mayarig: ")
	log.SetFlags(0)

	instanceID := uuid.NewString()
	daemonDone = make(chan struct{})

	cfg, err := config.LoadWithInstance(instanceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	instanceDir = cfg.InstanceDir

	setupCleanupHandlers()

	pid, cmd, err := startDaemonForInstance(instanceID)
	daemonPID = pid
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	if err := waitForDaemonReady(cfg.SocketPath, readyTimeout); err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "Daemon failed to become ready: %v\n", err)
		os.Exit(1)
	}

	go monitorDaemon(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := connectToDaemon(cfg.SocketPath)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "Failed to connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	client := daemon.NewClient(conn)
	if err := handleStdio(ctx, client); err != nil {
		if ctx.Err() == nil {
			log.Printf("Error handling stdio: %v", err)
		}
	}

	cleanup()
}

func startDaemonForInstance(instanceID string) (int, *exec.Cmd, error) {
	execPath, err := os.Executable()
	if err != nil {
		return 0, nil, err
	}
	daemonPath := filepath.Join(filepath.Dir(execPath), daemonBinaryName)

	cmd := exec.Command(daemonPath, instanceID)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, nil, fmt.Errorf("failed to start daemon: %w", err)
	}

	return cmd.Process.Pid, cmd, nil
}

func waitForDaemonReady(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			time.Sleep(100 * time.Millisecond)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("daemon socket not ready after %v", timeout)
}

func monitorDaemon(cmd *exec.Cmd) {
	err := cmd.Wait()
	close(daemonDone)

	log.Printf("Daemon process exited: %v", err)
	cleanup()
	os.Exit(1)
}

func cleanup() {
	cleanupOnce.Do(func() {
		if daemonPID > 0 {
			killDaemon(daemonPID)
		}

		if instanceDir != "" {
			os.RemoveAll(instanceDir)
		}
	})
}

func connectToDaemon(socketPath string) (net.Conn, error) {
	connector := daemon.NewSocketConnector(socketPath)
	return connector.Connect()
}

type stdinRequest struct {
	req *protocol.JSONRPCRequest
	err error
}

// readStdin pumps decoded requests into a channel so the main loop can also
// watch for cancellation and daemon death. One goroutine owns the decoder.
func readStdin(decoder *json.Decoder) <-chan stdinRequest {
	ch := make(chan stdinRequest)
	go func() {
		defer close(ch)
		for {
			var req protocol.JSONRPCRequest
			if err := decoder.Decode(&req); err != nil {
				ch <- stdinRequest{err: err}
				return
			}
			ch <- stdinRequest{req: &req}
		}
	}()
	return ch
}

func handleStdio(ctx context.Context, client *daemon.Client) error {
	requests := readStdin(json.NewDecoder(os.Stdin))
	writer := protocol.NewFlushWriter(os.Stdout)
	encoder := json.NewEncoder(writer)

	writeResponse := func(resp *protocol.JSONRPCResponse) error {
		if err := encoder.Encode(resp); err != nil {
			return err
		}
		return writer.Flush()
	}

	for {
		var in stdinRequest
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-daemonDone:
			return fmt.Errorf("daemon went away")
		case in = <-requests:
		}

		if in.err != nil {
			if in.err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to decode request: %w", in.err)
		}

		resp, err := client.SendRequest(in.req)
		if err != nil {
			// Notifications carry no ID and expect no reply.
			if in.req.ID == nil {
				continue
			}
			errResp := &protocol.JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      in.req.ID,
				Error: &protocol.JSONRPCError{
					Code:    -32603,
					Message: err.Error(),
				},
			}
			if werr := writeResponse(errResp); werr != nil {
				return nil
			}
			continue
		}

		if in.req.ID != nil {
			if werr := writeResponse(resp); werr != nil {
				return nil
			}
		}
	}
}
