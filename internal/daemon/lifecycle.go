package daemon

import (
	"fmt"
	"net"
	"time"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
)

// LifecycleManager owns the lock, PID, and socket files that keep two
// daemons from serving the same instance directory.
type LifecycleManager struct {
	lockFile   *LockFile
	pidFile    *PIDFile
	socketPath string
}

func NewLifecycleManager(cfg *config.Config) *LifecycleManager {
	return &LifecycleManager{
		lockFile:   NewLockFile(cfg.LockFilePath),
		pidFile:    NewPIDFile(cfg.PIDFilePath),
		socketPath: cfg.SocketPath,
	}
}

func (lm *LifecycleManager) AcquireInstanceLock() error {
	if err := lm.lockFile.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	return nil
}

// IsSocketResponsive reports whether something is answering on the instance
// socket. Used to tell a live daemon from a stale lock after a crash.
func (lm *LifecycleManager) IsSocketResponsive() bool {
	conn, err := net.DialTimeout("unix", lm.socketPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (lm *LifecycleManager) RegisterRunningDaemon() error {
	return lm.pidFile.Write()
}

func (lm *LifecycleManager) Cleanup() {
	lm.pidFile.Remove()
	lm.lockFile.Release()
}

func (lm *LifecycleManager) LockFile() *LockFile {
	return lm.lockFile
}

func (lm *LifecycleManager) PIDFile() *PIDFile {
	return lm.pidFile
}
