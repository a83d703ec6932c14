// Command mayarig-daemon serves one rig instance over a unix socket. It is
// normally spawned by the mayarig bridge with the instance ID as its only
// argument; running it by hand with no argument serves the default instance
// directory.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alucardeht/maya-rig-mcp/internal/config"
	"github.com/alucardeht/maya-rig-mcp/internal/daemon"
	"github.com/alucardeht/maya-rig-mcp/internal/logger"
)

func main() {
	instanceID := ""
	if len(os.Args) > 1 {
		instanceID = os.Args[1]
	}

	cfg, err := config.LoadWithInstance(instanceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})
	log := logger.ForComponent("daemon")

	if err := cfg.EnsureDirectories(); err != nil {
		log.Error("failed to ensure directories", "error", err)
		os.Exit(1)
	}

	lm := daemon.NewLifecycleManager(cfg)
	if err := lm.AcquireInstanceLock(); err != nil {
		if errors.Is(err, daemon.ErrLockHeld) && lm.IsSocketResponsive() {
			fmt.Println("Daemon already running")
			os.Exit(0)
		}
		log.Error("failed to acquire instance lock", "error", err)
		os.Exit(1)
	}
	defer lm.Cleanup()

	if err := lm.RegisterRunningDaemon(); err != nil {
		log.Error("failed to write PID file", "error", err)
		os.Exit(1)
	}

	d, err := daemon.New(cfg, log)
	if err != nil {
		log.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	if err := d.Start(); err != nil {
		log.Error("failed to start daemon", "error", err)
		os.Exit(1)
	}

	waitForShutdownSignal()
	d.Shutdown()
}
