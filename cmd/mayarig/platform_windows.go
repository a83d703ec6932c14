//go:build windows

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

const daemonBinaryName = "mayarig-daemon.exe"

// setupCleanupHandlers tears the instance down on Ctrl+C. Windows delivers
// no SIGTERM/SIGHUP equivalents through os/signal.
func setupCleanupHandlers() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		<-sigChan
		cleanup()
		os.Exit(0)
	}()
}

// killDaemon terminates the daemon process and waits up to five seconds for
// the handle to go stale.
func killDaemon(pid int) {
	const processTerminate = 0x0001
	const processQueryInformation = 0x0400

	h, err := syscall.OpenProcess(processTerminate|processQueryInformation, false, uint32(pid))
	if err != nil {
		return
	}
	defer syscall.CloseHandle(h)

	if err := syscall.TerminateProcess(h, 0); err != nil {
		return
	}

	for i := 0; i < 50; i++ {
		checkH, err := syscall.OpenProcess(processQueryInformation, false, uint32(pid))
		if err != nil {
			return
		}
		syscall.CloseHandle(checkH)
		time.Sleep(100 * time.Millisecond)
	}
}
