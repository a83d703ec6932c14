//go:build windows

package main

import (
	"os"
	"os/signal"
)

// waitForShutdownSignal blocks until an interrupt is received. Windows only
// delivers Ctrl+C through os/signal.
func waitForShutdownSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan
}
