//go:build !windows

// Package reaper runs a minimal zombie-process reaper goroutine. Spec
// §5 explicitly carves process lifecycle management for long-lived
// upstream helpers out of the core's scope but still names a separate
// reaper thread as part of the larger system; this is that thread,
// started only from the `serve` command and never by the engine
// itself.
package reaper

import (
	"context"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// Run polls for exited child processes with a non-blocking Wait4 and
// reaps them, until ctx is cancelled. interval controls how often it
// polls when no SIGCHLD-driven wakeup is wired in.
func Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reapOnce()
		}
	}
}

// reapOnce drains any already-exited children without blocking. A
// child started by adapters/whitakers.go that exits normally is
// already collected by cmd.Wait(); this loop only catches processes
// that were reparented or whose waiter goroutine never ran.
func reapOnce() {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return
		}
		Logger.Debug().Int("pid", pid).Msg("reaped child process")
	}
}
