// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup spawns child processes in their own process group and
// stops them as a group.
package procgroup

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/ManuGH/trackrec/internal/log"
	"github.com/ManuGH/trackrec/internal/metrics"
)

// Terminate stops the process group of cmd. It sends first (SIGINT lets
// ffmpeg write the container trailer), waits up to grace for waitCh to
// deliver the exit result and escalates to SIGKILL otherwise. waitCh is
// always drained and its value returned. Safe to call on unstarted commands.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, first syscall.Signal, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	logger := log.WithComponent("procgroup")

	logger.Debug().Int(log.FieldPID, cmd.Process.Pid).Str("signal", first.String()).Msg("signalling process group")
	metrics.IncProcTerminate(first.String(), result(Signal(cmd, first)))

	select {
	case err := <-waitCh:
		return err
	case <-time.After(grace):
	}

	logger.Warn().Int(log.FieldPID, cmd.Process.Pid).Dur("grace", grace).Msg("grace period exceeded, sending SIGKILL to process group")
	metrics.IncProcTerminate(syscall.SIGKILL.String(), result(Signal(cmd, syscall.SIGKILL)))

	return <-waitCh
}

func result(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, os.ErrProcessDone):
		return "esrch"
	default:
		return "error"
	}
}
