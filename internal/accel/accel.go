// Package accel reads accelerator (GPU) memory usage for the running
// process. The only backend is the NVIDIA driver, queried through the
// nvidia-smi tool; hosts without one simply have no accelerator.
package accel

import (
	"log/slog"
	"os/exec"
	"time"
)

const smiBinary = "nvidia-smi"

// Detect probes for a usable NVIDIA accelerator and returns an SMI handle
// for it, or nil when none is present. Callers must treat a nil result as
// "no accelerator" rather than wrapping it in an interface value.
func Detect(logger *slog.Logger, interval time.Duration) *SMI {
	if _, err := exec.LookPath(smiBinary); err != nil {
		logger.Debug("no accelerator: nvidia-smi not found")
		return nil
	}
	if _, err := queryProcessMemory(pid()); err != nil {
		logger.Debug("no accelerator: nvidia-smi query failed", "error", err)
		return nil
	}
	return New(logger, interval)
}
