package cli

import (
	"time"

	"github.com/me/memstage/internal/accel"
	"github.com/me/memstage/pkg/memtrack"
)

// newTracker builds a tracker from the loaded config. The returned cleanup
// stops the accelerator watcher, if one was detected.
func newTracker() (*memtrack.Tracker, func()) {
	if cfg.SkipMemoryMetrics {
		return memtrack.New(memtrack.WithSkipMemoryMetrics()), func() {}
	}

	opts := []memtrack.Option{memtrack.WithLogger(logger)}
	cleanup := func() {}

	if !cfg.Accelerator.Disabled {
		if smi := accel.Detect(logger, time.Duration(cfg.Accelerator.SampleInterval)); smi != nil {
			opts = append(opts, memtrack.WithAccelerator(smi))
			cleanup = smi.Close
			logger.Info("accelerator detected")
		} else {
			logger.Info("no accelerator detected, CPU metrics only")
		}
	}

	return memtrack.New(opts...), cleanup
}
