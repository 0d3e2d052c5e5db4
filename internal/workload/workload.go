// Package workload drives a synthetic staged computation through the memory
// tracker, standing in for a real training process. Each stage allocates and
// touches page-aligned ballast so the cost shows up in resident memory.
package workload

import (
	"log/slog"
	"runtime"

	"github.com/me/memstage/pkg/memtrack"
)

const pageSize = 4096

// Sizes controls how much each stage allocates, in bytes.
type Sizes struct {
	Init  int
	Train int
	Eval  int
	Test  int
}

// DefaultSizes keeps the self-test fast while still moving resident memory
// measurably.
func DefaultSizes() Sizes {
	return Sizes{
		Init:  64 << 20,
		Train: 128 << 20,
		Eval:  32 << 20,
		Test:  16 << 20,
	}
}

// Run executes the four lifecycle stages under the tracker and returns the
// collected metrics. The init stage's metrics surface with the first
// post-stage update, per the tracker's init-reporting rule.
func Run(tracker *memtrack.Tracker, sizes Sizes, logger *slog.Logger) map[string]int64 {
	logger = logger.With("component", "workload")
	metrics := make(map[string]int64)

	tracker.Start("init")
	model := allocate(sizes.Init)
	tracker.Stop(memtrack.StageInit)
	logger.Debug("init done", "bytes", sizes.Init)

	tracker.Start("train")
	churn(sizes.Train)
	tracker.StopAndUpdateMetrics("train", metrics)
	logger.Debug("train done", "bytes", sizes.Train)

	tracker.Start("evaluate")
	churn(sizes.Eval)
	tracker.StopAndUpdateMetrics("evaluate", metrics)
	logger.Debug("eval done", "bytes", sizes.Eval)

	tracker.Start("predict")
	churn(sizes.Test)
	tracker.StopAndUpdateMetrics("predict", metrics)
	logger.Debug("predict done", "bytes", sizes.Test)

	runtime.KeepAlive(model)
	return metrics
}

// allocate returns n bytes with every page touched so they count against RSS.
func allocate(n int) []byte {
	b := make([]byte, n)
	for i := 0; i < len(b); i += pageSize {
		b[i] = 1
	}
	return b
}

// churn allocates n transient bytes that become garbage when it returns,
// giving the stage a peak above its end figure.
func churn(n int) {
	b := allocate(n)
	runtime.KeepAlive(b)
}
