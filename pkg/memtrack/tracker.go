// Package memtrack attributes peak and delta memory consumption (CPU and
// accelerator) to lifecycle stages of a long-running computation. A caller
// brackets each stage with Start and Stop; the tracker snapshots both memory
// domains around the stage, runs a concurrent peak sampler for CPU resident
// memory, and folds the resulting per-stage figures into a caller-supplied
// metrics map.
package memtrack

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/me/memstage/internal/sysmem"
)

// ProcessMemory reports current resident-set bytes for the running process.
type ProcessMemory interface {
	Resident() int64
}

// Accelerator exposes the memory bookkeeping of a co-processor device. A nil
// Accelerator on the tracker skips the accelerator snapshot path entirely.
type Accelerator interface {
	// Allocated returns the bytes currently allocated on the device by this
	// process.
	Allocated() int64
	// MaxAllocated returns the largest allocation figure observed since the
	// last ResetPeakStats.
	MaxAllocated() int64
	// ResetPeakStats discards the running peak.
	ResetPeakStats()
	// EmptyCache releases cached device memory back to the allocator so it is
	// not counted as live usage.
	EmptyCache()
}

// Collector forces an immediate garbage-collection pass.
type Collector func()

// Option configures a Tracker.
type Option func(*Tracker)

// WithSkipMemoryMetrics turns every tracker operation into a no-op. No
// tracking state is allocated.
func WithSkipMemoryMetrics() Option {
	return func(t *Tracker) { t.skip = true }
}

// WithProcessMemory overrides the process resident-memory source. The default
// reads the current process via gopsutil.
func WithProcessMemory(proc ProcessMemory) Option {
	return func(t *Tracker) { t.proc = proc }
}

// WithAccelerator attaches an accelerator memory source. Without one, no
// gpu-prefixed metrics are produced.
func WithAccelerator(accel Accelerator) Option {
	return func(t *Tracker) { t.accel = accel }
}

// WithCollector overrides the garbage-collection trigger (default runtime.GC).
func WithCollector(collect Collector) Option {
	return func(t *Tracker) { t.collect = collect }
}

// WithLogger attaches a logger for debug-level lifecycle events. Silently
// absorbed no-ops (double start, mismatched stop) are not logged at all.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger.With("component", "memtrack") }
}

// Tracker owns the stage lifecycle state and the recorded per-stage
// snapshots. It is driven from a single goroutine; the only concurrency it
// manages is its own peak sampler.
//
// All methods are safe on a nil Tracker.
type Tracker struct {
	skip    bool
	proc    ProcessMemory
	accel   Accelerator
	collect Collector
	logger  *slog.Logger

	state        trackerState
	cpu          map[Stage]Snapshot
	gpu          map[Stage]Snapshot
	initReported bool

	sampler  *peakSampler
	cpuBegin int64
	gpuBegin int64
}

// New creates a Tracker. With WithSkipMemoryMetrics the returned tracker
// holds no state and every method is a no-op.
func New(opts ...Option) *Tracker {
	t := &Tracker{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(t)
	}
	if t.skip {
		return &Tracker{skip: true}
	}
	if t.proc == nil {
		t.proc = sysmem.Self()
	}
	if t.collect == nil {
		t.collect = runtime.GC
	}
	t.state = idleState()
	t.cpu = make(map[Stage]Snapshot)
	t.gpu = make(map[Stage]Snapshot)
	return t
}

// Enabled reports whether the tracker records anything.
func (t *Tracker) Enabled() bool {
	return t != nil && !t.skip
}

// Start opens the stage named by tag and begins sampling. It is a no-op while
// any stage is already open, including the same one. Panics on an unknown
// tag.
func (t *Tracker) Start(tag string) {
	if !t.Enabled() {
		return
	}
	stage := ResolveStage(tag)
	next, ok := t.state.start(stage)
	if !ok {
		return
	}
	t.state = next

	// Collect reclaimable garbage first so it is not counted as live usage,
	// then settle the accelerator allocator before taking baselines.
	t.collect()
	if t.accel != nil {
		t.accel.ResetPeakStats()
		t.accel.EmptyCache()
		t.gpuBegin = t.accel.Allocated()
	}
	t.cpuBegin = t.proc.Resident()

	t.sampler = startPeakSampler(t.proc.Resident)
	t.logger.Debug("stage opened", "stage", stage, "cpu_begin", t.cpuBegin)
}

// Stop closes stage and records its snapshots. It is a no-op when stage is
// not the open one, or when no stage is open.
func (t *Tracker) Stop(stage Stage) {
	if !t.Enabled() {
		return
	}
	next, ok := t.state.stop(stage)
	if !ok {
		return
	}

	peak := t.sampler.Stop()
	t.sampler = nil

	t.collect()
	if t.accel != nil {
		t.accel.EmptyCache()
		end := t.accel.Allocated()
		t.gpu[stage] = newSnapshot(t.gpuBegin, end, t.accel.MaxAllocated())
	}
	end := t.proc.Resident()
	t.cpu[stage] = newSnapshot(t.cpuBegin, end, peak)

	t.state = next
	t.logger.Debug("stage closed", "stage", stage,
		"cpu_alloc", t.cpu[stage].Alloc, "cpu_peaked", t.cpu[stage].Peaked)
}

// UpdateMetrics writes the recorded metrics for stage into the supplied map.
// The first successful update additionally emits the init-stage metrics and
// the pre-init baselines; later updates never repeat them. No-op while a
// different stage is open.
func (t *Tracker) UpdateMetrics(stage Stage, metrics map[string]int64) {
	if !t.Enabled() || metrics == nil {
		return
	}
	if !t.state.allows(stage) {
		return
	}

	stages := []Stage{stage}
	if !t.initReported {
		stages = append([]Stage{StageInit}, stages...)
		t.initReported = true
	}

	for _, s := range stages {
		if snap, ok := t.cpu[s]; ok {
			writeSnapshotMetrics(metrics, s, "cpu", snap)
		}
		if snap, ok := t.gpu[s]; ok {
			writeSnapshotMetrics(metrics, s, "gpu", snap)
		}
	}

	if stages[0] == StageInit {
		if snap, ok := t.cpu[StageInit]; ok {
			metrics["before_init_memory_cpu"] = snap.Begin
		}
		if snap, ok := t.gpu[StageInit]; ok {
			metrics["before_init_memory_gpu"] = snap.Begin
		}
	}
}

// StopAndUpdateMetrics resolves the stage from tag, stops it, and folds its
// metrics into the supplied map when one is given.
func (t *Tracker) StopAndUpdateMetrics(tag string, metrics map[string]int64) {
	if !t.Enabled() {
		return
	}
	stage := ResolveStage(tag)
	t.Stop(stage)
	if metrics != nil {
		t.UpdateMetrics(stage, metrics)
	}
}

// CPUSnapshot returns the recorded CPU snapshot for stage, if any.
func (t *Tracker) CPUSnapshot(stage Stage) (Snapshot, bool) {
	if !t.Enabled() {
		return Snapshot{}, false
	}
	snap, ok := t.cpu[stage]
	return snap, ok
}

// AcceleratorSnapshot returns the recorded accelerator snapshot for stage, if
// any.
func (t *Tracker) AcceleratorSnapshot(stage Stage) (Snapshot, bool) {
	if !t.Enabled() {
		return Snapshot{}, false
	}
	snap, ok := t.gpu[stage]
	return snap, ok
}

func writeSnapshotMetrics(metrics map[string]int64, stage Stage, domain string, snap Snapshot) {
	metrics[fmt.Sprintf("%s_memory_%s_alloc_delta", stage, domain)] = snap.Alloc
	metrics[fmt.Sprintf("%s_memory_%s_peaked_delta", stage, domain)] = snap.Peaked
}
