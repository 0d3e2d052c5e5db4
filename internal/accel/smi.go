package accel

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultSampleInterval is how often the peak watcher polls the driver.
// nvidia-smi forks a process per query, so this loop ticks rather than spins.
const DefaultSampleInterval = 100 * time.Millisecond

type queryFunc func() (int64, error)

// SMI tracks this process's device memory through nvidia-smi. The driver only
// exposes instantaneous usage, so "max allocated since reset" is maintained
// here by a ticker-driven watcher goroutine folding samples into a running
// peak between resets.
//
// SMI satisfies the tracker's Accelerator interface.
type SMI struct {
	query    queryFunc
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	peak int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates an SMI handle polling at the given interval (zero means
// DefaultSampleInterval) and starts its peak watcher. Close stops it.
func New(logger *slog.Logger, interval time.Duration) *SMI {
	ownPid := pid()
	return newWithQuery(logger, interval, func() (int64, error) {
		return queryProcessMemory(ownPid)
	})
}

func newWithQuery(logger *slog.Logger, interval time.Duration, query queryFunc) *SMI {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	s := &SMI{
		query:    query,
		interval: interval,
		logger:   logger.With("component", "accel"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go s.watch()
	return s
}

func (s *SMI) watch() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *SMI) sample() int64 {
	v, err := s.query()
	if err != nil {
		s.logger.Debug("device query failed", "error", err)
		return 0
	}
	s.mu.Lock()
	if v > s.peak {
		s.peak = v
	}
	s.mu.Unlock()
	return v
}

// Allocated returns the bytes this process currently holds on the device.
// The reading also feeds the running peak.
func (s *SMI) Allocated() int64 {
	return s.sample()
}

// MaxAllocated returns the largest usage observed since the last
// ResetPeakStats, including the instantaneous usage right now.
func (s *SMI) MaxAllocated() int64 {
	s.sample()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

// ResetPeakStats discards the running peak.
func (s *SMI) ResetPeakStats() {
	s.mu.Lock()
	s.peak = 0
	s.mu.Unlock()
}

// EmptyCache exists to satisfy the Accelerator interface. Driver-level usage
// has no allocator cache to release.
func (s *SMI) EmptyCache() {}

// Close stops the peak watcher.
func (s *SMI) Close() {
	close(s.stopCh)
	<-s.doneCh
}

func pid() int {
	return os.Getpid()
}

// queryProcessMemory asks nvidia-smi for per-process device usage and sums
// the MiB this process holds across devices.
func queryProcessMemory(pid int) (int64, error) {
	out, err := exec.Command(smiBinary,
		"--query-compute-apps=pid,used_memory",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", smiBinary, err)
	}
	return parseComputeApps(out, pid)
}

// parseComputeApps parses "pid, used_memory" CSV lines, returning total bytes
// for the given pid. Lines for other processes, blank lines, and "[N/A]"
// fields are skipped.
func parseComputeApps(out []byte, pid int) (int64, error) {
	var total int64
	for _, line := range strings.Split(string(bytes.TrimSpace(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, ",", 2)
		if len(fields) != 2 {
			continue
		}
		linePid, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || linePid != pid {
			continue
		}
		mem := strings.TrimSpace(fields[1])
		if mem == "" || strings.HasPrefix(mem, "[") {
			// "[N/A]" on devices that do not report per-process usage.
			continue
		}
		mib, err := strconv.ParseInt(mem, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse used_memory %q: %w", mem, err)
		}
		total += mib * 1024 * 1024
	}
	return total, nil
}
