package memtrack

import (
	"sync/atomic"
	"testing"
)

func TestPeakSampler_TracksRunningMax(t *testing.T) {
	var value, reads atomic.Int64
	value.Store(5)
	read := func() int64 {
		reads.Add(1)
		return value.Load()
	}

	s := startPeakSampler(read)
	waitFor(t, func() bool { return reads.Load() > 0 })

	value.Store(9)
	mark := reads.Load()
	waitFor(t, func() bool { return reads.Load() > mark })

	value.Store(3)
	mark = reads.Load()
	waitFor(t, func() bool { return reads.Load() > mark })

	if peak := s.Stop(); peak != 9 {
		t.Errorf("peak = %d, want 9", peak)
	}
}

func TestPeakSampler_StopJoinsLoop(t *testing.T) {
	s := startPeakSampler(func() int64 { return 7 })
	peak := s.Stop()

	// The loop may or may not have completed an iteration before the stop
	// signal was observed.
	if peak != 7 && peak != -1 {
		t.Errorf("peak = %d, want 7 or -1", peak)
	}

	select {
	case <-s.done:
	default:
		t.Error("sampler goroutine still running after Stop")
	}
}

func TestSnapshot_PeakedClampsToZero(t *testing.T) {
	// A sampler that never completed an iteration reports -1; the snapshot
	// must clamp the peaked figure rather than go negative.
	snap := newSnapshot(100, 150, -1)
	if snap.Peaked != 0 {
		t.Errorf("Peaked = %d, want 0", snap.Peaked)
	}
	if snap.Alloc != 50 {
		t.Errorf("Alloc = %d, want 50", snap.Alloc)
	}

	snap = newSnapshot(200, 150, 180)
	if snap.Alloc != -50 {
		t.Errorf("Alloc = %d, want -50 (stages can shrink memory)", snap.Alloc)
	}
	if snap.Peaked != 30 {
		t.Errorf("Peaked = %d, want 30", snap.Peaked)
	}
}
