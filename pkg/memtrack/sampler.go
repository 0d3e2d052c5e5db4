package memtrack

import "runtime"

// peakSampler polls a memory reading in a tight loop and keeps the running
// maximum. Sleeping between samples would miss short-lived peaks, so the loop
// only yields the scheduler between iterations.
type peakSampler struct {
	read func() int64
	stop chan struct{}
	done chan struct{}
	peak int64
}

// startPeakSampler launches the sampling goroutine. The goroutine holds no
// resources and exits with the process if never stopped.
func startPeakSampler(read func() int64) *peakSampler {
	s := &peakSampler{
		read: read,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *peakSampler) loop() {
	defer close(s.done)
	peak := int64(-1)
	for {
		select {
		case <-s.stop:
			s.peak = peak
			return
		default:
		}
		if v := s.read(); v > peak {
			peak = v
		}
		runtime.Gosched()
	}
}

// Stop signals the loop to terminate, waits for it to exit, and returns the
// observed peak. Returns -1 if the loop never completed a sample. The join
// orders the loop's final peak write before the read here.
func (s *peakSampler) Stop() int64 {
	close(s.stop)
	<-s.done
	return s.peak
}
