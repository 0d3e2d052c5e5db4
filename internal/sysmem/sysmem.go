// Package sysmem reads resident-set memory for the running process.
package sysmem

import (
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Reader reports resident memory for one process. It satisfies the tracker's
// ProcessMemory interface.
type Reader struct {
	proc *process.Process
	last int64
}

// Self returns a Reader for the current process.
func Self() *Reader {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		// Own PID always resolves on supported platforms; a nil proc
		// degrades Resident to zero rather than failing the caller.
		return &Reader{}
	}
	return &Reader{proc: proc}
}

// Resident returns current resident-set bytes. Query errors return the last
// successful reading; the sampler loop tolerates a briefly stale value better
// than a spurious zero.
func (r *Reader) Resident() int64 {
	if r.proc == nil {
		return 0
	}
	info, err := r.proc.MemoryInfo()
	if err != nil {
		return r.last
	}
	r.last = int64(info.RSS)
	return r.last
}
