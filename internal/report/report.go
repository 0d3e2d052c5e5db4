// Package report renders the metrics map produced by the memory tracker for
// humans and for the HTTP surface.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Report is one finished collection run: the tracker's metrics keyed by
// metric name, in bytes.
type Report struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Metrics     map[string]int64 `json:"metrics"`
}

// New wraps a metrics map in a Report with a fresh run ID.
func New(metrics map[string]int64) *Report {
	return &Report{
		RunID:       "run_" + uuid.New().String()[:8],
		GeneratedAt: time.Now().UTC(),
		Metrics:     metrics,
	}
}

// RequiredAccelerator estimates the device memory a host needs to run the
// measured process: the pre-init baseline plus what initialization allocated
// and peaked on top of it. False when the accelerator metrics are absent.
func (r *Report) RequiredAccelerator() (int64, bool) {
	return r.required("gpu")
}

// RequiredCPU is the CPU-domain counterpart of RequiredAccelerator.
func (r *Report) RequiredCPU() (int64, bool) {
	return r.required("cpu")
}

func (r *Report) required(domain string) (int64, bool) {
	base, ok := r.Metrics["before_init_memory_"+domain]
	if !ok {
		return 0, false
	}
	alloc, ok := r.Metrics[fmt.Sprintf("init_memory_%s_alloc_delta", domain)]
	if !ok {
		return 0, false
	}
	peaked, ok := r.Metrics[fmt.Sprintf("init_memory_%s_peaked_delta", domain)]
	if !ok {
		return 0, false
	}
	return base + alloc + peaked, true
}

// WriteTable renders the metrics as a fixed-width table, one metric per line,
// sorted by key.
func (r *Report) WriteTable(w io.Writer) error {
	keys := make([]string, 0, len(r.Metrics))
	for k := range r.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := fmt.Fprintf(w, "%-40s  %14s  %s\n", "METRIC", "BYTES", "SIZE"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-40s  %14s  %s\n", "------", "-----", "----"); err != nil {
		return err
	}
	for _, k := range keys {
		v := r.Metrics[k]
		if _, err := fmt.Fprintf(w, "%-40s  %14d  %s\n", k, v, FormatBytes(v)); err != nil {
			return err
		}
	}

	if required, ok := r.RequiredAccelerator(); ok {
		if _, err := fmt.Fprintf(w, "\nAccelerator memory required: %s\n", FormatBytes(required)); err != nil {
			return err
		}
	}
	return nil
}

// FormatBytes renders a byte count for humans. Deltas can be negative;
// humanize only knows unsigned sizes, so the sign is carried separately.
func FormatBytes(v int64) string {
	if v < 0 {
		return "-" + humanize.IBytes(uint64(-v))
	}
	return humanize.IBytes(uint64(v))
}
