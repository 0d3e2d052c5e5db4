package memtrack

// Snapshot holds begin/end/alloc/peaked byte figures for one stage in one
// memory domain (CPU or accelerator).
type Snapshot struct {
	Begin  int64 `json:"begin"`
	End    int64 `json:"end"`
	Alloc  int64 `json:"alloc"`
	Peaked int64 `json:"peaked"`
}

// newSnapshot derives the alloc and peaked figures from raw readings.
// Alloc is signed (memory can shrink across a stage); Peaked is clamped to
// zero because the observed peak can trail End when sampling missed the
// window entirely.
func newSnapshot(begin, end, peak int64) Snapshot {
	peaked := peak - end
	if peaked < 0 {
		peaked = 0
	}
	return Snapshot{Begin: begin, End: end, Alloc: end - begin, Peaked: peaked}
}
