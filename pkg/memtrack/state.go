package memtrack

// trackerState is the tracker's lifecycle state machine: either idle or
// sampling a single open stage. Transitions are pure functions returning the
// next state plus whether the caller should carry out the transition's
// effects; rejected transitions leave the state untouched.
type trackerState struct {
	open  bool
	stage Stage
}

func idleState() trackerState {
	return trackerState{}
}

// start returns the sampling state for stage s. The transition is rejected
// while any stage is open: a different stage must not be disturbed, and a
// repeated start of the same stage is an idempotent no-op.
func (st trackerState) start(s Stage) (trackerState, bool) {
	if st.open {
		return st, false
	}
	return trackerState{open: true, stage: s}, true
}

// stop returns the idle state. The transition is rejected unless stage s is
// the one currently open: stopping with no stage open, or naming a different
// stage, produces no snapshot.
func (st trackerState) stop(s Stage) (trackerState, bool) {
	if !st.open || st.stage != s {
		return st, false
	}
	return idleState(), true
}

// allows reports whether an operation scoped to stage s may proceed in this
// state: true when idle or when s is the open stage.
func (st trackerState) allows(s Stage) bool {
	return !st.open || st.stage == s
}
