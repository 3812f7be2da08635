package syncplanner

// State is a backtracking search state extended by deltas of type D: a
// state is grown by applying deltas "down" and shrunk by applying them
// back "up" on backtrack, with validity checked after every down step.
type State[D any] interface {
	// NextDeltas returns the deltas to try from the current state, in
	// the order they should be tried, or nil if the state is already a
	// complete leaf (no further choices to make).
	NextDeltas() []D
	// DownDelta extends the state with delta.
	DownDelta(delta D)
	// UpDelta reverts a DownDelta(delta) applied to this exact state.
	UpDelta(delta D)
	// IsValid reports whether the current state is still viable.
	IsValid() bool
}

type searchFrame[D any] struct {
	delta   D
	pending []D
	next    int
}

// Search performs a depth-first backtracking search for a valid leaf
// state reachable from state, applying deltas as it goes and leaving the
// state at the leaf on success. On failure it returns false with the
// state fully unwound back to its original value.
func Search[D any](state State[D]) bool {
	if !state.IsValid() {
		return false
	}

	stack := []searchFrame[D]{{pending: state.NextDeltas()}}

	for {
		top := &stack[len(stack)-1]
		if top.pending == nil {
			return true
		}
		if top.next >= len(top.pending) {
			if len(stack) == 1 {
				return false
			}
			state.UpDelta(top.delta)
			stack = stack[:len(stack)-1]
			continue
		}
		delta := top.pending[top.next]
		top.next++
		state.DownDelta(delta)
		if state.IsValid() {
			stack = append(stack, searchFrame[D]{delta: delta, pending: state.NextDeltas()})
		} else {
			state.UpDelta(delta)
		}
	}
}
