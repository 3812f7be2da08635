package syncplanner

import "sort"

// groupDelta is one choice within a signature group: match the current
// pending target id to srcID (with pairing resolving any leftover paths
// on both sides), or skip it because no source id remains unmatched.
type groupDelta struct {
	skip    bool
	srcID   int64
	pairing PathPairing
}

// groupState is the backtracking search state for reconciling one
// signature group: every target file-id in the group must be matched to
// a distinct source file-id of the same signature (or left unmatched, if
// the group's id counts differ), and the resulting moves must keep the
// shared MoveGraph acyclic. Matching candidates that already share a path
// with the pending target are tried first, a "best guess" heuristic that
// resolves the overwhelming majority of groups without backtracking.
type groupState struct {
	graph *MoveGraph

	tgtQueue []int64
	tgtPaths map[int64][]string
	srcPaths map[int64][]string
	availSrc map[int64]bool

	resolved []int64
	ops      [][]Operation
}

func (s *groupState) NextDeltas() []groupDelta {
	if len(s.tgtQueue) == 0 {
		return nil
	}
	tgtID := s.tgtQueue[0]

	if len(s.availSrc) == 0 {
		return []groupDelta{{skip: true}}
	}

	tPaths := s.tgtPaths[tgtID]
	candidates := make([]int64, 0, len(s.availSrc))
	for srcID := range s.availSrc {
		candidates = append(candidates, srcID)
	}
	sort.Slice(candidates, func(i, j int) bool {
		iShares := sharesPath(tPaths, s.srcPaths[candidates[i]])
		jShares := sharesPath(tPaths, s.srcPaths[candidates[j]])
		if iShares != jShares {
			return iShares
		}
		return candidates[i] < candidates[j]
	})

	deltas := make([]groupDelta, 0, len(candidates))
	for _, srcID := range candidates {
		sOnly, tOnly, _ := splitPaths(s.srcPaths[srcID], tPaths)
		if len(sOnly) > 0 && len(tOnly) > 0 {
			for _, pairing := range enumeratePairings(sOnly, tOnly) {
				deltas = append(deltas, groupDelta{srcID: srcID, pairing: pairing})
			}
		} else {
			deltas = append(deltas, groupDelta{srcID: srcID})
		}
	}
	return deltas
}

func (s *groupState) DownDelta(d groupDelta) {
	tgtID := s.tgtQueue[0]
	s.tgtQueue = s.tgtQueue[1:]
	s.resolved = append(s.resolved, tgtID)

	if d.skip {
		s.ops = append(s.ops, nil)
		return
	}

	delete(s.availSrc, d.srcID)
	ops := rewriteOps(s.srcPaths[d.srcID], s.tgtPaths[tgtID], d.pairing)
	for _, op := range ops {
		if op.Kind == OpMove {
			s.graph.AddArrow(op.From, op.To)
		}
	}
	s.ops = append(s.ops, ops)
}

func (s *groupState) UpDelta(d groupDelta) {
	tgtID := s.resolved[len(s.resolved)-1]
	s.resolved = s.resolved[:len(s.resolved)-1]
	ops := s.ops[len(s.ops)-1]
	s.ops = s.ops[:len(s.ops)-1]
	s.tgtQueue = append([]int64{tgtID}, s.tgtQueue...)

	if d.skip {
		return
	}
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].Kind == OpMove {
			s.graph.RemoveArrow(ops[i].From, ops[i].To)
		}
	}
	s.availSrc[d.srcID] = true
}

func (s *groupState) IsValid() bool {
	return !s.graph.HasCycle()
}

func sharesPath(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, p := range a {
		set[p] = struct{}{}
	}
	for _, p := range b {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}
