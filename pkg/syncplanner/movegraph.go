package syncplanner

import "sort"

// Arrow is one move edge: rename the file at From to To.
type Arrow struct {
	From string
	To   string
}

// MoveGraph is a directed graph with at most one outgoing arrow per
// node, tracking pending "move From -> To" path operations and
// detecting cycles incrementally as arrows are added and removed.
// Executing a cycle would require an intermediate free name, which the
// planner doesn't have, so a MoveGraph with any cycle is an invalid
// plan state.
type MoveGraph struct {
	arrows map[string]string
	cycles []map[string]struct{}
}

// NewMoveGraph returns an empty graph.
func NewMoveGraph() *MoveGraph {
	return &MoveGraph{arrows: make(map[string]string)}
}

// FollowArrow returns the node an arrow out of from points to, if any.
func (g *MoveGraph) FollowArrow(from string) (string, bool) {
	to, ok := g.arrows[from]
	return to, ok
}

// HasCycle reports whether the graph currently contains a cycle.
func (g *MoveGraph) HasCycle() bool {
	return len(g.cycles) > 0
}

// AddArrow adds from->to. from must not already have an outgoing arrow.
func (g *MoveGraph) AddArrow(from, to string) {
	if _, exists := g.arrows[from]; exists {
		panic("movegraph: arrow already out of " + from)
	}
	g.arrows[from] = to
	if cyc := g.cycleFrom(to); cyc != nil {
		elem := cyc[0]
		for _, old := range g.cycles {
			if _, ok := old[elem]; ok {
				return // already part of a known cycle
			}
		}
		set := make(map[string]struct{}, len(cyc))
		for _, n := range cyc {
			set[n] = struct{}{}
		}
		g.cycles = append(g.cycles, set)
	}
}

// RemoveArrow removes from->to, which must be the current arrow out of
// from.
func (g *MoveGraph) RemoveArrow(from, to string) {
	if cur, ok := g.arrows[from]; !ok || cur != to {
		panic("movegraph: arrow " + from + " -> " + to + " not present")
	}
	delete(g.arrows, from)
	for i, cyc := range g.cycles {
		if _, ok := cyc[from]; ok {
			g.cycles = append(g.cycles[:i], g.cycles[i+1:]...)
			break
		}
	}
}

// AllRoots returns the nodes with an outgoing arrow but no incoming one
// (chain starting points).
func (g *MoveGraph) AllRoots() map[string]struct{} {
	roots := make(map[string]struct{}, len(g.arrows))
	for from := range g.arrows {
		roots[from] = struct{}{}
	}
	for _, to := range g.arrows {
		delete(roots, to)
	}
	return roots
}

// AllLeaves returns the nodes with an incoming arrow but no outgoing one
// (chain end points; nothing needs to move out of them).
func (g *MoveGraph) AllLeaves() map[string]struct{} {
	leaves := make(map[string]struct{})
	for _, to := range g.arrows {
		leaves[to] = struct{}{}
	}
	for node := range leaves {
		if _, ok := g.arrows[node]; ok {
			delete(leaves, node)
		}
	}
	return leaves
}

// cycleFrom returns the cycle reachable by following arrows from node,
// if one exists.
func (g *MoveGraph) cycleFrom(node string) []string {
	if len(g.arrows) <= 1 {
		return nil
	}
	stack := []string{node}
	position := map[string]int{node: 0}
	for {
		top := stack[len(stack)-1]
		next, ok := g.arrows[top]
		if !ok {
			return nil
		}
		if _, seen := position[next]; seen {
			return stack
		}
		position[next] = len(stack)
		stack = append(stack, next)
	}
}

// LeafToRootOrder returns every arrow in execution order: for each
// connected component, arrows closest to a leaf come first, so that by
// the time an arrow From->To runs, To has already been vacated by an
// earlier arrow (or was never occupied by a pending move). Meaningful
// only when the graph is acyclic.
func (g *MoveGraph) LeafToRootOrder() []Arrow {
	predecessors := make(map[string][]string)
	for from, to := range g.arrows {
		predecessors[to] = append(predecessors[to], from)
	}
	for _, froms := range predecessors {
		sort.Strings(froms)
	}

	leaves := make([]string, 0, len(g.arrows))
	for leaf := range g.AllLeaves() {
		leaves = append(leaves, leaf)
	}
	sort.Strings(leaves)

	var order []Arrow
	visited := make(map[string]struct{})
	var visit func(node string)
	visit = func(node string) {
		for _, from := range predecessors[node] {
			if _, ok := visited[from]; ok {
				continue
			}
			visited[from] = struct{}{}
			order = append(order, Arrow{From: from, To: node})
			visit(from)
		}
	}
	for _, leaf := range leaves {
		visit(leaf)
	}
	return order
}
