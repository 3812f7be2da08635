package syncplanner

import "testing"

func TestMoveGraphDetectsCycle(t *testing.T) {
	g := NewMoveGraph()
	g.AddArrow("a", "b")
	if g.HasCycle() {
		t.Fatalf("single arrow should not be a cycle")
	}
	g.AddArrow("b", "a")
	if !g.HasCycle() {
		t.Fatalf("a->b->a should be a cycle")
	}

	g.RemoveArrow("b", "a")
	if g.HasCycle() {
		t.Fatalf("removing the closing arrow should clear the cycle")
	}
}

func TestMoveGraphAddArrowPanicsOnDuplicateSource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic adding a second arrow out of the same node")
		}
	}()
	g := NewMoveGraph()
	g.AddArrow("a", "b")
	g.AddArrow("a", "c")
}

func TestMoveGraphRootsAndLeaves(t *testing.T) {
	g := NewMoveGraph()
	g.AddArrow("a", "b")
	g.AddArrow("b", "c")

	roots := g.AllRoots()
	if _, ok := roots["a"]; !ok || len(roots) != 1 {
		t.Fatalf("expected roots {a}, got %v", roots)
	}
	leaves := g.AllLeaves()
	if _, ok := leaves["c"]; !ok || len(leaves) != 1 {
		t.Fatalf("expected leaves {c}, got %v", leaves)
	}
}

func TestMoveGraphLeafToRootOrderChain(t *testing.T) {
	g := NewMoveGraph()
	g.AddArrow("a", "b")
	g.AddArrow("b", "c")

	order := g.LeafToRootOrder()
	if len(order) != 2 {
		t.Fatalf("expected 2 arrows, got %d", len(order))
	}
	if order[0] != (Arrow{From: "b", To: "c"}) {
		t.Fatalf("expected b->c first (destination vacated before a->b runs), got %v", order[0])
	}
	if order[1] != (Arrow{From: "a", To: "b"}) {
		t.Fatalf("expected a->b second, got %v", order[1])
	}
}

func TestMoveGraphLeafToRootOrderMultipleComponents(t *testing.T) {
	g := NewMoveGraph()
	g.AddArrow("x1", "x2")
	g.AddArrow("y1", "y2")
	g.AddArrow("y2", "y3")

	order := g.LeafToRootOrder()
	if len(order) != 3 {
		t.Fatalf("expected 3 arrows, got %d", len(order))
	}

	pos := make(map[Arrow]int, len(order))
	for i, a := range order {
		pos[a] = i
	}
	if pos[(Arrow{"y2", "y3"})] >= pos[(Arrow{"y1", "y2"})] {
		t.Fatalf("y2->y3 must run before y1->y2: %v", order)
	}
}
