package dag

import (
	"testing"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := New()

	g.AddNode("a", "node A")
	g.AddNode("b", "node B")
	g.AddNode("c", "node C")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	if err := g.AddEdge("a", "b"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	if err := g.AddEdge("b", "c"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := New()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for nonexistent target node")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for nonexistent source node")
	}
}

func TestGraph_AddEdge_Duplicate(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("failed to add edge: %v", err)
	}
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("duplicate edge should be ignored, got error: %v", err)
	}

	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge after duplicate add, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := New()
	g.AddNode("a", nil)

	// Self-loops are accepted at insert time and reported as cycles.
	if err := g.AddEdge("a", "a"); err != nil {
		t.Fatalf("self-loop should be accepted: %v", err)
	}

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Error("expected self-loop to be reported as cycle")
	}
	if len(path) != 1 || path[0] != "a" {
		t.Errorf("expected stuck node [a], got %v", path)
	}
}

func TestGraph_ParentsAndChildren(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "c")

	if parents := g.Parents("c"); len(parents) != 2 {
		t.Errorf("expected c to have 2 parents, got %d", len(parents))
	}
	if children := g.Children("a"); len(children) != 2 {
		t.Errorf("expected a to have 2 children, got %d", len(children))
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := New()
	g.AddNode("sql", nil)
	g.AddNode("join", nil)
	g.AddNode("out", nil)

	g.AddEdge("sql", "join")
	g.AddEdge("join", "out")

	roots := g.Roots()
	if len(roots) != 1 || roots[0] != "sql" {
		t.Errorf("expected roots [sql], got %v", roots)
	}

	leaves := g.Leaves()
	if len(leaves) != 1 || leaves[0] != "out" {
		t.Errorf("expected leaves [out], got %v", leaves)
	}
}

func TestGraph_HasCycle_NoCycle(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	hasCycle, path := g.HasCycle()
	if hasCycle {
		t.Errorf("expected no cycle, but found: %v", path)
	}
}

func TestGraph_HasCycle_WithCycle(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Error("expected cycle to be detected")
	}
	if len(path) == 0 {
		t.Error("expected cycle path to be non-empty")
	}
}

func TestGraph_Sort_Simple(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	order, err := g.Sort()
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if order[i] != id {
			t.Errorf("expected order %v, got %v", want, order)
			break
		}
	}
}

func TestGraph_Sort_Deterministic(t *testing.T) {
	// Independent nodes come out in lexicographic order regardless of
	// insertion order.
	g := New()
	g.AddNode("z", nil)
	g.AddNode("m", nil)
	g.AddNode("a", nil)

	first, err := g.Sort()
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}

	want := []string{"a", "m", "z"}
	for i, id := range want {
		if first[i] != id {
			t.Errorf("expected order %v, got %v", want, first)
			break
		}
	}

	for run := 0; run < 10; run++ {
		again, err := g.Sort()
		if err != nil {
			t.Fatalf("sort failed: %v", err)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("sort not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestGraph_Sort_Cycle(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	if _, err := g.Sort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_Sort_Diamond(t *testing.T) {
	g := New()
	g.AddNode("src", nil)
	g.AddNode("left", nil)
	g.AddNode("right", nil)
	g.AddNode("sink", nil)

	g.AddEdge("src", "left")
	g.AddEdge("src", "right")
	g.AddEdge("left", "sink")
	g.AddEdge("right", "sink")

	order, err := g.Sort()
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	if pos["src"] != 0 {
		t.Errorf("expected src first, got %v", order)
	}
	if pos["sink"] != 3 {
		t.Errorf("expected sink last, got %v", order)
	}
}

func TestGraph_Levels(t *testing.T) {
	g := New()
	g.AddNode("src", nil)
	g.AddNode("left", nil)
	g.AddNode("right", nil)
	g.AddNode("sink", nil)

	g.AddEdge("src", "left")
	g.AddEdge("src", "right")
	g.AddEdge("left", "sink")
	g.AddEdge("right", "sink")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("levels failed: %v", err)
	}

	want := [][]string{{"src"}, {"left", "right"}, {"sink"}}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), levels)
	}
	for i := range want {
		if len(levels[i]) != len(want[i]) {
			t.Fatalf("level %d: expected %v, got %v", i, want[i], levels[i])
		}
		for j := range want[i] {
			if levels[i][j] != want[i][j] {
				t.Errorf("level %d: expected %v, got %v", i, want[i], levels[i])
			}
		}
	}
}

func TestGraph_Levels_Cycle(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	if _, err := g.Levels(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}
