// Package dag provides directed graph operations for Gaia flow graphs.
// It supports cycle detection and topological sorting over node ids, with
// deterministic ordering so repeated runs produce identical output.
package dag

import (
	"fmt"
	"sort"
)

// Node represents a node in the graph.
type Node struct {
	// ID is the unique identifier (Gaia node id)
	ID string
	// Data holds arbitrary node data
	Data any
}

// Graph represents a directed graph of flow nodes. It is not required to
// be acyclic; HasCycle and Sort report cycles instead of preventing them,
// since validation needs to observe illegal graphs as-is.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string // source -> targets
	parents  map[string][]string // target -> sources
}

// New creates a new empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Re-adding an existing id updates its data.
func (g *Graph) AddNode(id string, data any) {
	if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = &Node{ID: id, Data: data}
		g.children[id] = []string{}
		g.parents[id] = []string{}
	} else {
		g.nodes[id].Data = data
	}
}

// AddEdge adds a directed edge from source to target. Both endpoints must
// exist. Duplicate edges are ignored. Self-loops are accepted here and
// surface later as cycles.
func (g *Graph) AddEdge(source, target string) error {
	if _, exists := g.nodes[source]; !exists {
		return fmt.Errorf("source node %q does not exist", source)
	}
	if _, exists := g.nodes[target]; !exists {
		return fmt.Errorf("target node %q does not exist", target)
	}

	if !contains(g.children[source], target) {
		g.children[source] = append(g.children[source], target)
	}
	if !contains(g.parents[target], source) {
		g.parents[target] = append(g.parents[target], source)
	}

	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Parents returns the sources of edges pointing at a node.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the targets of edges leaving a node.
func (g *Graph) Children(id string) []string {
	return g.children[id]
}

// Nodes returns all nodes sorted by id for deterministic output.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.children {
		count += len(targets)
	}
	return count
}

// Roots returns nodes with no incoming edges, sorted by id.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns nodes with no outgoing edges, sorted by id.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Sort returns node ids in topological order using Kahn's algorithm.
// Among nodes that are simultaneously ready, the lexicographically
// smallest id is emitted first. Returns an error naming the stuck nodes
// if the queue fails to drain (a cycle).
func (g *Graph) Sort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = len(g.parents[id])
	}

	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		ready := false
		for _, target := range g.children[current] {
			inDegree[target]--
			if inDegree[target] == 0 {
				queue = append(queue, target)
				ready = true
			}
		}
		if ready {
			sort.Strings(queue)
		}
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("cycle detected: %v", g.stuckNodes(inDegree))
	}

	return order, nil
}

// Levels groups node ids by execution level. Nodes at level N depend
// only on nodes at earlier levels; level 0 holds the roots. Each level
// is sorted for deterministic output.
func (g *Graph) Levels() ([][]string, error) {
	if cyclic, stuck := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("cycle detected: %v", stuck)
	}

	assigned := make(map[string]int, len(g.nodes))
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, parent := range g.parents[id] {
			if pl := levelOf(parent) + 1; pl > level {
				level = pl
			}
		}
		assigned[id] = level
		return level
	}

	maxLevel := 0
	for id := range g.nodes {
		if level := levelOf(id); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// HasCycle reports whether the graph contains a cycle, along with the
// nodes still holding incoming edges when the Kahn queue drained.
func (g *Graph) HasCycle() (bool, []string) {
	if _, err := g.Sort(); err != nil {
		inDegree := make(map[string]int, len(g.nodes))
		for id := range g.nodes {
			inDegree[id] = len(g.parents[id])
		}
		g.drain(inDegree)
		return true, g.stuckNodes(inDegree)
	}
	return false, nil
}

// drain runs the Kahn queue over inDegree, mutating it in place.
func (g *Graph) drain(inDegree map[string]int) {
	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		inDegree[current] = -1
		for _, target := range g.children[current] {
			inDegree[target]--
			if inDegree[target] == 0 {
				queue = append(queue, target)
			}
		}
	}
}

// stuckNodes returns the sorted ids whose in-degree never reached zero.
func (g *Graph) stuckNodes(inDegree map[string]int) []string {
	var stuck []string
	for id, degree := range inDegree {
		if degree > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return stuck
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
