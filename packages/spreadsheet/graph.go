package spreadsheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gammazero/deque"
)

// DependencyNode represents a populated cell in the dependency graph
type DependencyNode struct {
	// address of *THIS* node
	Ref string

	// cell-to-cell dependencies
	CellPrecedents map[string]*DependencyNode // cells this cell's formula mentions
	CellDependents map[string]*DependencyNode // cells whose formulas mention this cell

	// number of incoming edges, i.e. len(CellPrecedents)
	Indegree int
}

// Edge is a dependency u -> v: v's formula mentions u, so v is computed
// after u
type Edge struct {
	From string
	To   string
}

// DependencyGraph manages cell dependencies and calculation order. vertices
// are the cells that currently have an entry; edges are stored by reference
// key on both ends.
type DependencyGraph struct {
	nodes    map[string]*DependencyNode // all nodes in the graph
	inserted []string                   // vertex insertion order, used for tie-breaks
	edges    int
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*DependencyNode),
	}
}

// GetOrCreateNode gets an existing node or creates a new one
func (dg *DependencyGraph) GetOrCreateNode(ref string) *DependencyNode {
	if node, exists := dg.nodes[ref]; exists {
		return node
	}

	node := &DependencyNode{
		Ref:            ref,
		CellPrecedents: make(map[string]*DependencyNode),
		CellDependents: make(map[string]*DependencyNode),
	}
	dg.nodes[ref] = node
	dg.inserted = append(dg.inserted, ref)
	return node
}

// GetNode retrieves a node if it exists
func (dg *DependencyGraph) GetNode(ref string) (*DependencyNode, bool) {
	node, exists := dg.nodes[ref]
	return node, exists
}

// AddEdge adds from -> to. both vertices must already exist; a repeated
// edge is ignored. returns true if a new edge was added.
func (dg *DependencyGraph) AddEdge(from, to string) bool {
	fromNode, fromExists := dg.nodes[from]
	toNode, toExists := dg.nodes[to]
	if !fromExists || !toExists {
		return false
	}
	if _, dup := fromNode.CellDependents[to]; dup {
		return false
	}

	fromNode.CellDependents[to] = toNode
	toNode.CellPrecedents[from] = fromNode
	toNode.Indegree++
	dg.edges++
	return true
}

// GetDirectDependents returns cells directly depending on this cell
func (dg *DependencyGraph) GetDirectDependents(ref string) []string {
	node, exists := dg.nodes[ref]
	if !exists {
		return nil
	}
	return sortedKeys(node.CellDependents)
}

// GetDirectPrecedents returns cells this cell directly depends on
func (dg *DependencyGraph) GetDirectPrecedents(ref string) []string {
	node, exists := dg.nodes[ref]
	if !exists {
		return nil
	}
	return sortedKeys(node.CellPrecedents)
}

// Edges returns every edge, sorted by From then To in row-major order
func (dg *DependencyGraph) Edges() []Edge {
	edges := make([]Edge, 0, dg.edges)
	for _, from := range SortCellRefs(dg.Vertices()) {
		for _, to := range dg.GetDirectDependents(from) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// Vertices returns the vertices in insertion order
func (dg *DependencyGraph) Vertices() []string {
	out := make([]string, len(dg.inserted))
	copy(out, dg.inserted)
	return out
}

// CalculationOrder runs Kahn's algorithm: vertices with no remaining
// incoming edges are taken from a FIFO queue, and taking one releases its
// dependents. ties are broken by insertion order. if some vertex is never
// released the graph has a cycle and an ErrorCodeCycle error names the
// cells involved. the graph's own indegree counters are left untouched.
func (dg *DependencyGraph) CalculationOrder() ([]string, error) {
	indegree := make(map[string]int, len(dg.nodes))
	var ready deque.Deque[string]

	for _, ref := range dg.inserted {
		node := dg.nodes[ref]
		indegree[ref] = node.Indegree
		if node.Indegree == 0 {
			ready.PushBack(ref)
		}
	}

	order := make([]string, 0, len(dg.nodes))
	for ready.Len() > 0 {
		ref := ready.PopFront()
		order = append(order, ref)

		for _, dep := range dg.GetDirectDependents(ref) {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready.PushBack(dep)
			}
		}
	}

	if len(order) < len(dg.nodes) {
		stuck := make([]string, 0, len(dg.nodes)-len(order))
		for ref, n := range indegree {
			if n > 0 {
				stuck = append(stuck, ref)
			}
		}
		return order, newErrorf(ErrorCodeCycle, "Circular dependency between cells %s", strings.Join(SortCellRefs(stuck), ", "))
	}

	return order, nil
}

// HasCycle checks if there are circular dependencies
func (dg *DependencyGraph) HasCycle() bool {
	_, err := dg.CalculationOrder()
	return err != nil
}

// NodeCount returns the number of nodes in the graph
func (dg *DependencyGraph) NodeCount() int {
	return len(dg.nodes)
}

// EdgeCount returns the number of edges in the graph
func (dg *DependencyGraph) EdgeCount() int {
	return dg.edges
}

// Clear removes all nodes and dependencies from the graph
func (dg *DependencyGraph) Clear() {
	dg.nodes = make(map[string]*DependencyNode)
	dg.inserted = nil
	dg.edges = 0
}

// String renders the edge list, handy in test failures
func (dg *DependencyGraph) String() string {
	var b strings.Builder
	for i, e := range dg.Edges() {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s->%s", e.From, e.To)
	}
	return b.String()
}

func sortedKeys(m map[string]*DependencyNode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return SortCellRefs(keys)
}

// SortCellRefs sorts references in row-major order, in place, and returns
// the slice. references that do not parse sort after those that do.
func SortCellRefs(refs []string) []string {
	sort.SliceStable(refs, func(i, j int) bool {
		ri, ci, erri := ParseCellRef(refs[i])
		rj, cj, errj := ParseCellRef(refs[j])
		switch {
		case erri != nil || errj != nil:
			if (erri == nil) != (errj == nil) {
				return erri == nil
			}
			return refs[i] < refs[j]
		case ri != rj:
			return ri < rj
		default:
			return ci < cj
		}
	})
	return refs
}
