package graph

import "sort"

// Node is a vertex in the multigraph. Labels and Props are nil for
// placeholder nodes that were only ever seen as relationship endpoints.
type Node struct {
	ID     int64
	Labels []string
	Props  map[string]any
}

// Edge is a directed edge in the multigraph. ID is the relationship id
// and keeps parallel edges between the same endpoints distinct.
type Edge struct {
	ID    int64
	Start int64
	End   int64
	Type  string
	Props map[string]any
}

// DirectedMultigraph holds nodes keyed by id and directed edges keyed by
// relationship id. Multiple edges between the same pair of nodes are
// allowed. The zero value is not usable; call New.
type DirectedMultigraph struct {
	nodes map[int64]*Node
	edges map[int64]*Edge
	out   map[int64][]int64
	in    map[int64][]int64
}

// New returns an empty multigraph.
func New() *DirectedMultigraph {
	return &DirectedMultigraph{
		nodes: make(map[int64]*Node),
		edges: make(map[int64]*Edge),
		out:   make(map[int64][]int64),
		in:    make(map[int64][]int64),
	}
}

// AddNode inserts or replaces the node with the given id. Adding a node
// that was previously a placeholder endpoint fills in its labels and
// properties.
func (g *DirectedMultigraph) AddNode(id int64, labels []string, props map[string]any) {
	g.nodes[id] = &Node{ID: id, Labels: labels, Props: props}
}

// ensureNode registers id as a placeholder if it is not present yet.
func (g *DirectedMultigraph) ensureNode(id int64) {
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = &Node{ID: id}
	}
}

// AddEdge inserts or replaces the edge with the given id. Endpoints that
// are not in the graph yet are added as placeholders.
func (g *DirectedMultigraph) AddEdge(id, start, end int64, relType string, props map[string]any) {
	g.ensureNode(start)
	g.ensureNode(end)

	if old, ok := g.edges[id]; ok {
		// Same relationship seen again; replace attributes in place.
		if old.Start == start && old.End == end {
			g.edges[id] = &Edge{ID: id, Start: start, End: end, Type: relType, Props: props}
			return
		}
		g.removeEdgeRefs(old)
	}

	g.edges[id] = &Edge{ID: id, Start: start, End: end, Type: relType, Props: props}
	g.out[start] = append(g.out[start], id)
	g.in[end] = append(g.in[end], id)
}

func (g *DirectedMultigraph) removeEdgeRefs(e *Edge) {
	g.out[e.Start] = removeID(g.out[e.Start], e.ID)
	g.in[e.End] = removeID(g.in[e.End], e.ID)
}

func removeID(ids []int64, id int64) []int64 {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Node returns the node with the given id.
func (g *DirectedMultigraph) Node(id int64) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given relationship id.
func (g *DirectedMultigraph) Edge(id int64) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// HasNode reports whether id is in the graph.
func (g *DirectedMultigraph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeCount returns the number of nodes, placeholders included.
func (g *DirectedMultigraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting parallel edges
// separately.
func (g *DirectedMultigraph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns all nodes ordered by id.
func (g *DirectedMultigraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges ordered by id.
func (g *DirectedMultigraph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OutEdges returns the edges leaving id, ordered by edge id.
func (g *DirectedMultigraph) OutEdges(id int64) []*Edge {
	return g.edgeList(g.out[id])
}

// InEdges returns the edges entering id, ordered by edge id.
func (g *DirectedMultigraph) InEdges(id int64) []*Edge {
	return g.edgeList(g.in[id])
}

func (g *DirectedMultigraph) edgeList(ids []int64) []*Edge {
	out := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		if e, ok := g.edges[id]; ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EdgesBetween returns the edges from start to end, ordered by edge id.
func (g *DirectedMultigraph) EdgesBetween(start, end int64) []*Edge {
	var out []*Edge
	for _, e := range g.edgeList(g.out[start]) {
		if e.End == end {
			out = append(out, e)
		}
	}
	return out
}

// Neighbors returns the ids of nodes reachable from id over outgoing
// edges, deduplicated and sorted.
func (g *DirectedMultigraph) Neighbors(id int64) []int64 {
	seen := make(map[int64]struct{})
	for _, e := range g.edgeList(g.out[id]) {
		seen[e.End] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for nodeID := range seen {
		out = append(out, nodeID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
