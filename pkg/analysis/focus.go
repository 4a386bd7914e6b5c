// Package analysis provides graph traversals over the base dependency graph.
package analysis

import (
	"sort"

	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/metrics"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// Direction selects which edges a focus traversal may follow.
type Direction struct {
	IncludeIncoming bool
	IncludeOutgoing bool
}

// BothDirections follows dependencies and dependents.
var BothDirections = Direction{IncludeIncoming: true, IncludeOutgoing: true}

// Subgraph is the result of a focus traversal.
type Subgraph struct {
	NodeIDs model.IDSet
	EdgeIDs model.IDSet // keyed by model.Edge.Key
}

func emptySubgraph() Subgraph {
	return Subgraph{NodeIDs: model.IDSet{}, EdgeIDs: model.IDSet{}}
}

// ComputeFocusSubgraph returns the nodes within depth hops of targetID,
// following the directions enabled in dir, and every base edge whose two
// endpoints are both in that node set.
//
// The edge pass is a membership test over all of g.Edges, not a record of the
// edges the walk used: an edge between two reached nodes is included even if
// the walk reached them by other paths.
//
// A nil graph, empty target or negative depth yields empty sets. The target
// is always in the result otherwise, even if the graph does not mention it.
func ComputeFocusSubgraph(g *model.Graph, targetID string, depth int, dir Direction) Subgraph {
	if g == nil || targetID == "" || depth < 0 {
		return emptySubgraph()
	}
	defer metrics.Timer(metrics.FocusTraversal)()

	idx := newAdjacency(g)
	visited := model.NewIDSet(targetID)

	from, ok := idx.ids[targetID]
	if ok && depth > 0 && (dir.IncludeIncoming || dir.IncludeOutgoing) {
		view := directedView{g: idx.g, in: dir.IncludeIncoming, out: dir.IncludeOutgoing}
		bf := traverse.BreadthFirst{
			Visit: func(n graph.Node) {
				visited.Add(idx.names[n.ID()])
			},
		}
		// Walk reports depth per BFS layer. Every node of layer d is
		// discovered while layer d-1 is expanded, so stopping at the first
		// node of layer depth leaves exactly the nodes within depth hops.
		bf.Walk(view, idx.g.Node(from), func(_ graph.Node, d int) bool {
			return d >= depth
		})
	}

	edges := make(model.IDSet)
	for _, e := range g.Edges {
		if visited.Has(e.Source) && visited.Has(e.Target) {
			edges.Add(e.Key())
		}
	}
	return Subgraph{NodeIDs: visited, EdgeIDs: edges}
}

// adjacency maps the string node IDs of a model.Graph onto a gonum graph.
// It is built from edges only and discarded after one traversal.
type adjacency struct {
	g     *simple.DirectedGraph
	ids   map[string]int64
	names map[int64]string
}

func newAdjacency(mg *model.Graph) *adjacency {
	a := &adjacency{
		g:     simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
	node := func(id string) graph.Node {
		if n, ok := a.ids[id]; ok {
			return a.g.Node(n)
		}
		n := a.g.NewNode()
		a.g.AddNode(n)
		a.ids[id] = n.ID()
		a.names[n.ID()] = id
		return n
	}
	for _, e := range mg.Edges {
		u, v := node(e.Source), node(e.Target)
		// simple graphs reject self edges; a self loop never reaches a new node.
		if u.ID() == v.ID() {
			continue
		}
		a.g.SetEdge(a.g.NewEdge(u, v))
	}
	return a
}

// directedView exposes outgoing and/or incoming neighbours as the From set
// of a traverse.Graph.
type directedView struct {
	g       *simple.DirectedGraph
	in, out bool
}

func (v directedView) From(id int64) graph.Nodes {
	seen := make(map[int64]bool)
	var nodes []graph.Node
	collect := func(it graph.Nodes) {
		for it.Next() {
			n := it.Node()
			if !seen[n.ID()] {
				seen[n.ID()] = true
				nodes = append(nodes, n)
			}
		}
	}
	if v.out {
		collect(v.g.From(id))
	}
	if v.in {
		collect(v.g.To(id))
	}
	// Stable order keeps the walk reproducible.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return iterator.NewOrderedNodes(nodes)
}

func (v directedView) Edge(uid, vid int64) graph.Edge {
	if v.out {
		if e := v.g.Edge(uid, vid); e != nil {
			return e
		}
	}
	if v.in {
		if e := v.g.Edge(vid, uid); e != nil {
			return e.ReversedEdge()
		}
	}
	return nil
}

// DirectNeighbors returns the sorted, de-duplicated direct dependencies
// (outgoing) and dependents (incoming) of id. Self loops are ignored. Callers
// use it to build impact overlays.
func DirectNeighbors(g *model.Graph, id string) (dependencies, dependents []string) {
	if g == nil || id == "" {
		return nil, nil
	}
	deps := make(model.IDSet)
	revs := make(model.IDSet)
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		if e.Source == id {
			deps.Add(e.Target)
		}
		if e.Target == id {
			revs.Add(e.Source)
		}
	}
	return deps.Sorted(), revs.Sorted()
}
