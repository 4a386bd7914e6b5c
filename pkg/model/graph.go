// Package model defines the base dependency graph consumed by the overlay
// composition engine.
//
// A Graph is produced by an external analyzer and is treated as immutable:
// nothing in this module mutates a Graph it is handed. Consumers that need
// a working set take shallow per-item copies.
package model

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// HeatmapMark is the decoration attached to a node by a heatmap overlay.
type HeatmapMark struct {
	Color string  `json:"color"`
	Score float64 `json:"score"`
}

// Node is a vertex in the dependency graph. Only ID carries meaning for
// composition; the remaining fields are display data passed through.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Path  string `json:"path,omitempty"`
	Kind  string `json:"kind,omitempty"` // file, package, module, ...

	// Heatmap is set only on decorated copies returned by composition.
	Heatmap *HeatmapMark `json:"heatmap,omitempty"`

	Attrs map[string]any `json:"attrs,omitempty"`
}

// Edge is a directed dependency from Source to Target.
type Edge struct {
	ID     string         `json:"id,omitempty"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Kind   string         `json:"kind,omitempty"` // import, require, dynamic, ...
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// Key returns the identifier used for edge sets. Analyzers that do not assign
// edge IDs get a key derived from the endpoints.
func (e Edge) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Source + "->" + e.Target
}

// Graph is an immutable snapshot of the dependency graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIDs returns the set of node ids in the graph.
func (g *Graph) NodeIDs() IDSet {
	if g == nil {
		return IDSet{}
	}
	ids := make(IDSet, len(g.Nodes))
	for _, n := range g.Nodes {
		ids.Add(n.ID)
	}
	return ids
}

// ParseGraph decodes an analyzer snapshot from JSON.
func ParseGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing graph: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return &g, nil
}

// IDSet is a set of node or edge identifiers.
type IDSet map[string]struct{}

// NewIDSet returns a set containing ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Intersect returns a new set holding the members present in both sets.
func (s IDSet) Intersect(other IDSet) IDSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(IDSet, len(small))
	for id := range small {
		if large.Has(id) {
			out.Add(id)
		}
	}
	return out
}
