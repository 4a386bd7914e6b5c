// Package compose merges the active overlays of a State over a base graph
// into a single RenderModel.
//
// Composition runs in two phases. The filter phase narrows the node and edge
// arrays using the first impact overlay and the first focus overlay found in
// state order. The decoration phase attaches heatmap marks from the first
// heatmap overlay. Later overlays of an already-seen kind have no effect.
//
// The result depends only on the graph and the state: identical inputs give
// identical output, and neither input is modified.
package compose

import (
	"time"

	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/analysis"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/debug"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/metrics"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/overlay"
)

// RenderModel is the composed output handed to the renderer.
type RenderModel struct {
	Nodes  []model.Node   `json:"nodes"`
	Edges  []model.Edge   `json:"edges"`
	Styles map[string]any `json:"styles"`
}

// Options tunes composition. The zero value is valid.
type Options struct {
	// FallbackColor colours heatmap values that carry no colour.
	// Empty means overlay.DefaultHeatmapColor.
	FallbackColor string
}

// DefaultOptions returns the options used by ComposeRenderable.
func DefaultOptions() Options {
	return Options{FallbackColor: overlay.DefaultHeatmapColor}
}

func emptyModel() RenderModel {
	return RenderModel{
		Nodes:  []model.Node{},
		Edges:  []model.Edge{},
		Styles: map[string]any{},
	}
}

// ComposeRenderable composes s over g with default options.
func ComposeRenderable(g *model.Graph, s *overlay.State) RenderModel {
	return ComposeWith(g, s, DefaultOptions())
}

// ComposeWith composes s over g. A nil graph yields an empty model; a nil
// state yields a copy of the graph.
func ComposeWith(g *model.Graph, s *overlay.State, opts Options) RenderModel {
	if g == nil {
		return emptyModel()
	}
	if opts.FallbackColor == "" {
		opts.FallbackColor = overlay.DefaultHeatmapColor
	}

	defer metrics.TimerWithCallback(metrics.Compose, func(d time.Duration) {
		debug.LogTiming("compose", d)
	})()

	// Working copies. Node and Edge are copied by value; their Attrs maps
	// are shared with the base graph and never written.
	nodes := append(make([]model.Node, 0, len(g.Nodes)), g.Nodes...)
	edges := append(make([]model.Edge, 0, len(g.Edges)), g.Edges...)

	impact, focus := filterOverlays(s)

	var impactSet model.IDSet
	if impact != nil {
		impactSet = overlay.BuildImpactVisibleSet(*impact)
		nodes, edges = restrict(nodes, edges, impactSet)
	}

	if focus != nil {
		// The focus subgraph is computed on the full base graph, not on the
		// impact-filtered arrays.
		sub := analysis.ComputeFocusSubgraph(g, focus.TargetNodeID, focus.Depth, analysis.Direction{
			IncludeIncoming: focus.IncludeIncoming,
			IncludeOutgoing: focus.IncludeOutgoing,
		})
		effective := sub.NodeIDs
		if impactSet != nil {
			if both := sub.NodeIDs.Intersect(impactSet); both.Len() > 0 {
				effective = both
			} else {
				// Disjoint: the focus wins and impact filtering is undone,
				// for edges as well as nodes.
				nodes = append(make([]model.Node, 0, len(g.Nodes)), g.Nodes...)
				edges = append(make([]model.Edge, 0, len(g.Edges)), g.Edges...)
			}
		}
		nodes, edges = restrict(nodes, edges, effective)
	}

	heatmap := firstHeatmap(s)
	if heatmap != nil {
		nodes = overlay.DecorateHeatmapWith(nodes, heatmap, opts.FallbackColor)
	}

	debug.Event("compose",
		"overlays", s.Len(),
		"impact", idOf(impact),
		"focus", idOf(focus),
		"heatmap", idOf(heatmap),
		"nodes", len(nodes),
		"edges", len(edges),
	)
	return RenderModel{Nodes: nodes, Edges: edges, Styles: map[string]any{}}
}

// filterOverlays returns the first impact and first focus overlay in state
// order, stopping once both are found.
func filterOverlays(s *overlay.State) (*overlay.Impact, *overlay.Focus) {
	var (
		impact *overlay.Impact
		focus  *overlay.Focus
	)
	for _, o := range s.Overlays() {
		switch v := o.(type) {
		case overlay.Impact:
			if impact == nil {
				impact = &v
			}
		case overlay.Focus:
			if focus == nil {
				focus = &v
			}
		case overlay.Heatmap:
			// decoration phase
		}
		if impact != nil && focus != nil {
			break
		}
	}
	return impact, focus
}

func firstHeatmap(s *overlay.State) *overlay.Heatmap {
	for _, o := range s.Overlays() {
		if h, ok := o.(overlay.Heatmap); ok {
			return &h
		}
	}
	return nil
}

// restrict keeps the nodes in ids and the edges whose endpoints are both in
// ids, preserving order.
func restrict(nodes []model.Node, edges []model.Edge, ids model.IDSet) ([]model.Node, []model.Edge) {
	keptNodes := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if ids.Has(n.ID) {
			keptNodes = append(keptNodes, n)
		}
	}
	keptEdges := make([]model.Edge, 0, len(edges))
	for _, e := range edges {
		if ids.Has(e.Source) && ids.Has(e.Target) {
			keptEdges = append(keptEdges, e)
		}
	}
	return keptNodes, keptEdges
}

func idOf[T interface{ Meta() overlay.Envelope }](o *T) string {
	if o == nil {
		return ""
	}
	return (*o).Meta().ID
}
