package overlay

import (
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/metrics"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"
)

// DefaultHeatmapColor is used for values the metrics engine sent without a colour.
const DefaultHeatmapColor = "#999999"

// DecorateHeatmap attaches heatmap marks to the nodes named in h.Values.
// See DecorateHeatmapWith.
func DecorateHeatmap(nodes []model.Node, h *Heatmap) []model.Node {
	return DecorateHeatmapWith(nodes, h, DefaultHeatmapColor)
}

// DecorateHeatmapWith returns nodes with a HeatmapMark on every node that has
// a value in h. Only the first value for a node ID counts. Decorated nodes are
// shallow copies; no other field changes. When h is nil or has no values the
// input slice is returned as-is. An empty fallback means DefaultHeatmapColor.
func DecorateHeatmapWith(nodes []model.Node, h *Heatmap, fallback string) []model.Node {
	if h == nil || len(h.Values) == 0 {
		return nodes
	}
	defer metrics.Timer(metrics.HeatmapDecorate)()

	if fallback == "" {
		fallback = DefaultHeatmapColor
	}
	marks := make(map[string]model.HeatmapMark, len(h.Values))
	for _, v := range h.Values {
		if _, seen := marks[v.NodeID]; seen {
			continue
		}
		color := v.Color
		if color == "" {
			color = fallback
		}
		marks[v.NodeID] = model.HeatmapMark{Color: color, Score: v.Score}
	}

	out := make([]model.Node, len(nodes))
	for i, n := range nodes {
		if mark, ok := marks[n.ID]; ok {
			n.Heatmap = &mark
		}
		out[i] = n
	}
	return out
}
