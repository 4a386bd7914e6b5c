package overlay

import (
	"reflect"
	"testing"

	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"
)

func heatmapNodes() []model.Node {
	return []model.Node{
		{ID: "A", Label: "a.ts", Path: "src/a.ts", Attrs: map[string]any{"loc": 10}},
		{ID: "B", Label: "b.ts", Path: "src/b.ts"},
	}
}

func TestDecorateHeatmap_AdditiveOnly(t *testing.T) {
	nodes := heatmapNodes()
	h := NewHeatmap("h1", []HeatmapValue{{NodeID: "A", Score: 0.9, Color: "#ff0000"}})

	out := DecorateHeatmap(nodes, &h)

	if len(out) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(out))
	}
	if !reflect.DeepEqual(out[1], nodes[1]) {
		t.Errorf("undecorated node changed: %+v", out[1])
	}
	want := model.HeatmapMark{Color: "#ff0000", Score: 0.9}
	if out[0].Heatmap == nil || *out[0].Heatmap != want {
		t.Fatalf("expected mark %+v on A, got %+v", want, out[0].Heatmap)
	}

	stripped := out[0]
	stripped.Heatmap = nil
	if !reflect.DeepEqual(stripped, nodes[0]) {
		t.Errorf("decoration altered other fields: %+v", out[0])
	}
	if nodes[0].Heatmap != nil {
		t.Error("input node was mutated")
	}
}

func TestDecorateHeatmap_FirstValueWins(t *testing.T) {
	h := NewHeatmap("h1", []HeatmapValue{
		{NodeID: "A", Score: 0.2, Color: "#00ff00"},
		{NodeID: "A", Score: 0.9, Color: "#ff0000"},
	})
	out := DecorateHeatmap(heatmapNodes(), &h)
	if out[0].Heatmap.Score != 0.2 || out[0].Heatmap.Color != "#00ff00" {
		t.Errorf("expected first value to win, got %+v", out[0].Heatmap)
	}
}

func TestDecorateHeatmap_FallbackColor(t *testing.T) {
	h := NewHeatmap("h1", []HeatmapValue{{NodeID: "B", Score: 0.5}})

	out := DecorateHeatmap(heatmapNodes(), &h)
	if out[1].Heatmap.Color != DefaultHeatmapColor {
		t.Errorf("expected fallback %s, got %s", DefaultHeatmapColor, out[1].Heatmap.Color)
	}

	out = DecorateHeatmapWith(heatmapNodes(), &h, "#123456")
	if out[1].Heatmap.Color != "#123456" {
		t.Errorf("expected configured fallback, got %s", out[1].Heatmap.Color)
	}
}

func TestDecorateHeatmap_NoValuesReturnsInput(t *testing.T) {
	nodes := heatmapNodes()

	if out := DecorateHeatmap(nodes, nil); &out[0] != &nodes[0] {
		t.Error("expected same slice for nil overlay")
	}
	empty := NewHeatmap("h1", nil)
	if out := DecorateHeatmap(nodes, &empty); &out[0] != &nodes[0] {
		t.Error("expected same slice for empty values")
	}
}

func TestDecorateHeatmap_UnknownNodesIgnored(t *testing.T) {
	h := NewHeatmap("h1", []HeatmapValue{{NodeID: "Z", Score: 1, Color: "#000000"}})
	out := DecorateHeatmap(heatmapNodes(), &h)
	for _, n := range out {
		if n.Heatmap != nil {
			t.Errorf("node %s unexpectedly decorated", n.ID)
		}
	}
}
