package export

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"

	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/compose"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/overlay"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/testutil"
)

func sampleModel() compose.RenderModel {
	return compose.RenderModel{
		Nodes: []model.Node{
			{ID: "src/b.ts", Label: "b.ts", Path: "src/b.ts", Heatmap: &model.HeatmapMark{Color: "#ff0000", Score: 0.9}},
			{ID: "src/a.ts", Label: "a.ts", Path: "src/a.ts"},
		},
		Edges: []model.Edge{
			{Source: "src/b.ts", Target: "src/a.ts", Kind: "dynamic"},
			{Source: "src/a.ts", Target: "src/b.ts", Kind: "import"},
		},
		Styles: map[string]any{},
	}
}

func TestRender_JSON(t *testing.T) {
	result, err := Render(sampleModel(), Config{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Format != "json" {
		t.Errorf("expected format 'json', got %s", result.Format)
	}
	if result.Nodes != 2 || result.Edges != 2 || result.Decorated != 1 {
		t.Errorf("expected 2 nodes, 2 edges, 1 decorated, got %d/%d/%d", result.Nodes, result.Edges, result.Decorated)
	}
	if result.Adjacency == nil {
		t.Fatal("expected adjacency for JSON format")
	}
	if result.Adjacency.Nodes[0].ID != "src/a.ts" || result.Adjacency.Nodes[1].ID != "src/b.ts" {
		t.Errorf("expected nodes sorted by id, got %+v", result.Adjacency.Nodes)
	}
	if result.Adjacency.Nodes[1].Heatmap == nil || result.Adjacency.Nodes[1].Heatmap.Color != "#ff0000" {
		t.Errorf("expected heatmap mark on b.ts, got %+v", result.Adjacency.Nodes[1].Heatmap)
	}
	if e := result.Adjacency.Edges[0]; e.From != "src/a.ts" || e.Key != "src/a.ts->src/b.ts" {
		t.Errorf("expected edges sorted by source, got %+v", result.Adjacency.Edges)
	}

	data, err := result.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	var decoded Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Adjacency == nil || len(decoded.Adjacency.Nodes) != 2 {
		t.Errorf("expected adjacency to survive encoding, got %+v", decoded.Adjacency)
	}
}

func TestRender_DOT(t *testing.T) {
	result, err := Render(sampleModel(), Config{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Adjacency != nil {
		t.Error("expected no adjacency for DOT format")
	}
	g := result.Graph
	for _, want := range []string{
		"digraph G {",
		`"src/a.ts" [label="a.ts\nsrc/a.ts", fillcolor="#FFFFFF", style=filled, penwidth=1.0];`,
		`"src/b.ts" [label="b.ts\nsrc/b.ts", fillcolor="#ff0000", style=filled, penwidth=3.7];`,
		`"src/a.ts" -> "src/b.ts" [style=solid, color="#999999"];`,
		`"src/b.ts" -> "src/a.ts" [style=dashed, color="#999999"];`,
	} {
		if !strings.Contains(g, want) {
			t.Errorf("expected DOT to contain %q, got:\n%s", want, g)
		}
	}
	if !strings.HasSuffix(g, "}\n") {
		t.Error("expected DOT to end with closing brace")
	}
	if strings.Index(g, `"src/a.ts" [`) > strings.Index(g, `"src/b.ts" [`) {
		t.Error("expected nodes in id order")
	}
}

func TestRender_DOTEscaping(t *testing.T) {
	m := compose.RenderModel{Nodes: []model.Node{{ID: `weird"id`, Label: "line\nbreak"}}}
	result, err := Render(m, Config{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(result.Graph, `"weird\"id" [label="line break"`) {
		t.Errorf("expected escaped id and label, got:\n%s", result.Graph)
	}
}

func TestRender_Mermaid(t *testing.T) {
	result, err := Render(sampleModel(), Config{Format: FormatMermaid})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	g := result.Graph
	for _, want := range []string{
		"graph LR",
		`srcats["a.ts"]`,
		`srcbts["b.ts"]`,
		"style srcbts fill:#ff0000,stroke:#333,color:#000",
		"srcats --> srcbts",
		"srcbts -.-> srcats",
	} {
		if !strings.Contains(g, want) {
			t.Errorf("expected Mermaid to contain %q, got:\n%s", want, g)
		}
	}
	if strings.Contains(g, "style srcats") {
		t.Error("undecorated node should not be styled")
	}
}

func TestRender_MermaidCollisions(t *testing.T) {
	m := compose.RenderModel{
		Nodes: []model.Node{{ID: "a.b"}, {ID: "ab"}},
		Edges: []model.Edge{{Source: "ab", Target: "a.b"}},
	}
	result, err := Render(m, Config{Format: FormatMermaid})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	lines := strings.Split(result.Graph, "\n")
	var ids []string
	for _, line := range lines {
		if i := strings.Index(line, "["); i > 0 {
			ids = append(ids, strings.TrimSpace(line[:i]))
		}
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Fatalf("expected two distinct Mermaid ids, got %v", ids)
	}
	if !strings.Contains(result.Graph, ids[1]+" --> "+ids[0]) {
		t.Errorf("expected edge between %s and %s, got:\n%s", ids[1], ids[0], result.Graph)
	}
}

func TestRender_LabelTruncation(t *testing.T) {
	m := compose.RenderModel{Nodes: []model.Node{
		{ID: "long", Label: "a_really_long_module_name_for_testing.ts"},
		{ID: "wide", Label: "依存関係グラフ表示モジュール"},
	}}
	result, err := Render(m, Config{Format: FormatMermaid, LabelWidth: 12})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, line := range strings.Split(result.Graph, "\n") {
		start, end := strings.Index(line, `["`), strings.LastIndex(line, `"]`)
		if start < 0 || end < 0 {
			continue
		}
		label := line[start+2 : end]
		if w := runewidth.StringWidth(label); w > 12 {
			t.Errorf("label %q has width %d, want <= 12", label, w)
		}
		if !strings.HasSuffix(label, "...") {
			t.Errorf("expected truncated label %q to end with ...", label)
		}
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if _, err := Render(sampleModel(), Config{Format: "svg"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRender_Empty(t *testing.T) {
	result, err := Render(compose.RenderModel{}, Config{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	data, err := result.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"nodes": []`) {
		t.Errorf("expected empty node list in JSON, got %s", data)
	}
}

func TestRender_DeterministicAcrossInputOrder(t *testing.T) {
	g := testutil.New(3).Random(10, 0.3).Graph()
	s := overlay.NewState().Apply(overlay.NewHeatmap("h1", []overlay.HeatmapValue{{NodeID: "n2", Score: 0.5, Color: "#00ff00"}}))
	m := compose.ComposeRenderable(g, s)

	reversed := compose.RenderModel{Styles: map[string]any{}}
	for i := len(m.Nodes) - 1; i >= 0; i-- {
		reversed.Nodes = append(reversed.Nodes, m.Nodes[i])
	}
	for i := len(m.Edges) - 1; i >= 0; i-- {
		reversed.Edges = append(reversed.Edges, m.Edges[i])
	}

	for _, f := range []Format{FormatJSON, FormatDOT, FormatMermaid} {
		a, err := Render(m, Config{Format: f})
		if err != nil {
			t.Fatalf("Render(%s) failed: %v", f, err)
		}
		b, err := Render(reversed, Config{Format: f})
		if err != nil {
			t.Fatalf("Render(%s) failed: %v", f, err)
		}
		aj, _ := a.JSON()
		bj, _ := b.JSON()
		if string(aj) != string(bj) {
			t.Errorf("%s export depends on input order", f)
		}
	}
}
