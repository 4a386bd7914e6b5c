// Package export serialises a composed render model for tools outside the
// webview: a JSON adjacency list, Graphviz DOT, or a Mermaid flowchart.
//
// Output is deterministic. Nodes are sorted by id and edges by source,
// target and key, regardless of the order composition produced them in.
package export

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"

	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/compose"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"
)

// Format specifies the output format.
type Format string

const (
	FormatJSON    Format = "json"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
)

// DefaultLabelWidth is the display width labels are truncated to.
const DefaultLabelWidth = 30

// undecoratedFill is the fill for nodes without a heatmap mark.
const undecoratedFill = "#FFFFFF"

// Config configures an export.
type Config struct {
	Format     Format // json (default), dot, mermaid
	LabelWidth int    // Max label display width; 0 = DefaultLabelWidth
}

// Result contains the exported graph and metadata.
type Result struct {
	Format      string          `json:"format"`
	Graph       string          `json:"graph,omitempty"`
	Nodes       int             `json:"nodes"`
	Edges       int             `json:"edges"`
	Decorated   int             `json:"decorated"`
	Explanation Explanation     `json:"explanation"`
	Adjacency   *AdjacencyGraph `json:"adjacency,omitempty"`
}

// Explanation tells the reader what the output is and how to view it.
type Explanation struct {
	What        string `json:"what"`
	HowToRender string `json:"how_to_render,omitempty"`
}

// AdjacencyGraph is the JSON adjacency list representation.
type AdjacencyGraph struct {
	Nodes []AdjacencyNode `json:"nodes"`
	Edges []AdjacencyEdge `json:"edges"`
}

// AdjacencyNode is a node in the adjacency graph.
type AdjacencyNode struct {
	ID      string             `json:"id"`
	Label   string             `json:"label,omitempty"`
	Path    string             `json:"path,omitempty"`
	Kind    string             `json:"kind,omitempty"`
	Heatmap *model.HeatmapMark `json:"heatmap,omitempty"`
}

// AdjacencyEdge is an edge in the adjacency graph.
type AdjacencyEdge struct {
	Key  string `json:"key"`
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind,omitempty"`
}

// Render exports m in the configured format.
func Render(m compose.RenderModel, cfg Config) (*Result, error) {
	format := cfg.Format
	if format == "" {
		format = FormatJSON
	}
	width := cfg.LabelWidth
	if width <= 0 {
		width = DefaultLabelWidth
	}

	nodes, edges := sortedNodes(m.Nodes), sortedEdges(m.Edges)
	result := &Result{
		Format:    string(format),
		Nodes:     len(nodes),
		Edges:     len(edges),
		Decorated: countDecorated(nodes),
	}

	switch format {
	case FormatDOT:
		result.Graph = generateDOT(nodes, edges, width)
		result.Explanation = Explanation{
			What:        "Dependency graph in Graphviz DOT format",
			HowToRender: "Save to file.dot, run: dot -Tsvg file.dot -o graph.svg",
		}
	case FormatMermaid:
		result.Graph = generateMermaid(nodes, edges, width)
		result.Explanation = Explanation{
			What:        "Dependency graph in Mermaid flowchart format",
			HowToRender: "Paste into any Markdown renderer that supports Mermaid, or use mermaid.live",
		}
	case FormatJSON:
		result.Adjacency = generateAdjacency(nodes, edges)
		result.Explanation = Explanation{
			What: "Dependency graph as JSON adjacency list",
		}
	default:
		return nil, fmt.Errorf("unknown export format %q", cfg.Format)
	}

	return result, nil
}

// JSON returns the result as indented JSON.
func (r *Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func sortedNodes(nodes []model.Node) []model.Node {
	out := make([]model.Node, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedEdges(edges []model.Edge) []model.Edge {
	out := make([]model.Edge, len(edges))
	copy(out, edges)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Key() < b.Key()
	})
	return out
}

func countDecorated(nodes []model.Node) int {
	n := 0
	for _, node := range nodes {
		if node.Heatmap != nil {
			n++
		}
	}
	return n
}

func displayLabel(n model.Node, width int) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	return runewidth.Truncate(label, width, "...")
}

func fillColor(n model.Node) string {
	if n.Heatmap == nil || n.Heatmap.Color == "" {
		return undecoratedFill
	}
	return n.Heatmap.Color
}

// generateDOT creates a Graphviz DOT format graph.
func generateDOT(nodes []model.Node, edges []model.Edge, width int) string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=8];\n")
	sb.WriteString("\n")

	for _, n := range nodes {
		label := escapeDOTString(displayLabel(n, width))
		if n.Path != "" && n.Path != n.Label {
			label += "\\n" + escapeDOTString(runewidth.Truncate(n.Path, width*2, "..."))
		}

		// Heat raises the border weight.
		penwidth := 1.0
		if n.Heatmap != nil && n.Heatmap.Score > 0 {
			penwidth = 1.0 + n.Heatmap.Score*3.0
		}

		sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", fillcolor=\"%s\", style=filled, penwidth=%.1f];\n",
			escapeDOTString(n.ID), label, escapeDOTString(fillColor(n)), penwidth))
	}

	sb.WriteString("\n")

	for _, e := range edges {
		style := "solid"
		if e.Kind == "dynamic" {
			style = "dashed"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [style=%s, color=\"#999999\"];\n",
			escapeDOTString(e.Source), escapeDOTString(e.Target), style))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOTString(s string) string {
	// DOT string literals need backslashes and quotes escaped; normalize newlines.
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", " ",
		"\r", " ",
	)
	return replacer.Replace(s)
}

// generateMermaid creates a Mermaid flowchart.
func generateMermaid(nodes []model.Node, edges []model.Edge, width int) string {
	var sb strings.Builder

	sb.WriteString("graph LR\n")

	// Deterministic, collision-free Mermaid ids.
	safeIDMap := make(map[string]string, len(nodes))
	usedSafe := make(map[string]bool, len(nodes))
	getSafeID := func(orig string) string {
		if safe, ok := safeIDMap[orig]; ok {
			return safe
		}
		base := sanitizeMermaidID(orig)
		safe := base
		if usedSafe[safe] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(orig))
			safe = fmt.Sprintf("%s_%x", base, h.Sum32())
		}
		usedSafe[safe] = true
		safeIDMap[orig] = safe
		return safe
	}
	for _, n := range nodes {
		getSafeID(n.ID)
	}

	for _, n := range nodes {
		safeID := getSafeID(n.ID)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, sanitizeMermaidText(displayLabel(n, width))))
		if n.Heatmap != nil {
			sb.WriteString(fmt.Sprintf("    style %s fill:%s,stroke:#333,color:#000\n", safeID, fillColor(n)))
		}
	}

	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range edges {
		link := "-->"
		if e.Kind == "dynamic" {
			link = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", getSafeID(e.Source), link, getSafeID(e.Target)))
	}

	return sb.String()
}

// sanitizeMermaidID keeps letters, digits, '-' and '_'.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "node"
	}
	return sb.String()
}

// sanitizeMermaidText replaces characters that break Mermaid label syntax.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, replacer.Replace(text))
	return strings.TrimSpace(result)
}

// generateAdjacency creates the JSON adjacency list.
func generateAdjacency(nodes []model.Node, edges []model.Edge) *AdjacencyGraph {
	adj := &AdjacencyGraph{
		Nodes: make([]AdjacencyNode, 0, len(nodes)),
		Edges: make([]AdjacencyEdge, 0, len(edges)),
	}
	for _, n := range nodes {
		adj.Nodes = append(adj.Nodes, AdjacencyNode{
			ID:      n.ID,
			Label:   n.Label,
			Path:    n.Path,
			Kind:    n.Kind,
			Heatmap: n.Heatmap,
		})
	}
	for _, e := range edges {
		adj.Edges = append(adj.Edges, AdjacencyEdge{
			Key:  e.Key(),
			From: e.Source,
			To:   e.Target,
			Kind: e.Kind,
		})
	}
	return adj
}
