// Package overlay holds the analytical lenses that reshape the visible
// dependency graph, and the copy-on-write store that keeps them.
//
// Three kinds exist today:
//
//   - Focus restricts the view to a depth-limited neighbourhood of a node.
//   - Impact restricts the view to a node plus its direct dependencies and
//     dependents (its blast radius).
//   - Heatmap decorates nodes with score/colour metadata without filtering.
//
// Overlay is a sealed interface: only the types in this package implement it,
// so a new kind is a change here plus a new case in every type switch over it.
package overlay

import "time"

// Kind discriminates overlay variants.
type Kind string

const (
	KindFocus   Kind = "focus"
	KindImpact  Kind = "impact"
	KindHeatmap Kind = "heatmap"
)

func (k Kind) String() string {
	return string(k)
}

// Envelope is the audit data shared by every overlay kind.
type Envelope struct {
	// ID is unique within a State; re-applying the same ID updates in place.
	ID        string    `json:"id" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// CorrelationID is an opaque tracing token, passed through unchanged.
	CorrelationID string `json:"correlationId,omitempty"`
}

// Meta returns the envelope itself; embedding types inherit it.
func (e Envelope) Meta() Envelope {
	return e
}

// Overlay is implemented by Focus, Impact and Heatmap.
type Overlay interface {
	Kind() Kind
	Meta() Envelope
	withEnvelope(Envelope) Overlay
}

// Focus restricts the view to nodes within Depth hops of TargetNodeID.
type Focus struct {
	Envelope
	TargetNodeID    string `json:"targetNodeId" validate:"required"`
	Depth           int    `json:"depth" validate:"gte=0"`
	IncludeIncoming bool   `json:"includeIncoming"`
	IncludeOutgoing bool   `json:"includeOutgoing"`
}

// NewFocus returns a focus overlay following edges in both directions.
func NewFocus(id, targetNodeID string, depth int) Focus {
	return Focus{
		Envelope:        Envelope{ID: id},
		TargetNodeID:    targetNodeID,
		Depth:           depth,
		IncludeIncoming: true,
		IncludeOutgoing: true,
	}
}

func (Focus) Kind() Kind { return KindFocus }

func (f Focus) withEnvelope(e Envelope) Overlay {
	f.Envelope = e
	return f
}

// Impact restricts the view to a node and its direct neighbours. The
// neighbour lists are supplied by the caller.
type Impact struct {
	Envelope
	TargetNodeID string `json:"targetNodeId" validate:"required"`
	// Dependencies are direct outgoing neighbours of the target.
	Dependencies []string `json:"dependencies" validate:"dive,required"`
	// Dependents are direct incoming neighbours of the target.
	Dependents []string `json:"dependents" validate:"dive,required"`
}

// NewImpact returns an impact overlay for targetNodeID.
func NewImpact(id, targetNodeID string, dependencies, dependents []string) Impact {
	return Impact{
		Envelope:     Envelope{ID: id},
		TargetNodeID: targetNodeID,
		Dependencies: dependencies,
		Dependents:   dependents,
	}
}

func (Impact) Kind() Kind { return KindImpact }

func (i Impact) withEnvelope(e Envelope) Overlay {
	i.Envelope = e
	return i
}

// HeatmapValue is one score produced by the metrics engine.
type HeatmapValue struct {
	NodeID  string         `json:"nodeId" validate:"required"`
	Score   float64        `json:"score"`
	Color   string         `json:"color" validate:"omitempty,iscolor"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// Heatmap decorates nodes with score and colour. Values keep the order the
// metrics engine supplied.
type Heatmap struct {
	Envelope
	Values     []HeatmapValue `json:"values" validate:"dive"`
	CenterNode string         `json:"centerNode,omitempty"`
	// Distribution is opaque metadata from the metrics engine.
	Distribution map[string]any `json:"distribution,omitempty"`
}

// NewHeatmap returns a heatmap overlay over values.
func NewHeatmap(id string, values []HeatmapValue) Heatmap {
	return Heatmap{
		Envelope: Envelope{ID: id},
		Values:   values,
	}
}

func (Heatmap) Kind() Kind { return KindHeatmap }

func (h Heatmap) withEnvelope(e Envelope) Overlay {
	h.Envelope = e
	return h
}
