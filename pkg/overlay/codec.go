package overlay

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// ErrUnknownKind is returned by Decode for a kind this package does not define.
var ErrUnknownKind = errors.New("unknown overlay kind")

// Decode parses an overlay message from the UI layer. The "kind" field selects
// the variant. Focus messages that omit includeIncoming/includeOutgoing
// default both to true.
func Decode(data []byte) (Overlay, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding overlay: %w", err)
	}

	switch head.Kind {
	case KindFocus:
		f := Focus{IncludeIncoming: true, IncludeOutgoing: true}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decoding focus overlay: %w", err)
		}
		return f, nil
	case KindImpact:
		var i Impact
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, fmt.Errorf("decoding impact overlay: %w", err)
		}
		return i, nil
	case KindHeatmap:
		var h Heatmap
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, fmt.Errorf("decoding heatmap overlay: %w", err)
		}
		return h, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, head.Kind)
	}
}

// Encode renders o with its "kind" discriminator. Timestamps that were never
// set are left out.
func Encode(o Overlay) ([]byte, error) {
	var wire any
	switch v := o.(type) {
	case Focus:
		created, updated := stamps(v.Envelope)
		wire = focusWire{
			Kind:            KindFocus,
			ID:              v.ID,
			CreatedAt:       created,
			UpdatedAt:       updated,
			CorrelationID:   v.CorrelationID,
			TargetNodeID:    v.TargetNodeID,
			Depth:           v.Depth,
			IncludeIncoming: v.IncludeIncoming,
			IncludeOutgoing: v.IncludeOutgoing,
		}
	case Impact:
		created, updated := stamps(v.Envelope)
		wire = impactWire{
			Kind:          KindImpact,
			ID:            v.ID,
			CreatedAt:     created,
			UpdatedAt:     updated,
			CorrelationID: v.CorrelationID,
			TargetNodeID:  v.TargetNodeID,
			Dependencies:  v.Dependencies,
			Dependents:    v.Dependents,
		}
	case Heatmap:
		created, updated := stamps(v.Envelope)
		values := make([]heatmapValueWire, 0, len(v.Values))
		for _, hv := range v.Values {
			values = append(values, heatmapValueWire(hv))
		}
		wire = heatmapWire{
			Kind:          KindHeatmap,
			ID:            v.ID,
			CreatedAt:     created,
			UpdatedAt:     updated,
			CorrelationID: v.CorrelationID,
			Values:        values,
			CenterNode:    v.CenterNode,
			Distribution:  v.Distribution,
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, o)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encoding %s overlay: %w", o.Kind(), err)
	}
	return data, nil
}

// stamps returns the envelope timestamps, nil where unset.
func stamps(e Envelope) (created, updated *time.Time) {
	if !e.CreatedAt.IsZero() {
		at := e.CreatedAt
		created = &at
	}
	if !e.UpdatedAt.IsZero() {
		at := e.UpdatedAt
		updated = &at
	}
	return created, updated
}

// Wire types are flat: the kind sits beside the envelope fields.

type focusWire struct {
	Kind            Kind       `json:"kind"`
	ID              string     `json:"id"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	CorrelationID   string     `json:"correlationId,omitempty"`
	TargetNodeID    string     `json:"targetNodeId"`
	Depth           int        `json:"depth"`
	IncludeIncoming bool       `json:"includeIncoming"`
	IncludeOutgoing bool       `json:"includeOutgoing"`
}

type impactWire struct {
	Kind          Kind       `json:"kind"`
	ID            string     `json:"id"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	CorrelationID string     `json:"correlationId,omitempty"`
	TargetNodeID  string     `json:"targetNodeId"`
	Dependencies  []string   `json:"dependencies"`
	Dependents    []string   `json:"dependents"`
}

type heatmapValueWire struct {
	NodeID  string         `json:"nodeId"`
	Score   float64        `json:"score"`
	Color   string         `json:"color,omitempty"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

type heatmapWire struct {
	Kind          Kind               `json:"kind"`
	ID            string             `json:"id"`
	CreatedAt     *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time         `json:"updatedAt,omitempty"`
	CorrelationID string             `json:"correlationId,omitempty"`
	Values        []heatmapValueWire `json:"values"`
	CenterNode    string             `json:"centerNode,omitempty"`
	Distribution  map[string]any     `json:"distribution,omitempty"`
}
