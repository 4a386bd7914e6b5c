package overlay

import "github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"

// ImpactSummary is a read-only count of an impact overlay's reach.
type ImpactSummary struct {
	Dependencies int `json:"deps"`
	Dependents   int `json:"dependents"`
	Visible      int `json:"visible"`
}

// BuildImpactVisibleSet returns the target together with its dependencies
// and dependents. Duplicates, including the target listed as its own
// neighbour, collapse.
func BuildImpactVisibleSet(o Impact) model.IDSet {
	set := make(model.IDSet, 1+len(o.Dependencies)+len(o.Dependents))
	set.Add(o.TargetNodeID)
	for _, id := range o.Dependencies {
		set.Add(id)
	}
	for _, id := range o.Dependents {
		set.Add(id)
	}
	return set
}

// SummarizeImpact counts the overlay's neighbour lists and visible set.
func SummarizeImpact(o Impact) ImpactSummary {
	return ImpactSummary{
		Dependencies: len(o.Dependencies),
		Dependents:   len(o.Dependents),
		Visible:      BuildImpactVisibleSet(o).Len(),
	}
}
