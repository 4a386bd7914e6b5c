// Package session holds the overlay state of one graph view on the host side.
//
// A Session owns the current base graph and overlay state, applies and clears
// overlays on behalf of the UI, and recomposes the render model when either
// changes. It is safe for concurrent use.
package session

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/analysis"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/compose"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/config"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/debug"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/metrics"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"
	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/overlay"
)

// Overlay ids used by the convenience constructors. A new focus or impact
// request replaces the previous one in place.
const (
	FocusOverlayID  = "focus"
	ImpactOverlayID = "impact"
)

type cachedModel struct {
	revision uint64
	model    compose.RenderModel
}

// Session is the host-side holder of a graph view.
type Session struct {
	id  string
	cfg config.Config

	mu       sync.RWMutex
	graph    *model.Graph
	state    *overlay.State
	revision uint64
	cached   *cachedModel

	renders singleflight.Group
}

// New creates an empty session. Diagnostics are switched on when cfg asks
// for them; they are never switched off here.
func New(cfg config.Config) *Session {
	if cfg.Diagnostics.Enabled {
		debug.SetEnabled(true)
	}
	return &Session{
		id:    uuid.NewString(),
		cfg:   cfg,
		state: overlay.NewState(),
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Config returns the configuration the session was created with.
func (s *Session) Config() config.Config { return s.cfg }

// Graph returns the current base graph, or nil.
func (s *Session) Graph() *model.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// State returns the current overlay state snapshot.
func (s *Session) State() *overlay.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Revision increases every time the graph or overlay state changes.
func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// SetGraph replaces the base graph. The graph must not be modified after it
// is handed over.
func (s *Session) SetGraph(g *model.Graph) {
	s.mu.Lock()
	s.graph = g
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	var nodes, edges int
	if g != nil {
		nodes, edges = len(g.Nodes), len(g.Edges)
	}
	debug.Event("session.graph", "session", s.id, "rev", rev, "nodes", nodes, "edges", edges)
}

// Apply stores o, replacing any overlay with the same id. When validation is
// configured, malformed overlays are rejected with an error wrapping
// overlay.ErrInvalid and the state is left untouched.
func (s *Session) Apply(o overlay.Overlay) error {
	if s.cfg.Overlays.Validate {
		if err := overlay.Validate(o); err != nil {
			debug.Log("session %s: rejected overlay: %v", s.id, err)
			return fmt.Errorf("applying overlay: %w", err)
		}
	}

	s.mu.Lock()
	next := s.state.Apply(o)
	changed := next != s.state
	if changed {
		s.state = next
		s.revision++
	}
	rev := s.revision
	s.mu.Unlock()

	if changed {
		meta := o.Meta()
		debug.Event("overlay.apply",
			"session", s.id,
			"rev", rev,
			"id", meta.ID,
			"kind", o.Kind(),
			"correlation", meta.CorrelationID,
		)
	}
	return nil
}

// Clear removes the overlay with the given id and reports whether anything
// changed.
func (s *Session) Clear(id string) bool {
	s.mu.Lock()
	next := s.state.Clear(id)
	changed := next != s.state
	if changed {
		s.state = next
		s.revision++
	}
	rev := s.revision
	s.mu.Unlock()

	if changed {
		debug.Event("overlay.clear", "session", s.id, "rev", rev, "id", id)
	}
	return changed
}

// Focus applies a focus overlay on target using the configured directions.
// A negative depth selects the configured default depth.
func (s *Session) Focus(target string, depth int) (overlay.Focus, error) {
	fc := s.cfg.Overlays.Focus
	if depth < 0 {
		depth = fc.DefaultDepth
	}
	f := overlay.NewFocus(FocusOverlayID, target, depth)
	f.IncludeIncoming = fc.IncludeIncoming
	f.IncludeOutgoing = fc.IncludeOutgoing
	f.CorrelationID = uuid.NewString()

	if err := s.Apply(f); err != nil {
		return overlay.Focus{}, err
	}
	return f, nil
}

// ShowImpact applies an impact overlay on target, taking its direct
// dependencies and dependents from the current graph.
func (s *Session) ShowImpact(target string) (overlay.Impact, error) {
	deps, dependents := analysis.DirectNeighbors(s.Graph(), target)
	i := overlay.NewImpact(ImpactOverlayID, target, deps, dependents)
	i.CorrelationID = uuid.NewString()

	if err := s.Apply(i); err != nil {
		return overlay.Impact{}, err
	}
	return i, nil
}

// Render returns the render model for the current revision. Models are
// cached per revision and concurrent callers for the same revision share
// one composition. The returned model is shared and must not be modified.
func (s *Session) Render() compose.RenderModel {
	s.mu.RLock()
	rev, g, st, cached := s.revision, s.graph, s.state, s.cached
	s.mu.RUnlock()

	if cached != nil && cached.revision == rev {
		metrics.RenderCache.Hit()
		return cached.model
	}
	metrics.RenderCache.Miss()

	v, _, _ := s.renders.Do(strconv.FormatUint(rev, 10), func() (any, error) {
		defer debug.LogEnterExit("session.render rev=" + strconv.FormatUint(rev, 10))()
		m := compose.ComposeWith(g, st, s.options())
		s.mu.Lock()
		if s.revision == rev {
			s.cached = &cachedModel{revision: rev, model: m}
		}
		s.mu.Unlock()
		return m, nil
	})
	return v.(compose.RenderModel)
}

// Stats returns the process-wide composition and render cache metrics for a
// developer console.
func (s *Session) Stats() metrics.Snapshot {
	return metrics.Collect()
}

func (s *Session) options() compose.Options {
	return compose.Options{FallbackColor: s.cfg.Overlays.Heatmap.FallbackColor}
}
