package overlay

import "time"

// now is the store clock; tests replace it.
var now = func() time.Time {
	return time.Now().UTC()
}

// State maps overlay IDs to overlays. It is copy-on-write: Apply and Clear
// return a new State and never touch the receiver, so callers may compare
// pointers to detect change and keep old snapshots around freely.
//
// Iteration follows insertion order. Replacing an existing ID keeps its
// position. A nil *State is an empty state.
type State struct {
	entries map[string]Overlay
	order   []string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{entries: map[string]Overlay{}}
}

// Apply returns a new state with o stored under its ID.
//
// When the ID already exists the stored CreatedAt is kept; otherwise o's own
// CreatedAt is used, or the current time when it is zero. UpdatedAt is always
// set to the current time.
func (s *State) Apply(o Overlay) *State {
	return s.ApplyAt(o, now())
}

// ApplyAt is Apply with an explicit timestamp.
func (s *State) ApplyAt(o Overlay, at time.Time) *State {
	if o == nil {
		return s
	}
	env := o.Meta()

	next := s.clone(1)
	if prev, ok := next.entries[env.ID]; ok {
		env.CreatedAt = prev.Meta().CreatedAt
	} else {
		if env.CreatedAt.IsZero() {
			env.CreatedAt = at
		}
		next.order = append(next.order, env.ID)
	}
	env.UpdatedAt = at
	next.entries[env.ID] = o.withEnvelope(env)
	return next
}

// Clear returns a new state without id. When id is not present the receiver
// itself is returned.
func (s *State) Clear(id string) *State {
	if _, ok := s.Get(id); !ok {
		return s
	}
	next := &State{
		entries: make(map[string]Overlay, len(s.entries)-1),
		order:   make([]string, 0, len(s.order)-1),
	}
	for _, key := range s.order {
		if key == id {
			continue
		}
		next.order = append(next.order, key)
		next.entries[key] = s.entries[key]
	}
	return next
}

// Get returns the overlay stored under id.
func (s *State) Get(id string) (Overlay, bool) {
	if s == nil {
		return nil, false
	}
	o, ok := s.entries[id]
	return o, ok
}

// Len returns the number of stored overlays.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns the stored IDs in iteration order.
func (s *State) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Overlays returns the stored overlays in iteration order.
func (s *State) Overlays() []Overlay {
	if s == nil {
		return nil
	}
	out := make([]Overlay, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

func (s *State) clone(extra int) *State {
	n := s.Len()
	next := &State{
		entries: make(map[string]Overlay, n+extra),
		order:   make([]string, n, n+extra),
	}
	if s == nil {
		return next
	}
	copy(next.order, s.order)
	for k, v := range s.entries {
		next.entries[k] = v
	}
	return next
}
