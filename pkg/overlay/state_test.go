package overlay

import (
	"reflect"
	"testing"
	"time"
)

var (
	t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Minute)
	t2 = t0.Add(2 * time.Minute)
)

func TestNewState_Empty(t *testing.T) {
	s := NewState()
	if s.Len() != 0 {
		t.Errorf("expected empty state, got %d entries", s.Len())
	}
	if _, ok := s.Get("anything"); ok {
		t.Error("expected lookup miss on empty state")
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s0 := NewState()
	s1 := s0.ApplyAt(NewFocus("f1", "B", 1), t0)

	if s0 == s1 {
		t.Fatal("expected Apply to return a new state")
	}
	if s0.Len() != 0 {
		t.Errorf("original state mutated: %d entries", s0.Len())
	}
	if _, ok := s0.Get("f1"); ok {
		t.Error("original state should not see f1")
	}
	if _, ok := s1.Get("f1"); !ok {
		t.Error("new state should hold f1")
	}

	s2 := s1.ApplyAt(NewHeatmap("h1", nil), t1)
	if s1.Len() != 1 || s2.Len() != 2 {
		t.Errorf("expected lengths 1 and 2, got %d and %d", s1.Len(), s2.Len())
	}
}

func TestApply_NewEntryTimestamps(t *testing.T) {
	s := NewState().ApplyAt(NewFocus("f1", "B", 1), t1)
	o, _ := s.Get("f1")
	if !o.Meta().CreatedAt.Equal(t1) {
		t.Errorf("expected createdAt %v, got %v", t1, o.Meta().CreatedAt)
	}
	if !o.Meta().UpdatedAt.Equal(t1) {
		t.Errorf("expected updatedAt %v, got %v", t1, o.Meta().UpdatedAt)
	}

	// A supplied createdAt is kept for a new entry.
	f := NewFocus("f2", "C", 1)
	f.CreatedAt = t0
	s = s.ApplyAt(f, t2)
	o, _ = s.Get("f2")
	if !o.Meta().CreatedAt.Equal(t0) {
		t.Errorf("expected incoming createdAt %v, got %v", t0, o.Meta().CreatedAt)
	}
	if !o.Meta().UpdatedAt.Equal(t2) {
		t.Errorf("expected updatedAt %v, got %v", t2, o.Meta().UpdatedAt)
	}
}

func TestApply_UpdatePreservesCreatedAt(t *testing.T) {
	first := NewFocus("f1", "B", 1)
	first.CreatedAt = t0
	s := NewState().ApplyAt(first, t0)

	second := NewFocus("f1", "C", 2)
	second.CreatedAt = t2 // ignored: the stored entry wins
	s = s.ApplyAt(second, t1)

	o, ok := s.Get("f1")
	if !ok {
		t.Fatal("expected f1 to exist")
	}
	if !o.Meta().CreatedAt.Equal(t0) {
		t.Errorf("expected createdAt %v preserved, got %v", t0, o.Meta().CreatedAt)
	}
	if !o.Meta().UpdatedAt.Equal(t1) {
		t.Errorf("expected updatedAt advanced to %v, got %v", t1, o.Meta().UpdatedAt)
	}
	if f := o.(Focus); f.TargetNodeID != "C" || f.Depth != 2 {
		t.Errorf("expected payload replaced, got %+v", f)
	}
	if s.Len() != 1 {
		t.Errorf("expected one entry after update, got %d", s.Len())
	}
}

func TestApply_UsesClock(t *testing.T) {
	prev := now
	defer func() { now = prev }()

	tick := t0
	now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	s := NewState().Apply(NewFocus("f1", "B", 1))
	s = s.Apply(NewFocus("f1", "B", 2))
	o, _ := s.Get("f1")
	if !o.Meta().UpdatedAt.After(o.Meta().CreatedAt) {
		t.Errorf("expected updatedAt after createdAt, got %v <= %v", o.Meta().UpdatedAt, o.Meta().CreatedAt)
	}
}

func TestApply_PassesCorrelationID(t *testing.T) {
	f := NewFocus("f1", "B", 1)
	f.CorrelationID = "req-42"
	s := NewState().ApplyAt(f, t0)
	o, _ := s.Get("f1")
	if o.Meta().CorrelationID != "req-42" {
		t.Errorf("expected correlation id passed through, got %q", o.Meta().CorrelationID)
	}
}

func TestApply_NilOverlayIsNoop(t *testing.T) {
	s := NewState()
	if got := s.Apply(nil); got != s {
		t.Error("expected same state for nil overlay")
	}
}

func TestApply_KeepsInsertionOrder(t *testing.T) {
	s := NewState().
		ApplyAt(NewHeatmap("h1", nil), t0).
		ApplyAt(NewFocus("f1", "A", 1), t0).
		ApplyAt(NewImpact("i1", "A", nil, nil), t0)

	// Replacing f1 keeps its slot.
	s = s.ApplyAt(NewFocus("f1", "B", 1), t1)

	want := []string{"h1", "f1", "i1"}
	if got := s.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
	kinds := make([]Kind, 0, 3)
	for _, o := range s.Overlays() {
		kinds = append(kinds, o.Kind())
	}
	if !reflect.DeepEqual(kinds, []Kind{KindHeatmap, KindFocus, KindImpact}) {
		t.Errorf("unexpected kinds order: %v", kinds)
	}
}

func TestClear(t *testing.T) {
	s1 := NewState().
		ApplyAt(NewFocus("f1", "A", 1), t0).
		ApplyAt(NewHeatmap("h1", nil), t0)

	s2 := s1.Clear("f1")
	if s2 == s1 {
		t.Fatal("expected a new state when clearing an existing id")
	}
	if _, ok := s2.Get("f1"); ok {
		t.Error("expected f1 removed")
	}
	if _, ok := s1.Get("f1"); !ok {
		t.Error("original state must still hold f1")
	}
	if !reflect.DeepEqual(s2.IDs(), []string{"h1"}) {
		t.Errorf("expected [h1], got %v", s2.IDs())
	}
}

func TestClear_MissingIDReturnsSameState(t *testing.T) {
	s := NewState().ApplyAt(NewFocus("f1", "A", 1), t0)
	if got := s.Clear("nope"); got != s {
		t.Error("expected identical state pointer for a missing id")
	}

	empty := NewState()
	if got := empty.Clear("f1"); got != empty {
		t.Error("expected identical state pointer on empty state")
	}
}

func TestNilState(t *testing.T) {
	var s *State
	if s.Len() != 0 || s.IDs() != nil || s.Overlays() != nil {
		t.Error("nil state should be empty")
	}
	if s.Clear("x") != nil {
		t.Error("clearing a nil state should return nil")
	}
	next := s.ApplyAt(NewFocus("f1", "A", 0), t0)
	if next.Len() != 1 {
		t.Errorf("expected apply on nil state to produce 1 entry, got %d", next.Len())
	}
}
