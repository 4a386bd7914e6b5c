package testutil

import (
	"reflect"
	"sort"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/xXValhallaCoderXx/ide-constellation-sub003/pkg/model"
)

// AssertNodeIDs verifies that nodes carry exactly the expected ids, in any
// order.
func AssertNodeIDs(t *testing.T, nodes []model.Node, expected ...string) {
	t.Helper()
	got := make([]string, len(nodes))
	for i, n := range nodes {
		got[i] = n.ID
	}
	assertSameStrings(t, "node ids", got, expected)
}

// AssertEdgeKeys verifies that edges carry exactly the expected keys (see
// model.Edge.Key), in any order.
func AssertEdgeKeys(t *testing.T, edges []model.Edge, expected ...string) {
	t.Helper()
	got := make([]string, len(edges))
	for i, e := range edges {
		got[i] = e.Key()
	}
	assertSameStrings(t, "edge keys", got, expected)
}

// AssertSetEquals verifies an id set against an expected list.
func AssertSetEquals(t *testing.T, set model.IDSet, expected ...string) {
	t.Helper()
	assertSameStrings(t, "set", set.Sorted(), expected)
}

// AssertNoDanglingEdges verifies that every edge has both endpoints among
// nodes.
func AssertNoDanglingEdges(t *testing.T, nodes []model.Node, edges []model.Edge) {
	t.Helper()
	ids := make(model.IDSet, len(nodes))
	for _, n := range nodes {
		ids.Add(n.ID)
	}
	for _, e := range edges {
		if !ids.Has(e.Source) || !ids.Has(e.Target) {
			t.Errorf("dangling edge %s: endpoint missing from node set", e.Key())
		}
	}
}

// AssertNoDuplicateIDs verifies all node ids are unique.
func AssertNoDuplicateIDs(t *testing.T, nodes []model.Node) {
	t.Helper()
	seen := make(map[string]bool)
	for _, n := range nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertJSONEqual compares two values after JSON encoding.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

func assertSameStrings(t *testing.T, what string, got, expected []string) {
	t.Helper()
	got = append([]string(nil), got...)
	expected = append([]string(nil), expected...)
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) == 0 && len(expected) == 0 {
		return
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %s %v, got %v", what, expected, got)
	}
}
