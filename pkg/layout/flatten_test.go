package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/timelane/pkg/chart"
)

type flatGeom struct {
	ID       string
	Index    int
	Depth    int
	Parent   int
	Expanded Expansion
}

func flatOf(rows []FlatRow) []flatGeom {
	out := make([]flatGeom, len(rows))
	for i, r := range rows {
		out[i] = flatGeom{r.Row.ID, r.Index, r.Depth, r.ParentIndex, r.Expanded}
	}
	return out
}

func tree() []chart.Row {
	return []chart.Row{
		{ID: "a", Rows: []chart.Row{
			{ID: "a1"},
			{ID: "a2", Rows: []chart.Row{{ID: "a2x"}}},
		}},
		{ID: "b"},
		{ID: "c", Lazy: true},
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		rows     []chart.Row
		expanded KeySet
		want     []flatGeom
	}{
		{
			name: "flat input passes through",
			rows: []chart.Row{{ID: "x"}, {ID: "y"}},
			want: []flatGeom{{"x", 0, 0, -1, Leaf}, {"y", 1, 0, -1, Leaf}},
		},
		{
			name: "nothing expanded",
			rows: tree(),
			want: []flatGeom{{"a", 0, 0, -1, Collapsed}, {"b", 1, 0, -1, Leaf}, {"c", 2, 0, -1, Collapsed}},
		},
		{
			name:     "one level expanded",
			rows:     tree(),
			expanded: NewKeySet("a"),
			want: []flatGeom{
				{"a", 0, 0, -1, Expanded},
				{"a1", 1, 1, 0, Leaf},
				{"a2", 2, 1, 0, Collapsed},
				{"b", 3, 0, -1, Leaf},
				{"c", 4, 0, -1, Collapsed},
			},
		},
		{
			name:     "nested expanded",
			rows:     tree(),
			expanded: NewKeySet("a", "a2"),
			want: []flatGeom{
				{"a", 0, 0, -1, Expanded},
				{"a1", 1, 1, 0, Leaf},
				{"a2", 2, 1, 0, Expanded},
				{"a2x", 3, 2, 2, Leaf},
				{"b", 4, 0, -1, Leaf},
				{"c", 5, 0, -1, Collapsed},
			},
		},
		{
			name:     "child expanded under collapsed parent stays hidden",
			rows:     tree(),
			expanded: NewKeySet("a2"),
			want:     []flatGeom{{"a", 0, 0, -1, Collapsed}, {"b", 1, 0, -1, Leaf}, {"c", 2, 0, -1, Collapsed}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expanded := tt.expanded
			if expanded == nil {
				expanded = KeySet{}
			}
			got := flatOf(Flatten(tt.rows, expanded, nil))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlattenLazyRows(t *testing.T) {
	src := chart.NewLazySource()
	src.Defer("c", []chart.Row{{ID: "c1"}})
	rows := tree()
	expanded := NewKeySet("c", "b")

	got := flatOf(Flatten(rows, expanded, src))
	if got[2].Expanded != Collapsed || len(got) != 3 {
		t.Fatalf("unloaded lazy row should stay collapsed, got %+v", got)
	}

	src.Load("c")
	got = flatOf(Flatten(rows, expanded, src))
	want := []flatGeom{{"a", 0, 0, -1, Collapsed}, {"b", 1, 0, -1, Leaf}, {"c", 2, 0, -1, Expanded}, {"c1", 3, 1, 2, Leaf}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loaded lazy row mismatch (-want +got):\n%s", diff)
	}

	empty := []chart.Row{{ID: "e", Lazy: true}}
	src.Load("e")
	if got := Flatten(empty, KeySet{}, src); got[0].Expanded != Leaf {
		t.Errorf("known-empty lazy row = %v, want leaf", got[0].Expanded)
	}
}

func TestFlattenDeterministicAndNonMutating(t *testing.T) {
	rows := tree()
	before := cmp.Diff(tree(), rows)
	a := flatOf(Flatten(rows, NewKeySet("a", "a2"), nil))
	b := flatOf(Flatten(rows, NewKeySet("a", "a2"), nil))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Flatten not deterministic:\n%s", diff)
	}
	if after := cmp.Diff(tree(), rows); after != before {
		t.Errorf("Flatten mutated input:\n%s", after)
	}
}

func TestFlattenChildrenOffsets(t *testing.T) {
	rows := tree()
	got := flatOf(flattenChildren(&rows[0], 7, 1, 8, NewKeySet("a2"), nil))
	want := []flatGeom{{"a1", 8, 1, 7, Leaf}, {"a2", 9, 1, 7, Expanded}, {"a2x", 10, 2, 9, Leaf}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flattenChildren mismatch (-want +got):\n%s", diff)
	}
}
