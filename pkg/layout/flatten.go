package layout

import (
	"slices"

	"github.com/matzehuels/timelane/pkg/chart"
)

// KeySet is a set of row ids.
type KeySet map[string]struct{}

// NewKeySet builds a set from ids.
func NewKeySet(ids ...string) KeySet {
	s := make(KeySet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s KeySet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s KeySet) Add(id string)    { s[id] = struct{}{} }
func (s KeySet) Remove(id string) { delete(s, id) }

// Clone returns an independent copy.
func (s KeySet) Clone() KeySet {
	c := make(KeySet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Sorted returns the ids in ascending order.
func (s KeySet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for k := range s {
		ids = append(ids, k)
	}
	slices.Sort(ids)
	return ids
}

// FlatRow is one entry of a flattened row sequence.
type FlatRow struct {
	Row         *chart.Row
	Index       int
	Depth       int
	ParentIndex int
	Expanded    Expansion
}

// Flatten walks the row tree in pre-order. Children follow their parent only
// when the parent's id is in expanded. Caller-owned records are referenced,
// never modified. The row tree must be acyclic.
func Flatten(rows []chart.Row, expanded KeySet, src chart.ChildSource) []FlatRow {
	if isFlat(rows) {
		out := make([]FlatRow, len(rows))
		for i := range rows {
			out[i] = FlatRow{Row: &rows[i], Index: i, ParentIndex: -1, Expanded: Leaf}
		}
		return out
	}
	return flattenInto(nil, rows, 0, -1, 0, expanded, src)
}

// flattenChildren flattens the subtree below parent, numbering the first
// child base.
func flattenChildren(parent *chart.Row, parentIndex, depth, base int, expanded KeySet, src chart.ChildSource) []FlatRow {
	children, _ := childrenOf(parent, src)
	return flattenInto(nil, children, depth, parentIndex, base, expanded, src)
}

// flattenInto appends rows and their visible descendants to out. Indices are
// offset by base.
func flattenInto(out []FlatRow, rows []chart.Row, depth, parent, base int, expanded KeySet, src chart.ChildSource) []FlatRow {
	for i := range rows {
		row := &rows[i]
		idx := base + len(out)
		children, state := childrenOf(row, src)
		if state == Collapsed && expanded.Has(row.ID) && len(children) > 0 {
			state = Expanded
		}
		out = append(out, FlatRow{Row: row, Index: idx, Depth: depth, ParentIndex: parent, Expanded: state})
		if state == Expanded {
			out = flattenInto(out, children, depth+1, idx, base, expanded, src)
		}
	}
	return out
}

// childrenOf returns a row's children and its expander state when collapsed.
// A lazy row that is not loaded yet keeps its expander; a loaded row without
// children is a leaf.
func childrenOf(row *chart.Row, src chart.ChildSource) ([]chart.Row, Expansion) {
	if len(row.Rows) > 0 {
		return row.Rows, Collapsed
	}
	if !row.Lazy {
		return nil, Leaf
	}
	if src == nil {
		return nil, Collapsed
	}
	children, loaded := src.Children(row.ID)
	if !loaded {
		return nil, Collapsed
	}
	if len(children) == 0 {
		return nil, Leaf
	}
	return children, Collapsed
}

func isFlat(rows []chart.Row) bool {
	for i := range rows {
		if len(rows[i].Rows) > 0 || rows[i].Lazy {
			return false
		}
	}
	return true
}
