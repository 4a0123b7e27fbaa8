package layout

import (
	"slices"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
)

// Direction selects what Patch does to a row.
type Direction int

const (
	Expand Direction = iota
	Collapse
)

func (d Direction) String() string {
	if d == Collapse {
		return "collapse"
	}
	return "expand"
}

// PatchResult lists the rows a patch inserted or removed.
type PatchResult struct {
	Added   []*RowLayout
	Removed []*RowLayout
}

// Patch expands or collapses row in place.
//
// Expand flattens the row's children against the generation's expanded-key
// set, lays them out, and splices them in after the row. Collapse cuts the
// contiguous block of deeper rows following it. Rows below the mutation are
// reindexed and restacked, parent indices are shifted, and dependency
// objects are rebuilt. The result matches a full Build with the same
// expanded-key set.
//
// Inserted rows and their tasks are tagged add; removed ones delete. Expanding
// a lazy row whose children are not loaded fails with NOT_LOADED; expanding a
// loaded row that turns out to be empty turns it into a leaf.
func Patch(g *Generation, row *RowLayout, dir Direction) (*PatchResult, error) {
	if row == nil || row.Index < 0 || row.Index >= len(g.Rows) || g.Rows[row.Index] != row {
		id := ""
		if row != nil {
			id = row.ID
		}
		return nil, errors.New(errors.ErrCodeRowNotFound, "row %q is not part of this generation", id)
	}
	if g.expanded == nil {
		g.expanded = KeySet{}
	}

	switch dir {
	case Expand:
		return g.expand(row)
	case Collapse:
		return g.collapse(row)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown patch direction %d", dir)
}

func (g *Generation) expand(row *RowLayout) (*PatchResult, error) {
	if row.Expanded != Collapsed {
		return nil, errors.New(errors.ErrCodeInvalidInput, "row %q is %s, not collapsed", row.ID, row.Expanded)
	}
	children, state := childrenOf(row.Data, g.opts.ChildSource)
	if state == Leaf {
		row.Expanded = Leaf
		return &PatchResult{}, nil
	}
	if len(children) == 0 {
		return nil, errors.New(errors.ErrCodeNotLoaded, "children of row %q are not loaded", row.ID)
	}

	g.expanded.Add(row.ID)
	at := row.Index + 1
	flat := flattenChildren(row.Data, row.Index, row.Depth+1, at, g.expanded, g.opts.ChildSource)

	rowIDs := make(map[string]struct{}, len(g.Rows)+len(flat))
	for _, r := range g.Rows {
		rowIDs[r.ID] = struct{}{}
	}
	added, err := g.buildRows(flat, rowIDs, g.taskIDsAbove(at))
	if err != nil {
		g.expanded.Remove(row.ID)
		return nil, err
	}

	n := len(added)
	for _, r := range g.Rows[at:] {
		if r.ParentIndex >= at {
			r.ParentIndex += n
		}
	}
	g.Rows = slices.Insert(g.Rows, at, added...)
	row.Expanded = Expanded

	g.dedupeTasks(at + n)
	g.relayout(at)
	g.linkDependencies()
	return &PatchResult{Added: added}, nil
}

func (g *Generation) collapse(row *RowLayout) (*PatchResult, error) {
	if row.Expanded != Expanded {
		return nil, errors.New(errors.ErrCodeInvalidInput, "row %q is %s, not expanded", row.ID, row.Expanded)
	}
	at := row.Index + 1
	end := at
	for end < len(g.Rows) && g.Rows[end].Depth > row.Depth {
		end++
	}
	removed := slices.Clone(g.Rows[at:end])
	for _, r := range removed {
		r.State = StateDelete
		for _, t := range r.Tasks {
			t.State = StateDelete
		}
	}

	n := end - at
	g.Rows = slices.Delete(g.Rows, at, end)
	for _, r := range g.Rows[at:] {
		if r.ParentIndex >= end {
			r.ParentIndex -= n
		}
	}
	row.Expanded = Collapsed
	g.expanded.Remove(row.ID)

	g.dedupeTasks(at)
	g.relayout(at)
	g.linkDependencies()
	return &PatchResult{Removed: removed}, nil
}

// taskIDsAbove returns the ids of the tasks kept by the rows before index at.
func (g *Generation) taskIDsAbove(at int) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, r := range g.Rows[:at] {
		for _, t := range r.Tasks {
			ids[t.ID] = struct{}{}
		}
	}
	return ids
}

// dedupeTasks reapplies first-occurrence task id dedupe to the rows from
// index from onward. Inserting rows can claim an id a row below kept, and
// removing rows can free one it dropped; such rows are rebuilt. The discard
// count is recomputed for the whole generation.
func (g *Generation) dedupeTasks(from int) {
	seen := g.taskIDsAbove(from)
	for i := from; i < len(g.Rows); i++ {
		r := g.Rows[i]
		if r.Data == nil {
			continue
		}
		var want []string
		for j := range r.Data.Tasks {
			tr := &r.Data.Tasks[j]
			if _, dup := seen[tr.ID]; dup || !hasSpan(tr) {
				continue
			}
			seen[tr.ID] = struct{}{}
			want = append(want, tr.ID)
		}
		if keepsExactly(r, want) {
			continue
		}
		for _, id := range want {
			delete(seen, id)
		}
		g.Rows[i] = g.buildRow(FlatRow{
			Row:         r.Data,
			Index:       r.Index,
			Depth:       r.Depth,
			ParentIndex: r.ParentIndex,
			Expanded:    r.Expanded,
		}, seen)
	}

	g.Discarded.Tasks = 0
	for _, r := range g.Rows {
		if r.Data != nil {
			g.Discarded.Tasks += len(r.Data.Tasks) - len(r.Tasks)
		}
	}
}

func keepsExactly(r *RowLayout, ids []string) bool {
	if len(r.Tasks) != len(ids) {
		return false
	}
	for _, t := range r.Tasks {
		if !slices.Contains(ids, t.ID) {
			return false
		}
	}
	return true
}

func hasSpan(rec *chart.Task) bool {
	if SpanOf(rec.Start, rec.End).Valid {
		return true
	}
	return rec.Baseline != nil && SpanOf(rec.Baseline.Start, rec.Baseline.End).Valid
}
