package layout

import (
	"sort"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
)

// Build runs a full layout pass over c.
//
// Rows are flattened against the union of c.Expanded and opts.Expanded.
// Tasks without any time span are left out, as are later tasks repeating an
// id; both are counted in Generation.Discarded. Repeated row ids are an
// error because row identity drives expansion and diffing.
func Build(c *chart.Chart, opts Options) (*Generation, error) {
	r, err := opts.Resolve()
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &chart.Chart{}
	}

	g := &Generation{
		opts:     r,
		expanded: NewKeySet(c.Expanded...),
		records:  c.Dependencies,
	}
	for _, id := range opts.Expanded {
		g.expanded.Add(id)
	}

	flat := Flatten(c.Rows, g.expanded, r.ChildSource)
	rows, err := g.buildRows(flat, make(map[string]struct{}, len(flat)), make(map[string]struct{}))
	if err != nil {
		return nil, err
	}
	g.Rows = rows
	g.relayout(0)
	g.linkDependencies()
	return g, nil
}

// buildRows lays out flattened rows, recording their ids in rowIDs and the
// ids of kept tasks in taskIDs.
func (g *Generation) buildRows(flat []FlatRow, rowIDs, taskIDs map[string]struct{}) ([]*RowLayout, error) {
	rows := make([]*RowLayout, 0, len(flat))
	for _, fr := range flat {
		if _, dup := rowIDs[fr.Row.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate row id %q", fr.Row.ID)
		}
		rowIDs[fr.Row.ID] = struct{}{}
		rows = append(rows, g.buildRow(fr, taskIDs))
	}
	return rows, nil
}

func (g *Generation) buildRow(fr FlatRow, taskIDs map[string]struct{}) *RowLayout {
	rec := fr.Row
	row := &RowLayout{
		ID:          rec.ID,
		Data:        rec,
		Index:       fr.Index,
		Depth:       fr.Depth,
		Expanded:    fr.Expanded,
		ParentIndex: fr.ParentIndex,
	}

	for i := range rec.Tasks {
		tr := &rec.Tasks[i]
		if _, dup := taskIDs[tr.ID]; dup {
			g.Discarded.Tasks++
			continue
		}
		t := newTask(tr, g.opts)
		if t == nil {
			g.Discarded.Tasks++
			continue
		}
		taskIDs[tr.ID] = struct{}{}
		row.Tasks = append(row.Tasks, t)
	}
	sort.SliceStable(row.Tasks, func(i, j int) bool {
		return row.Tasks[i].sortStart() < row.Tasks[j].sortStart()
	})

	ResolveRow(row, g.opts.RowPolicy(rec))
	TagMilestoneBaselines(row.Tasks)

	if m := g.opts.Mapper; m != nil {
		for _, t := range row.Tasks {
			t.X = m.Position(t.Overall.Start)
			t.Width = m.Position(t.Overall.End) - t.X
		}
	}
	return row
}
