package layout

import (
	"sort"
)

// linkDependencies rebuilds the dependency objects from the generation's
// dependency records and current tasks.
//
// Valid arcs are first sorted by top row and chained through PrevTop and
// NextTop, then re-sorted by bottom row and indexed. The chain lives on the
// objects, so it survives the second sort.
func (g *Generation) linkDependencies() {
	g.Dependencies = nil
	g.TopHead = nil
	g.MaxSpan = 0
	g.Discarded.Dependencies = 0
	if len(g.records) == 0 {
		return
	}

	tasks := make(map[string]*TaskLayout)
	for _, r := range g.Rows {
		for _, t := range r.Tasks {
			tasks[t.ID] = t
		}
	}

	seen := make(map[string]struct{}, len(g.records))
	deps := make([]*DependencyLayout, 0, len(g.records))
	for i := range g.records {
		rec := &g.records[i]
		typ, ok := ParseDependencyType(rec.Type)
		pred, succ := tasks[rec.PredecessorTaskID], tasks[rec.SuccessorTaskID]
		_, dup := seen[rec.ID]
		if !ok || pred == nil || succ == nil || pred == succ || dup {
			g.Discarded.Dependencies++
			continue
		}
		seen[rec.ID] = struct{}{}

		top, bottom := pred.Row, succ.Row
		if top.Index > bottom.Index {
			top, bottom = bottom, top
		}
		deps = append(deps, &DependencyLayout{
			ID:          rec.ID,
			Data:        rec,
			Type:        typ,
			Predecessor: pred,
			Successor:   succ,
			Top:         top,
			Bottom:      bottom,
		})
	}
	if len(deps) == 0 {
		return
	}

	sort.SliceStable(deps, func(i, j int) bool { return deps[i].Top.Index < deps[j].Top.Index })
	for i, d := range deps {
		if i > 0 {
			d.PrevTop = deps[i-1]
		}
		if i < len(deps)-1 {
			d.NextTop = deps[i+1]
		}
	}
	g.TopHead = deps[0]

	sort.SliceStable(deps, func(i, j int) bool { return deps[i].Bottom.Index < deps[j].Bottom.Index })
	for i, d := range deps {
		d.Index = i
		g.MaxSpan = max(g.MaxSpan, d.Span())
	}
	g.Dependencies = deps
}
