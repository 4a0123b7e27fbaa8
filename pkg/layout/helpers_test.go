package layout

import (
	"github.com/matzehuels/timelane/pkg/chart"
)

func span(id string, start, end int64) chart.Task {
	return chart.Task{ID: id, Start: chart.At(start), End: chart.At(end)}
}

func fptr(v float64) *float64 { return &v }

// testOptions uses round numbers and no padding so expected values are easy
// to read.
func testOptions() Options {
	o := DefaultOptions()
	o.TaskHeight = 20
	o.BaselineHeight = 6
	o.MilestoneBaselineYOffset = 5
	o.TaskPadding = 0
	o.GridlineWidth = 1
	return o
}

func mustResolve(o Options) Resolved {
	r, err := o.Resolve()
	if err != nil {
		panic(err)
	}
	return r
}

// rowOf builds a detached row with the given tasks, ready for ResolveRow.
func rowOf(r Resolved, tasks ...chart.Task) *RowLayout {
	row := &RowLayout{ID: "row", Data: &chart.Row{ID: "row", Tasks: tasks}}
	for i := range row.Data.Tasks {
		if t := newTask(&row.Data.Tasks[i], r); t != nil {
			row.Tasks = append(row.Tasks, t)
		}
	}
	return row
}

type rowGeom struct {
	ID     string
	Index  int
	Y      float64
	Height float64
	Depth  int
	Parent int
	Tasks  []taskGeom
}

type taskGeom struct {
	ID     string
	Lane   int
	Y      float64
	Height float64
}

// geometry projects the positional fields of a generation for comparison.
func geometry(g *Generation) []rowGeom {
	out := make([]rowGeom, 0, len(g.Rows))
	for _, r := range g.Rows {
		rg := rowGeom{ID: r.ID, Index: r.Index, Y: r.Y, Height: r.Height, Depth: r.Depth, Parent: r.ParentIndex}
		for _, t := range r.Tasks {
			rg.Tasks = append(rg.Tasks, taskGeom{ID: t.ID, Lane: t.Lane, Y: t.Y, Height: t.OverallHeight})
		}
		out = append(out, rg)
	}
	return out
}

func depIDs(deps []*DependencyLayout) []string {
	ids := make([]string, len(deps))
	for i, d := range deps {
		ids[i] = d.ID
	}
	return ids
}
