package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/timeaxis"
)

func sampleChart() *chart.Chart {
	return &chart.Chart{
		Rows: []chart.Row{
			{ID: "r0", Tasks: []chart.Task{span("c", 20, 30), span("a", 0, 10), span("b", 5, 15)}},
			{ID: "r1", Tasks: []chart.Task{span("d", 0, 5)}},
			{ID: "r2", Rows: []chart.Row{
				{ID: "r2a", Tasks: []chart.Task{span("e", 3, 9)}},
				{ID: "r2b", Tasks: []chart.Task{span("f", 1, 2)}},
			}},
			{ID: "r3", Tasks: []chart.Task{span("g", 8, 12)}},
		},
		Dependencies: []chart.Dependency{
			{ID: "ag", PredecessorTaskID: "a", SuccessorTaskID: "g"},
			{ID: "dg", PredecessorTaskID: "d", SuccessorTaskID: "g", Type: chart.StartStart},
			{ID: "ge", PredecessorTaskID: "g", SuccessorTaskID: "e"},
		},
	}
}

func TestBuildStacksRows(t *testing.T) {
	opts := testOptions()
	opts.Overlap = BehaviorStack
	opts.OverlapOffset = fptr(10)

	g, err := Build(sampleChart(), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []rowGeom{
		{ID: "r0", Index: 0, Y: 0, Height: 30, Parent: -1, Tasks: []taskGeom{{"a", 0, 0, 20}, {"b", 1, 10, 20}, {"c", 0, 0, 20}}},
		{ID: "r1", Index: 1, Y: 31, Height: 20, Parent: -1, Tasks: []taskGeom{{"d", 0, 0, 20}}},
		{ID: "r2", Index: 2, Y: 52, Height: 20, Parent: -1},
		{ID: "r3", Index: 3, Y: 73, Height: 20, Parent: -1, Tasks: []taskGeom{{"g", 0, 0, 20}}},
	}
	if diff := cmp.Diff(want, geometry(g)); diff != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", diff)
	}
	if g.ContentHeight != 93 {
		t.Errorf("ContentHeight = %v, want 93", g.ContentHeight)
	}
	if g.Rows[2].Expanded != Collapsed {
		t.Errorf("r2 expansion = %v, want collapsed", g.Rows[2].Expanded)
	}

	// e sits in the collapsed r2 subtree, so ge is dropped.
	if diff := cmp.Diff([]string{"ag", "dg"}, depIDs(g.Dependencies)); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if g.Discarded.Dependencies != 1 {
		t.Errorf("discarded dependencies = %d, want 1", g.Discarded.Dependencies)
	}
}

func TestBuildInvariants(t *testing.T) {
	c := sampleChart()
	c.Expanded = []string{"r2"}
	g, err := Build(c, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i, r := range g.Rows {
		if r.Index != i {
			t.Errorf("row %s index = %d, want %d", r.ID, r.Index, i)
		}
		if r.Height < 0 {
			t.Errorf("row %s height %v < 0", r.ID, r.Height)
		}
		if i > 0 && r.Y < g.Rows[i-1].Bottom() {
			t.Errorf("row %s overlaps its predecessor", r.ID)
		}
		for j, task := range r.Tasks {
			if task.Y < 0 {
				t.Errorf("task %s y %v < 0", task.ID, task.Y)
			}
			if task.Row != r {
				t.Errorf("task %s has wrong row back-reference", task.ID)
			}
			if j > 0 && r.Tasks[j-1].Actual.Start > task.Actual.Start {
				t.Errorf("row %s tasks out of order at %d", r.ID, j)
			}
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	c := sampleChart()
	c.Expanded = []string{"r2"}
	a, err := Build(c, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(c, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(geometry(a), geometry(b)); diff != "" {
		t.Errorf("repeated Build differs:\n%s", diff)
	}
}

func TestBuildEmpty(t *testing.T) {
	g, err := Build(&chart.Chart{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Rows) != 0 || g.ContentHeight != 0 || len(g.Dependencies) != 0 {
		t.Errorf("empty chart produced %d rows, height %v", len(g.Rows), g.ContentHeight)
	}

	g, err = Build(nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	if len(g.Rows) != 0 {
		t.Errorf("nil chart produced %d rows", len(g.Rows))
	}
}

func TestBuildMilestoneWithBaselineRowHeight(t *testing.T) {
	opts := testOptions()
	c := &chart.Chart{Rows: []chart.Row{{ID: "r", Tasks: []chart.Task{{
		ID:       "m",
		Start:    chart.At(1000),
		End:      chart.At(1000),
		Baseline: &chart.Baseline{Start: chart.At(900), End: chart.At(900)},
	}}}}}

	g, err := Build(c, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	task := g.Rows[0].Tasks[0]
	want := opts.MilestoneBaselineYOffset + max(task.BaselineHeight, task.Height)
	if g.Rows[0].Height != want {
		t.Errorf("row height = %v, want %v", g.Rows[0].Height, want)
	}
}

func TestBuildDiscards(t *testing.T) {
	c := &chart.Chart{
		Rows: []chart.Row{
			{ID: "r0", Tasks: []chart.Task{span("a", 0, 1), {ID: "nospan"}, span("a", 2, 3)}},
			{ID: "r1", Tasks: []chart.Task{span("b", 0, 1)}},
		},
		Dependencies: []chart.Dependency{
			{ID: "ok", PredecessorTaskID: "a", SuccessorTaskID: "b"},
			{ID: "bad-type", PredecessorTaskID: "a", SuccessorTaskID: "b", Type: "sideways"},
			{ID: "missing", PredecessorTaskID: "a", SuccessorTaskID: "zz"},
			{ID: "self", PredecessorTaskID: "a", SuccessorTaskID: "a"},
			{ID: "ok", PredecessorTaskID: "b", SuccessorTaskID: "a"},
		},
	}

	g, err := Build(c, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Discarded.Tasks != 2 {
		t.Errorf("discarded tasks = %d, want 2", g.Discarded.Tasks)
	}
	if g.Discarded.Dependencies != 4 {
		t.Errorf("discarded dependencies = %d, want 4", g.Discarded.Dependencies)
	}
	if len(g.Rows[0].Tasks) != 1 || g.Rows[0].Tasks[0].Actual.Start != 0 {
		t.Error("the first task with a repeated id should win")
	}
	if d := g.Dependencies[0]; d.Type != FinishStart {
		t.Errorf("default dependency type = %s, want finish-start", d.Type)
	}
}

func TestBuildDuplicateRowID(t *testing.T) {
	c := &chart.Chart{Rows: []chart.Row{{ID: "x"}, {ID: "x"}}}
	_, err := Build(c, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate row id error = %v, want INVALID_INPUT", err)
	}
}

func TestBuildRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Overlap = "sideways"
	if _, err := Build(&chart.Chart{}, opts); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("bad behavior error = %v, want INVALID_OPTIONS", err)
	}

	opts = DefaultOptions()
	opts.TaskPadding = -1
	if _, err := Build(&chart.Chart{}, opts); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("negative padding error = %v, want INVALID_OPTIONS", err)
	}
}

func TestBuildDependencyOrders(t *testing.T) {
	rows := make([]chart.Row, 5)
	for i := range rows {
		id := string(rune('a' + i))
		rows[i] = chart.Row{ID: "row-" + id, Tasks: []chart.Task{span(id, 0, 1)}}
	}
	c := &chart.Chart{
		Rows: rows,
		Dependencies: []chart.Dependency{
			{ID: "d-b", PredecessorTaskID: "d", SuccessorTaskID: "b"}, // top 1, bottom 3
			{ID: "a-e", PredecessorTaskID: "a", SuccessorTaskID: "e"}, // top 0, bottom 4
			{ID: "c-d", PredecessorTaskID: "c", SuccessorTaskID: "d"}, // top 2, bottom 3
			{ID: "a-b", PredecessorTaskID: "a", SuccessorTaskID: "b"}, // top 0, bottom 1
		},
	}

	g, err := Build(c, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if diff := cmp.Diff([]string{"a-b", "d-b", "c-d", "a-e"}, depIDs(g.Dependencies)); diff != "" {
		t.Errorf("bottom order mismatch (-want +got):\n%s", diff)
	}
	var top []string
	for d := range g.TopOrder() {
		top = append(top, d.ID)
	}
	if diff := cmp.Diff([]string{"a-e", "a-b", "d-b", "c-d"}, top); diff != "" {
		t.Errorf("top chain mismatch (-want +got):\n%s", diff)
	}
	for i, d := range g.Dependencies {
		if d.Index != i {
			t.Errorf("%s index = %d, want %d", d.ID, d.Index, i)
		}
		if d.Top.Index > d.Bottom.Index {
			t.Errorf("%s top below bottom", d.ID)
		}
	}
	if g.MaxSpan != 4 {
		t.Errorf("MaxSpan = %d, want 4", g.MaxSpan)
	}
	if g.Dependencies[1].Top.ID != "row-b" || g.Dependencies[1].Predecessor.ID != "d" {
		t.Error("d-b should point upward: predecessor d, top row b")
	}
}

func TestBuildHorizontalGeometry(t *testing.T) {
	m, err := timeaxis.NewLinear(0, 100, 1000)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Mapper = m
	c := &chart.Chart{Rows: []chart.Row{{ID: "r", Tasks: []chart.Task{span("a", 10, 30)}}}}

	g, err := Build(c, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	task := g.Rows[0].Tasks[0]
	if task.X != 100 || task.Width != 200 {
		t.Errorf("x, width = %v, %v; want 100, 200", task.X, task.Width)
	}
}
