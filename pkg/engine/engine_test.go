package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/observability"
	"github.com/matzehuels/timelane/pkg/viewport"
)

func task(id string, start, end int64) chart.Task {
	return chart.Task{ID: id, Start: chart.At(start), End: chart.At(end)}
}

func project() *chart.Chart {
	return &chart.Chart{
		Rows: []chart.Row{
			{ID: "plan", Tasks: []chart.Task{task("scope", 0, 10)}},
			{ID: "build", Tasks: []chart.Task{task("api", 10, 30)}, Rows: []chart.Row{
				{ID: "backend", Tasks: []chart.Task{task("db", 10, 20)}},
				{ID: "frontend", Tasks: []chart.Task{task("ui", 15, 30)}},
			}},
			{ID: "ship", Tasks: []chart.Task{task("release", 30, 30)}},
		},
		Dependencies: []chart.Dependency{
			{ID: "scope-api", PredecessorTaskID: "scope", SuccessorTaskID: "api"},
			{ID: "db-ui", PredecessorTaskID: "db", SuccessorTaskID: "ui"},
			{ID: "api-release", PredecessorTaskID: "api", SuccessorTaskID: "release"},
		},
	}
}

// counter hands out sequential handles and remembers what it materialized.
type counter struct {
	n    int
	seen []string
}

func (c *counter) Materialize(obj layout.Object) (any, error) {
	c.n++
	c.seen = append(c.seen, obj.Kind().String()+":"+obj.ObjectID())
	return fmt.Sprintf("h%d", c.n), nil
}

func rowIDs(g *layout.Generation) []string {
	var ids []string
	for _, r := range g.Rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestUpdateRetainsAndDiffs(t *testing.T) {
	e := New(layout.DefaultOptions())
	if got := e.FindRowRange(0, 100); got != viewport.NoData {
		t.Errorf("FindRowRange before Update = %+v, want NoData", got)
	}

	res, err := e.Update(project())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Rows.Add != 3 || res.Tasks.Add != 3 {
		t.Errorf("first update counts rows=%+v tasks=%+v", res.Rows, res.Tasks)
	}
	first := e.Current()

	next := project()
	next.Rows = next.Rows[1:]
	next.Rows[0].Tasks = append(next.Rows[0].Tasks, task("scope", 0, 10))
	res, err = e.Update(next)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff([]string{"plan"}, res.IDs(layout.KindRow, layout.StateDelete)); diff != "" {
		t.Errorf("deleted rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"scope"}, res.IDs(layout.KindTask, layout.StateMigrate)); diff != "" {
		t.Errorf("migrated tasks mismatch (-want +got):\n%s", diff)
	}
	if e.Current() == first || e.LastDiff() != res {
		t.Error("Update should retain the new generation and its diff")
	}
}

func TestUpdateReleasesSupersededGenerations(t *testing.T) {
	e := New(layout.DefaultOptions())
	for i := 0; i < 5; i++ {
		if _, err := e.Update(project()); err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
	}
	if _, err := e.PatchExpandCollapse("build", layout.Expand); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}

	g := e.Current()
	row, task, dep := g.Rows[0], g.Rows[0].Tasks[0], g.Dependencies[0]
	if row.Old == nil || row.Old.Old != nil {
		t.Errorf("row %s keeps more than its direct predecessor", row.ID)
	}
	if task.Old == nil || task.Old.Old != nil {
		t.Errorf("task %s keeps more than its direct predecessor", task.ID)
	}
	if dep.Old == nil || dep.Old.Old != nil {
		t.Errorf("dependency %s keeps more than its direct predecessor", dep.ID)
	}

	next := project()
	next.Rows = next.Rows[1:]
	res, err := e.Update(next)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.DeletedRows) != 1 || res.DeletedRows[0].Old != nil {
		t.Errorf("deleted rows = %d, should not link to older generations", len(res.DeletedRows))
	}
}

func TestUpdateKeepsExpansionState(t *testing.T) {
	c := project()
	c.Expanded = []string{"build"}
	e := New(layout.DefaultOptions())
	if _, err := e.Update(c); err != nil {
		t.Fatal(err)
	}
	if got := len(e.Current().Rows); got != 5 {
		t.Fatalf("rows = %d, want 5 with build expanded", got)
	}

	if _, err := e.PatchExpandCollapse("build", layout.Collapse); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if _, err := e.Update(c); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"plan", "build", "ship"}, rowIDs(e.Current())); diff != "" {
		t.Errorf("refresh undid the collapse (-want +got):\n%s", diff)
	}

	e.Reset()
	if _, err := e.Update(c); err != nil {
		t.Fatal(err)
	}
	if got := len(e.Current().Rows); got != 5 {
		t.Errorf("after Reset the chart's expanded list applies again, rows = %d", got)
	}
}

func TestPatchExpandCollapse(t *testing.T) {
	mat := &counter{}
	e := New(layout.DefaultOptions(), WithMaterializer(mat))
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.MaterializeRange(viewport.Range{Min: 0, Max: 2}); err != nil {
		t.Fatal(err)
	}
	shipHandle := e.Current().Row("ship").Handle()
	oldDep := e.Current().Dependencies[0]
	oldDepHandle := oldDep.Handle()

	res, err := e.PatchExpandCollapse("build", layout.Expand)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if diff := cmp.Diff([]string{"backend", "frontend"}, res.IDs(layout.KindRow, layout.StateAdd)); diff != "" {
		t.Errorf("added rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"db-ui"}, res.IDs(layout.KindDependency, layout.StateAdd)); diff != "" {
		t.Errorf("added dependencies mismatch (-want +got):\n%s", diff)
	}
	if got := e.Current().Row("ship").Handle(); got != shipHandle {
		t.Errorf("ship handle = %v, want %v kept across the patch", got, shipHandle)
	}
	if nd := e.Current().Dependencies; oldDepHandle != nil {
		var found bool
		for _, d := range nd {
			if d.ID == oldDep.ID && d.Handle() == oldDepHandle {
				found = true
			}
		}
		if !found || oldDep.Handle() != nil {
			t.Error("rebuilt dependency objects should take over the old handles")
		}
	}

	fresh := New(layout.DefaultOptions())
	c := project()
	c.Expanded = []string{"build"}
	if _, err := fresh.Update(c); err != nil {
		t.Fatal(err)
	}
	for i, r := range e.Current().Rows {
		want := fresh.Current().Rows[i]
		if r.ID != want.ID || r.Y != want.Y || r.Height != want.Height {
			t.Errorf("row %d: patched %s y=%v h=%v, full build %s y=%v h=%v",
				i, r.ID, r.Y, r.Height, want.ID, want.Y, want.Height)
		}
	}

	res, err = e.PatchExpandCollapse("build", layout.Collapse)
	if err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if diff := cmp.Diff([]string{"backend", "frontend"}, res.IDs(layout.KindRow, layout.StateDelete)); diff != "" {
		t.Errorf("deleted rows mismatch (-want +got):\n%s", diff)
	}
}

func TestToggle(t *testing.T) {
	e := New(layout.DefaultOptions())
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Toggle("build"); err != nil {
		t.Fatal(err)
	}
	if got := e.Current().Row("build").Expanded; got != layout.Expanded {
		t.Errorf("after first toggle = %v, want expanded", got)
	}
	if _, err := e.Toggle("build"); err != nil {
		t.Fatal(err)
	}
	if got := e.Current().Row("build").Expanded; got != layout.Collapsed {
		t.Errorf("after second toggle = %v, want collapsed", got)
	}
}

func TestPatchErrors(t *testing.T) {
	e := New(layout.DefaultOptions())
	if _, err := e.PatchExpandCollapse("build", layout.Expand); !errors.Is(err, errors.ErrCodeRowNotFound) {
		t.Errorf("patch before layout = %v, want ROW_NOT_FOUND", err)
	}
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		row  string
		dir  layout.Direction
		code errors.Code
	}{
		{"unknown row", "nope", layout.Expand, errors.ErrCodeRowNotFound},
		{"expand leaf", "plan", layout.Expand, errors.ErrCodeInvalidInput},
		{"collapse collapsed", "build", layout.Collapse, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.PatchExpandCollapse(tt.row, tt.dir); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEnsureMaterialized(t *testing.T) {
	e := New(layout.DefaultOptions())
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}
	row := e.Current().Row("plan")
	if err := e.EnsureMaterialized(row); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("without materializer = %v, want UNSUPPORTED", err)
	}

	mat := &counter{}
	e = New(layout.DefaultOptions(), WithMaterializer(mat))
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}
	row = e.Current().Row("plan")
	for i := 0; i < 3; i++ {
		if err := e.EnsureMaterialized(row); err != nil {
			t.Fatal(err)
		}
	}
	if mat.n != 1 || row.Handle() != "h1" {
		t.Errorf("materializer calls = %d, handle = %v; want one call", mat.n, row.Handle())
	}

	for _, obj := range []layout.Object{nil, (*layout.RowLayout)(nil), (*layout.TaskLayout)(nil), (*layout.DependencyLayout)(nil)} {
		if err := e.EnsureMaterialized(obj); err != nil {
			t.Errorf("EnsureMaterialized(%T) = %v, want nil", obj, err)
		}
	}
	if mat.n != 1 {
		t.Errorf("nil objects reached the materializer, calls = %d", mat.n)
	}

	failing := New(layout.DefaultOptions(), WithMaterializer(MaterializerFunc(func(layout.Object) (any, error) {
		return nil, fmt.Errorf("canvas gone")
	})))
	if _, err := failing.Update(project()); err != nil {
		t.Fatal(err)
	}
	if err := failing.EnsureMaterialized(failing.Current().Rows[0]); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("failing materializer = %v, want INTERNAL_ERROR", err)
	}
}

func TestMaterializeRange(t *testing.T) {
	mat := &counter{}
	e := New(layout.DefaultOptions(), WithMaterializer(mat))
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}

	n, err := e.MaterializeRange(viewport.Range{Min: 0, Max: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"row:plan", "task:scope", "row:build", "task:api", "dependency:scope-api", "dependency:api-release"}
	if diff := cmp.Diff(want, mat.seen); diff != "" {
		t.Errorf("materialized objects mismatch (-want +got):\n%s", diff)
	}
	if n != len(want) {
		t.Errorf("created = %d, want %d", n, len(want))
	}

	if n, _ := e.MaterializeRange(viewport.Range{Min: 0, Max: 1}); n != 0 {
		t.Errorf("second pass created %d handles, want 0", n)
	}
	if n, _ := e.MaterializeRange(viewport.NoData); n != 0 {
		t.Errorf("empty range created %d handles", n)
	}

	tests := []struct {
		name string
		r    viewport.Range
		want int
	}{
		{name: "past the last row", r: viewport.Range{Min: 10, Max: 12}, want: 0},
		{name: "overhanging the last row", r: viewport.Range{Min: 2, Max: 8}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := e.MaterializeRange(tt.r)
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.want {
				t.Errorf("created = %d, want %d", n, tt.want)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopEngineHooks
	layouts []observability.LayoutStats
	patches []string
	diffs   int
}

func (h *recordingHooks) OnLayout(s observability.LayoutStats, _ time.Duration, _ error) {
	h.layouts = append(h.layouts, s)
}

func (h *recordingHooks) OnDiff(int, int, time.Duration) { h.diffs++ }

func (h *recordingHooks) OnPatch(row, dir string, added, removed int, _ time.Duration, err error) {
	h.patches = append(h.patches, fmt.Sprintf("%s %s +%d -%d err=%v", dir, row, added, removed, err != nil))
}

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	e := New(layout.DefaultOptions(), WithHooks(h))
	if _, err := e.Update(project()); err != nil {
		t.Fatal(err)
	}
	_, _ = e.PatchExpandCollapse("build", layout.Expand)
	_, _ = e.PatchExpandCollapse("plan", layout.Expand)

	if len(h.layouts) != 1 || h.layouts[0].Rows != 3 || h.layouts[0].Dependencies != 2 {
		t.Errorf("layout stats = %+v", h.layouts)
	}
	if h.diffs != 2 {
		t.Errorf("diffs = %d, want 2 (update and successful patch)", h.diffs)
	}
	want := []string{"expand build +2 -0 err=false", "expand plan +0 -0 err=true"}
	if diff := cmp.Diff(want, h.patches); diff != "" {
		t.Errorf("patch events mismatch (-want +got):\n%s", diff)
	}
}
