package layout_test

import (
	"fmt"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/layout"
)

func Example() {
	c := &chart.Chart{
		Rows: []chart.Row{
			{ID: "build", Tasks: []chart.Task{
				{ID: "compile", Start: chart.At(0), End: chart.At(40)},
				{ID: "lint", Start: chart.At(10), End: chart.At(30)},
			}},
			{ID: "ship", Tasks: []chart.Task{
				{ID: "release", Start: chart.At(50), End: chart.At(50)},
			}},
		},
		Dependencies: []chart.Dependency{
			{ID: "d1", PredecessorTaskID: "compile", SuccessorTaskID: "release"},
		},
	}

	opts := layout.DefaultOptions()
	opts.Overlap = layout.BehaviorStack
	g, err := layout.Build(c, opts)
	if err != nil {
		panic(err)
	}
	for _, r := range g.Rows {
		fmt.Printf("%s y=%v h=%v lanes=%d\n", r.ID, r.Y, r.Height, r.Lanes)
	}
	for _, d := range g.Dependencies {
		fmt.Printf("%s %s rows %d-%d\n", d.ID, d.Type, d.Top.Index, d.Bottom.Index)
	}
	// Output:
	// build y=0 h=60 lanes=2
	// ship y=61 h=30 lanes=1
	// d1 finish-start rows 0-1
}

func ExamplePatch() {
	c := &chart.Chart{Rows: []chart.Row{
		{ID: "epic", Rows: []chart.Row{{ID: "story-1"}, {ID: "story-2"}}},
		{ID: "backlog"},
	}}
	g, err := layout.Build(c, layout.DefaultOptions())
	if err != nil {
		panic(err)
	}

	res, err := layout.Patch(g, g.Row("epic"), layout.Expand)
	if err != nil {
		panic(err)
	}
	fmt.Println("added:", len(res.Added))
	for _, r := range g.Rows {
		fmt.Println(r.Index, r.ID, r.Depth)
	}
	// Output:
	// added: 2
	// 0 epic 0
	// 1 story-1 1
	// 2 story-2 1
	// 3 backlog 0
}
