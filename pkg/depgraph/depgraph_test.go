package depgraph

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/viewport"
)

func generation(t *testing.T) *layout.Generation {
	t.Helper()
	c := &chart.Chart{
		Rows: []chart.Row{
			{ID: "design", Label: "Design", Tasks: []chart.Task{
				{ID: "spec", Label: "Write spec", Start: chart.At(0), End: chart.At(86_400_000)},
				{ID: "idle", Start: chart.At(0), End: chart.At(1)},
			}},
			{ID: "impl", Tasks: []chart.Task{{ID: "code", Start: chart.At(86_400_000), End: chart.At(172_800_000)}}},
			{ID: "launch", Tasks: []chart.Task{{ID: "go-live", Start: chart.At(172_800_000), End: chart.At(172_800_000)}}},
		},
		Dependencies: []chart.Dependency{
			{ID: "d1", PredecessorTaskID: "spec", SuccessorTaskID: "code"},
			{ID: "d2", PredecessorTaskID: "code", SuccessorTaskID: "go-live", Type: chart.FinishFinish},
		},
	}
	g, err := layout.Build(c, layout.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	g := generation(t)

	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "default",
			want: []string{
				`subgraph "cluster_design"`,
				`label="Design";`,
				`"spec" [label="Write spec"];`,
				`"go-live" [label="go-live", shape=diamond`,
				`"spec" -> "code" [tooltip="d1 (finish-start)"];`,
				`"code" -> "go-live" [tooltip="d2 (finish-finish)", style=dashed];`,
			},
			notWant: []string{`"idle"`},
		},
		{
			name: "isolated tasks",
			opts: Options{Isolated: true},
			want: []string{`"idle" [label="idle"];`},
		},
		{
			name: "detailed labels",
			opts: Options{Detailed: true},
			want: []string{`1970-01-02T00:00:00.000Z → 1970-01-03T00:00:00.000Z\nlane 0`},
		},
		{
			name:    "window",
			opts:    Options{Range: &viewport.Range{Min: 2, Max: 2}},
			want:    []string{`"code" -> "go-live"`},
			notWant: []string{`"spec" -> "code"`, `cluster_design`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(g, tt.opts)
			for _, s := range tt.want {
				if !strings.Contains(dot, s) {
					t.Errorf("DOT missing %s\n%s", s, dot)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(dot, s) {
					t.Errorf("DOT should not contain %s\n%s", s, dot)
				}
			}
		})
	}

	if dot := ToDOT(nil, Options{}); !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("nil generation DOT = %q", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites root",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{name: "no viewBox", in: `<svg><g/></svg>`, want: `<svg><g/></svg>`},
		{name: "zero size", in: `<svg viewBox="0 0 0 10"></svg>`, want: `<svg viewBox="0 0 0 10"></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(generation(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("unexpected SVG root: %.200s", svg)
	}

	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("malformed DOT should fail")
	}
}
