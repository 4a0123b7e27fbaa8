// Package depgraph exports the task dependency graph of a layout generation
// as Graphviz DOT and renders it to SVG.
//
// Tasks become nodes grouped into one cluster per row, in row order.
// Dependencies become edges; start-start and finish-finish links are drawn
// dashed, start-finish links dotted.
package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/viewport"
)

// Options configures DOT export.
type Options struct {
	// Detailed adds time spans and lanes to node labels.
	Detailed bool
	// Isolated keeps tasks that take part in no dependency.
	Isolated bool
	// Range limits the export to the dependencies crossing a row window.
	Range *viewport.Range
}

// ToDOT converts the dependencies of g to DOT.
func ToDOT(g *layout.Generation, opts Options) string {
	var deps []*layout.DependencyLayout
	if g != nil {
		deps = g.Dependencies
		if opts.Range != nil {
			deps = viewport.FindVisibleDependencies(g, *opts.Range)
		}
	}

	linked := make(map[*layout.TaskLayout]bool, 2*len(deps))
	for _, d := range deps {
		linked[d.Predecessor] = true
		linked[d.Successor] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")

	if g != nil {
		for _, row := range g.Rows {
			var tasks []*layout.TaskLayout
			for _, t := range row.Tasks {
				if opts.Isolated || linked[t] {
					tasks = append(tasks, t)
				}
			}
			if len(tasks) == 0 {
				continue
			}
			fmt.Fprintf(&buf, "\n  subgraph %q {\n", "cluster_"+row.ID)
			fmt.Fprintf(&buf, "    label=%q;\n", row.Label())
			buf.WriteString("    style=\"rounded\";\n    color=grey;\n")
			for _, t := range tasks {
				fmt.Fprintf(&buf, "    %q [%s];\n", t.ID, strings.Join(nodeAttrs(t, opts.Detailed), ", "))
			}
			buf.WriteString("  }\n")
		}
	}

	if len(deps) > 0 {
		buf.WriteString("\n")
	}
	for _, d := range deps {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", d.Predecessor.ID, d.Successor.ID, strings.Join(edgeAttrs(d), ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(t *layout.TaskLayout, detailed bool) []string {
	label := t.ID
	if t.Data != nil && t.Data.Label != "" {
		label = t.Data.Label
	}
	if detailed {
		span := t.Overall
		if t.Actual.Valid {
			span = t.Actual
		}
		label += fmt.Sprintf("\n%s → %s\nlane %d", chart.Time(span.Start), chart.Time(span.End), t.Lane)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if t.Milestone {
		attrs = append(attrs, "shape=diamond", "style=filled", "fillcolor=lightgrey")
	}
	return attrs
}

func edgeAttrs(d *layout.DependencyLayout) []string {
	attrs := []string{fmt.Sprintf("tooltip=%q", d.ID+" ("+string(d.Type)+")")}
	switch d.Type {
	case layout.StartStart, layout.FinishFinish:
		attrs = append(attrs, "style=dashed")
	case layout.StartFinish:
		attrs = append(attrs, "style=dotted")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from a
// zero-origin viewBox.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
