package layout

import (
	"iter"

	"github.com/matzehuels/timelane/pkg/chart"
)

// Discards counts records a layout pass left out.
type Discards struct {
	// Tasks without any time span, or repeating an earlier task id.
	Tasks int
	// Dependencies with an invalid type, an unresolved or identical
	// endpoint, or a repeated id.
	Dependencies int
}

// Generation is one complete, internally consistent layout snapshot.
type Generation struct {
	// Rows are ordered by Index and therefore by Y.
	Rows []*RowLayout
	// Dependencies are ordered by Bottom.Index.
	Dependencies []*DependencyLayout
	// TopHead starts the chain of dependencies ordered by Top.Index.
	TopHead *DependencyLayout
	// MaxSpan is the largest Bottom.Index - Top.Index of any dependency.
	MaxSpan       int
	ContentHeight float64
	Discarded     Discards

	opts     Resolved
	expanded KeySet
	records  []chart.Dependency
}

// Empty returns a generation with no rows.
func Empty() *Generation {
	return &Generation{expanded: KeySet{}}
}

// Options returns the resolved options the generation was built with.
func (g *Generation) Options() Resolved { return g.opts }

// Expanded returns a copy of the expanded-key set.
func (g *Generation) Expanded() KeySet { return g.expanded.Clone() }

// Row returns the row with the given id, or nil.
func (g *Generation) Row(id string) *RowLayout {
	for _, r := range g.Rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Tasks returns every task in row order.
func (g *Generation) Tasks() []*TaskLayout {
	n := 0
	for _, r := range g.Rows {
		n += len(r.Tasks)
	}
	out := make([]*TaskLayout, 0, n)
	for _, r := range g.Rows {
		out = append(out, r.Tasks...)
	}
	return out
}

// TopOrder iterates dependencies along the top-row chain.
func (g *Generation) TopOrder() iter.Seq[*DependencyLayout] {
	return func(yield func(*DependencyLayout) bool) {
		for d := g.TopHead; d != nil; d = d.NextTop {
			if !yield(d) {
				return
			}
		}
	}
}

// DropPredecessors clears the Old links of every row, task and dependency.
// Once a generation is superseded its own predecessors are unreachable to
// the renderer, and keeping the links would hold every earlier generation
// in memory.
func (g *Generation) DropPredecessors() {
	for _, r := range g.Rows {
		r.Old = nil
		for _, t := range r.Tasks {
			t.Old = nil
		}
	}
	for _, d := range g.Dependencies {
		d.Old = nil
	}
}

// relayout reindexes rows from index from onward and stacks them below
// their predecessor.
func (g *Generation) relayout(from int) {
	gw := g.opts.GridlineWidth
	for i := max(from, 0); i < len(g.Rows); i++ {
		r := g.Rows[i]
		r.Index = i
		if i == 0 {
			r.Y = 0
			continue
		}
		prev := g.Rows[i-1]
		r.Y = prev.Y + prev.Height + gw
	}
	g.ContentHeight = 0
	if n := len(g.Rows); n > 0 {
		g.ContentHeight = g.Rows[n-1].Bottom()
	}
}
