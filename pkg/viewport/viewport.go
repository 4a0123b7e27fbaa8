// Package viewport selects the rows and dependency arcs a pixel window
// needs, using binary search over the orders a layout generation maintains.
package viewport

import (
	"sort"

	"github.com/matzehuels/timelane/pkg/layout"
)

// Range is an inclusive row-index interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// NoData is returned for a generation without rows.
var NoData = Range{Min: -1, Max: -1}

// Empty reports whether the range selects no rows.
func (r Range) Empty() bool { return r.Min < 0 || r.Max < r.Min }

// Len returns the number of rows in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Max - r.Min + 1
}

// Contains reports whether row index i lies in the range.
func (r Range) Contains(i int) bool { return !r.Empty() && i >= r.Min && i <= r.Max }

// FindRowRange returns the rows intersecting [yMin, yMax].
//
// rows must be sorted ascending by Y. Min is the rightmost row with
// Y <= yMin, so a row that begins before the window but reaches into it is
// included. Max is found by scanning forward while the next row has
// Y <= yMax.
func FindRowRange(rows []*layout.RowLayout, yMin, yMax float64) Range {
	if len(rows) == 0 {
		return NoData
	}
	if yMax < yMin {
		yMin, yMax = yMax, yMin
	}

	lo := sort.Search(len(rows), func(i int) bool { return rows[i].Y > yMin }) - 1
	lo = max(lo, 0)

	hi := lo
	for hi+1 < len(rows) && rows[hi+1].Y <= yMax {
		hi++
	}
	return Range{Min: lo, Max: hi}
}

// Visit calls fn for every dependency whose [Top.Index, Bottom.Index]
// interval intersects r, in bottom-row order. It stops early when fn returns
// false.
//
// The walk starts at the first dependency whose bottom row index reaches
// r.Min and ends once bottom rows pass r.Max + g.MaxSpan: beyond that no arc
// can reach back into the window. The cost is proportional to the
// dependencies whose bottom row falls in [r.Min, r.Max+MaxSpan], so a single
// arc spanning the whole chart makes every query linear in the dependency
// count.
func Visit(g *layout.Generation, r Range, fn func(*layout.DependencyLayout) bool) {
	if g == nil || r.Empty() {
		return
	}
	deps := g.Dependencies
	start := sort.Search(len(deps), func(i int) bool { return deps[i].Bottom.Index >= r.Min })
	limit := r.Max + g.MaxSpan
	for _, d := range deps[start:] {
		if d.Bottom.Index > limit {
			return
		}
		if d.Top.Index <= r.Max && !fn(d) {
			return
		}
	}
}

// FindVisibleDependencies returns exactly the dependencies crossing r.
func FindVisibleDependencies(g *layout.Generation, r Range) []*layout.DependencyLayout {
	var out []*layout.DependencyLayout
	Visit(g, r, func(d *layout.DependencyLayout) bool {
		out = append(out, d)
		return true
	})
	return out
}
