package viewport

import "github.com/matzehuels/timelane/pkg/layout"

// Window is a scrolled pixel viewport over the content.
type Window struct {
	// Offset is the scroll position of the top edge.
	Offset float64
	Height float64
	// Overscan extends the window on both sides so rows just outside it are
	// materialized before they scroll in.
	Overscan float64
}

// Bounds returns the y-interval to materialize.
func (w Window) Bounds() (yMin, yMax float64) {
	return max(w.Offset-w.Overscan, 0), w.Offset + w.Height + w.Overscan
}

// Rows returns the row range of g covered by the window.
func (w Window) Rows(g *layout.Generation) Range {
	if g == nil {
		return NoData
	}
	lo, hi := w.Bounds()
	return FindRowRange(g.Rows, lo, hi)
}

// ScrollBy moves the window by dy, clamped to the content.
func (w Window) ScrollBy(dy, contentHeight float64) Window {
	w.Offset += dy
	return w.Clamp(contentHeight)
}

// Clamp keeps the window inside [0, contentHeight].
func (w Window) Clamp(contentHeight float64) Window {
	w.Offset = min(w.Offset, max(contentHeight-w.Height, 0))
	w.Offset = max(w.Offset, 0)
	return w
}

// Reveal scrolls the minimum distance that brings row fully into view.
func (w Window) Reveal(row *layout.RowLayout) Window {
	switch {
	case row.Y < w.Offset:
		w.Offset = row.Y
	case row.Bottom() > w.Offset+w.Height:
		w.Offset = row.Bottom() - w.Height
	}
	return w
}
