// Package timeaxis maps instants to horizontal pixel offsets.
//
// The layout engine consumes a [Mapper] and never assumes how the axis is
// scaled. [Linear] is the plain proportional scale used by the command-line
// tools and the HTTP inspector; zooming and panning return new mappers so a
// generation built against one scale is never mutated by a later change.
package timeaxis

import (
	"fmt"
	"math"
)

// Mapper converts between epoch milliseconds and pixel offsets.
type Mapper interface {
	// Position returns the pixel offset of t from the left edge.
	Position(t int64) float64
	// Time returns the instant at pixel offset x.
	Time(x float64) int64
}

// Linear maps [Start, End] onto [0, Width] proportionally.
type Linear struct {
	Start int64
	End   int64
	Width float64
}

// NewLinear creates a linear scale. A degenerate span is widened by one
// millisecond so the scale stays invertible.
func NewLinear(start, end int64, width float64) (*Linear, error) {
	if width <= 0 {
		return nil, fmt.Errorf("axis width must be positive, got %v", width)
	}
	if end < start {
		start, end = end, start
	}
	if end == start {
		end = start + 1
	}
	return &Linear{Start: start, End: end, Width: width}, nil
}

// Scale returns pixels per millisecond.
func (l *Linear) Scale() float64 {
	return l.Width / float64(l.End-l.Start)
}

// Position implements Mapper.
func (l *Linear) Position(t int64) float64 {
	return float64(t-l.Start) * l.Scale()
}

// Time implements Mapper.
func (l *Linear) Time(x float64) int64 {
	return l.Start + int64(math.Round(x/l.Scale()))
}

// Zoom narrows (factor > 1) or widens (factor < 1) the visible time span,
// keeping the instant under pixel anchor in place.
func (l *Linear) Zoom(factor, anchor float64) *Linear {
	if factor <= 0 {
		factor = 1
	}
	at := l.Time(anchor)
	span := float64(l.End-l.Start) / factor
	if span < 1 {
		span = 1
	}
	start := at - int64(math.Round(anchor/l.Width*span))
	return &Linear{Start: start, End: start + int64(math.Round(span)), Width: l.Width}
}

// Pan shifts the visible span by dx pixels; positive dx moves later in time.
func (l *Linear) Pan(dx float64) *Linear {
	shift := int64(math.Round(dx / l.Scale()))
	return &Linear{Start: l.Start + shift, End: l.End + shift, Width: l.Width}
}

// Resize keeps the time span and changes the pixel width.
func (l *Linear) Resize(width float64) *Linear {
	if width <= 0 {
		return l
	}
	return &Linear{Start: l.Start, End: l.End, Width: width}
}

var _ Mapper = (*Linear)(nil)
