package layout

import (
	"github.com/matzehuels/timelane/pkg/chart"
)

// =============================================================================
// Enumerations
// =============================================================================

// RenderState describes how an object relates to the previous generation.
type RenderState uint8

const (
	StateAdd RenderState = iota
	StateExist
	StateMigrate
	StateDelete
)

func (s RenderState) String() string {
	switch s {
	case StateAdd:
		return "add"
	case StateExist:
		return "exist"
	case StateMigrate:
		return "migrate"
	case StateDelete:
		return "delete"
	}
	return "unknown"
}

// Expansion is the tri-state expander of a row.
type Expansion int8

const (
	Leaf Expansion = iota
	Collapsed
	Expanded
)

func (e Expansion) String() string {
	switch e {
	case Collapsed:
		return "collapsed"
	case Expanded:
		return "expanded"
	}
	return "leaf"
}

// Kind identifies the type of a layout object.
type Kind uint8

const (
	KindRow Kind = iota
	KindTask
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindRow:
		return "row"
	case KindTask:
		return "task"
	case KindDependency:
		return "dependency"
	}
	return "unknown"
}

// =============================================================================
// Object
// =============================================================================

// Object is implemented by every layout object. Handles are opaque values
// attached by an external renderer; the engine only moves them between
// generations.
type Object interface {
	ObjectID() string
	Kind() Kind
	RenderState() RenderState
	Handle() any
	SetHandle(h any)
}

// handle stores the renderer's display handle.
type handle struct {
	h any
}

// Handle returns the attached display handle, or nil.
func (h *handle) Handle() any { return h.h }

// SetHandle attaches a display handle; nil detaches it.
func (h *handle) SetHandle(v any) { h.h = v }

// =============================================================================
// Span
// =============================================================================

// Span is a nullable time interval in epoch milliseconds.
type Span struct {
	Start int64
	End   int64
	Valid bool
}

// SpanOf builds a span from optional bounds. A single bound is used for both
// ends; reversed bounds are swapped.
func SpanOf(start, end *chart.Time) Span {
	switch {
	case start == nil && end == nil:
		return Span{}
	case start == nil:
		start = end
	case end == nil:
		end = start
	}
	s, e := start.Millis(), end.Millis()
	if e < s {
		s, e = e, s
	}
	return Span{Start: s, End: e, Valid: true}
}

// Overlaps applies the half-open interval test.
func (s Span) Overlaps(o Span) bool {
	return s.Valid && o.Valid && s.Start < o.End && o.Start < s.End
}

// IsPoint reports whether the span collapses to a single instant.
func (s Span) IsPoint() bool { return s.Valid && s.Start == s.End }

// Union returns the smallest span covering both.
func (s Span) Union(o Span) Span {
	if !s.Valid {
		return o
	}
	if !o.Valid {
		return s
	}
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End), Valid: true}
}

// =============================================================================
// Row
// =============================================================================

// RowLayout is one positioned row of a generation.
type RowLayout struct {
	handle

	ID          string
	Data        *chart.Row
	Index       int
	Y           float64
	Height      float64
	Padding     float64
	Depth       int
	Expanded    Expansion
	ParentIndex int // -1 for root rows
	State       RenderState

	// Tasks are sorted ascending by start time.
	Tasks           []*TaskLayout
	EarliestOverlay *TaskLayout
	Lanes           int

	// Old is the previous generation's row with the same id.
	Old *RowLayout
}

func (r *RowLayout) ObjectID() string         { return r.ID }
func (r *RowLayout) Kind() Kind               { return KindRow }
func (r *RowLayout) RenderState() RenderState { return r.State }

// Bottom returns the y-offset just below the row.
func (r *RowLayout) Bottom() float64 { return r.Y + r.Height }

// Label returns the row label, falling back to the id.
func (r *RowLayout) Label() string {
	if r.Data != nil && r.Data.Label != "" {
		return r.Data.Label
	}
	return r.ID
}

// =============================================================================
// Task
// =============================================================================

// TaskLayout is one positioned task.
type TaskLayout struct {
	handle

	ID   string
	Data *chart.Task
	Row  *RowLayout

	Actual   Span
	Baseline Span
	Overall  Span

	Milestone         bool
	BaselineMilestone bool

	Height         float64
	BaselineHeight float64
	ProgressHeight float64
	OverallHeight  float64
	// BarOffset is how far a tall progress bar pushes the task bar down.
	BarOffset float64

	// Y is the offset of the task's envelope inside the row's padded box.
	Y       float64
	Lane    int
	Overlap Behavior

	PrevAdjacent *TaskLayout
	NextAdjacent *TaskLayout

	PrevMilestoneBaseline *TaskLayout
	NextMilestoneBaseline *TaskLayout

	// X and Width are set when the build has a time mapper.
	X     float64
	Width float64

	State RenderState
	Old   *TaskLayout
}

func (t *TaskLayout) ObjectID() string         { return t.ID }
func (t *TaskLayout) Kind() Kind               { return KindTask }
func (t *TaskLayout) RenderState() RenderState { return t.State }

// AbsY returns the absolute y-offset of the task's envelope.
func (t *TaskLayout) AbsY() float64 {
	if t.Row == nil {
		return t.Y
	}
	return t.Row.Y + t.Row.Padding + t.Y
}

// sortStart is the chronological sort key.
func (t *TaskLayout) sortStart() int64 {
	if t.Actual.Valid {
		return t.Actual.Start
	}
	return t.Overall.Start
}

// =============================================================================
// Dependency
// =============================================================================

// DependencyType is one of the four scheduling link kinds.
type DependencyType string

const (
	StartStart   DependencyType = chart.StartStart
	StartFinish  DependencyType = chart.StartFinish
	FinishStart  DependencyType = chart.FinishStart
	FinishFinish DependencyType = chart.FinishFinish
)

// ParseDependencyType validates a dependency type. Empty means finish-start.
func ParseDependencyType(s string) (DependencyType, bool) {
	switch DependencyType(s) {
	case "":
		return FinishStart, true
	case StartStart, StartFinish, FinishStart, FinishFinish:
		return DependencyType(s), true
	}
	return "", false
}

// DependencyLayout is one arc between two tasks.
type DependencyLayout struct {
	handle

	ID          string
	Data        *chart.Dependency
	Type        DependencyType
	Predecessor *TaskLayout
	Successor   *TaskLayout

	// Top and Bottom are the endpoint rows with the lower and higher index.
	Top    *RowLayout
	Bottom *RowLayout

	// NextTop and PrevTop chain all dependencies in top-row order.
	NextTop *DependencyLayout
	PrevTop *DependencyLayout

	// Index is the position in the bottom-row-sorted slice.
	Index int
	State RenderState
	Old   *DependencyLayout
}

func (d *DependencyLayout) ObjectID() string         { return d.ID }
func (d *DependencyLayout) Kind() Kind               { return KindDependency }
func (d *DependencyLayout) RenderState() RenderState { return d.State }

// Span returns the number of rows the arc crosses beyond its top row.
func (d *DependencyLayout) Span() int { return d.Bottom.Index - d.Top.Index }

var (
	_ Object = (*RowLayout)(nil)
	_ Object = (*TaskLayout)(nil)
	_ Object = (*DependencyLayout)(nil)
)
