package chart

import (
	"github.com/matzehuels/timelane/pkg/errors"
)

// Task types.
const (
	TaskAuto      = "auto"
	TaskMilestone = "milestone"
	TaskSummary   = "summary"
)

// Overlap behaviors, as written in chart documents.
const (
	OverlapAuto    = "auto"
	OverlapStack   = "stack"
	OverlapStagger = "stagger"
	OverlapOverlay = "overlay"
)

// Dependency types.
const (
	StartStart   = "start-start"
	StartFinish  = "start-finish"
	FinishStart  = "finish-start"
	FinishFinish = "finish-finish"
)

// =============================================================================
// Records
// =============================================================================

// Chart is a complete schedule document.
type Chart struct {
	Rows         []Row        `json:"rows" yaml:"rows" toml:"rows" bson:"rows"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty" bson:"dependencies,omitempty"`

	// Expanded lists the ids of hierarchical rows whose children are shown.
	Expanded []string `json:"expanded,omitempty" yaml:"expanded,omitempty" toml:"expanded,omitempty" bson:"expanded,omitempty"`

	// Start and End bound the time axis. When unset, the axis spans the tasks.
	Start *Time `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty" bson:"start,omitempty"`
	End   *Time `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty" bson:"end,omitempty"`
}

// Row is one horizontal lane group of the chart.
type Row struct {
	ID    string `json:"id" yaml:"id" toml:"id" bson:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Tasks []Task `json:"tasks,omitempty" yaml:"tasks,omitempty" toml:"tasks,omitempty" bson:"tasks,omitempty"`
	Rows  []Row  `json:"rows,omitempty" yaml:"rows,omitempty" toml:"rows,omitempty" bson:"rows,omitempty"`

	// Lazy marks a row whose children are supplied by a ChildSource.
	Lazy bool `json:"lazy,omitempty" yaml:"lazy,omitempty" toml:"lazy,omitempty" bson:"lazy,omitempty"`

	// Height fixes the row height. Zero defers to the layout options.
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty" bson:"height,omitempty"`

	// Padding overrides the per-lane task padding for this row.
	Padding *float64 `json:"padding,omitempty" yaml:"padding,omitempty" toml:"padding,omitempty" bson:"padding,omitempty"`

	Overlap *Overlap `json:"overlap,omitempty" yaml:"overlap,omitempty" toml:"overlap,omitempty" bson:"overlap,omitempty"`
}

// Task is a time-spanned item inside a row.
type Task struct {
	ID       string    `json:"id" yaml:"id" toml:"id" bson:"id"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Start    *Time     `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty" bson:"start,omitempty"`
	End      *Time     `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty" bson:"end,omitempty"`
	Baseline *Baseline `json:"baseline,omitempty" yaml:"baseline,omitempty" toml:"baseline,omitempty" bson:"baseline,omitempty"`
	Progress *Progress `json:"progress,omitempty" yaml:"progress,omitempty" toml:"progress,omitempty" bson:"progress,omitempty"`
	Height   float64   `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty" bson:"height,omitempty"`
	Type     string    `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" bson:"type,omitempty"`
	Overlap  *Overlap  `json:"overlap,omitempty" yaml:"overlap,omitempty" toml:"overlap,omitempty" bson:"overlap,omitempty"`
}

// Baseline is the planned span of a task, drawn beneath the actual bar.
type Baseline struct {
	Start  *Time   `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty" bson:"start,omitempty"`
	End    *Time   `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty" bson:"end,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty" bson:"height,omitempty"`
}

// Progress is the completed fraction of a task.
type Progress struct {
	Value  float64 `json:"value" yaml:"value" toml:"value" bson:"value"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty" bson:"height,omitempty"`
}

// Overlap selects how overlapping tasks share a row.
type Overlap struct {
	Behavior string   `json:"behavior,omitempty" yaml:"behavior,omitempty" toml:"behavior,omitempty" bson:"behavior,omitempty"`
	Offset   *float64 `json:"offset,omitempty" yaml:"offset,omitempty" toml:"offset,omitempty" bson:"offset,omitempty"`
}

// Dependency links a predecessor task to a successor task.
type Dependency struct {
	ID                string `json:"id" yaml:"id" toml:"id" bson:"id"`
	PredecessorTaskID string `json:"predecessor" yaml:"predecessor" toml:"predecessor" bson:"predecessor"`
	SuccessorTaskID   string `json:"successor" yaml:"successor" toml:"successor" bson:"successor"`
	Type              string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" bson:"type,omitempty"`
}

// =============================================================================
// Queries
// =============================================================================

// Bounds returns the time span covered by the chart. Explicit Start and End
// win; otherwise the span is derived from every task and baseline, including
// those in collapsed rows. ok is false when no time value is present.
func (c *Chart) Bounds() (start, end int64, ok bool) {
	var lo, hi int64
	seen := false
	visit := func(t *Time) {
		if t == nil {
			return
		}
		v := t.Millis()
		if !seen || v < lo {
			lo = v
		}
		if !seen || v > hi {
			hi = v
		}
		seen = true
	}
	c.Walk(func(r *Row, _ int) {
		for i := range r.Tasks {
			t := &r.Tasks[i]
			visit(t.Start)
			visit(t.End)
			if t.Baseline != nil {
				visit(t.Baseline.Start)
				visit(t.Baseline.End)
			}
		}
	})
	if c.Start != nil {
		lo, seen = c.Start.Millis(), true
	}
	if c.End != nil {
		hi, seen = c.End.Millis(), true
	}
	return lo, hi, seen
}

// Walk visits every inline row in pre-order, regardless of expansion.
func (c *Chart) Walk(fn func(r *Row, depth int)) {
	var walk func(rows []Row, depth int)
	walk = func(rows []Row, depth int) {
		for i := range rows {
			fn(&rows[i], depth)
			walk(rows[i].Rows, depth+1)
		}
	}
	walk(c.Rows, 0)
}

// Stats counts inline rows, tasks and dependencies.
func (c *Chart) Stats() (rows, tasks, deps int) {
	c.Walk(func(r *Row, _ int) {
		rows++
		tasks += len(r.Tasks)
	})
	return rows, tasks, len(c.Dependencies)
}

// Validate reports records that cannot be addressed: rows, tasks or
// dependencies with an empty id, and rows whose id repeats. Records with
// missing optional fields are not errors.
func (c *Chart) Validate() error {
	seen := make(map[string]struct{})
	var err error
	c.Walk(func(r *Row, _ int) {
		if err != nil {
			return
		}
		if r.ID == "" {
			err = errors.New(errors.ErrCodeInvalidInput, "row with label %q has no id", r.Label)
			return
		}
		if _, dup := seen[r.ID]; dup {
			err = errors.New(errors.ErrCodeInvalidInput, "duplicate row id %q", r.ID)
			return
		}
		seen[r.ID] = struct{}{}
		for i := range r.Tasks {
			if r.Tasks[i].ID == "" {
				err = errors.New(errors.ErrCodeInvalidInput, "task %d of row %q has no id", i, r.ID)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	for i, d := range c.Dependencies {
		if d.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "dependency %d has no id", i)
		}
	}
	return nil
}
