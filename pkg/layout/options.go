package layout

import (
	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/timeaxis"
)

// Behavior selects how overlapping tasks share a row.
type Behavior string

const (
	BehaviorAuto    Behavior = chart.OverlapAuto
	BehaviorStack   Behavior = chart.OverlapStack
	BehaviorStagger Behavior = chart.OverlapStagger
	BehaviorOverlay Behavior = chart.OverlapOverlay
)

// ParseBehavior validates an overlap behavior. Empty means auto.
func ParseBehavior(s string) (Behavior, error) {
	switch Behavior(s) {
	case "":
		return BehaviorAuto, nil
	case BehaviorAuto, BehaviorStack, BehaviorStagger, BehaviorOverlay:
		return Behavior(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown overlap behavior %q", s)
}

// Default sizes, in pixels.
const (
	DefaultTaskHeight               = 22
	DefaultBaselineHeight           = 6
	DefaultMilestoneBaselineYOffset = 6
	DefaultTaskPadding              = 4
	DefaultGridlineWidth            = 1
)

// Options configures a layout pass. Start from [DefaultOptions]: zero-valued
// paddings and offsets are taken literally, zero-valued heights fall back to
// the defaults.
type Options struct {
	TaskHeight      float64
	MilestoneHeight float64 // zero means TaskHeight
	BaselineHeight  float64
	// ProgressHeight is the default progress bar height; zero means the bar height.
	ProgressHeight float64
	// MilestoneBaselineYOffset separates a milestone from its point baseline.
	MilestoneBaselineYOffset float64
	TaskPadding              float64
	GridlineWidth            float64

	// RowHeight fixes every row's height. Zero lets rows grow to fit.
	RowHeight float64

	Overlap Behavior
	// OverlapOffset is the lane offset; nil leaves it unset.
	OverlapOffset *float64

	// Expanded adds row ids to the chart's own expanded list.
	Expanded []string

	ChildSource chart.ChildSource
	Mapper      timeaxis.Mapper
}

// DefaultOptions returns the standard sizing.
func DefaultOptions() Options {
	return Options{
		TaskHeight:               DefaultTaskHeight,
		BaselineHeight:           DefaultBaselineHeight,
		MilestoneBaselineYOffset: DefaultMilestoneBaselineYOffset,
		TaskPadding:              DefaultTaskPadding,
		GridlineWidth:            DefaultGridlineWidth,
		Overlap:                  BehaviorAuto,
	}
}

// Resolved is Options with every default applied and validated.
type Resolved struct {
	TaskHeight               float64
	MilestoneHeight          float64
	BaselineHeight           float64
	ProgressHeight           float64
	MilestoneBaselineYOffset float64
	TaskPadding              float64
	GridlineWidth            float64
	RowHeight                float64
	Overlap                  Behavior
	OverlapOffset            float64
	HasOverlapOffset         bool
	ChildSource              chart.ChildSource
	Mapper                   timeaxis.Mapper
}

// Resolve applies defaults and rejects unusable values.
func (o Options) Resolve() (Resolved, error) {
	r := Resolved{
		TaskHeight:               o.TaskHeight,
		MilestoneHeight:          o.MilestoneHeight,
		BaselineHeight:           o.BaselineHeight,
		ProgressHeight:           o.ProgressHeight,
		MilestoneBaselineYOffset: o.MilestoneBaselineYOffset,
		TaskPadding:              o.TaskPadding,
		GridlineWidth:            o.GridlineWidth,
		RowHeight:                o.RowHeight,
		ChildSource:              o.ChildSource,
		Mapper:                   o.Mapper,
	}
	if r.TaskHeight <= 0 {
		r.TaskHeight = DefaultTaskHeight
	}
	if r.MilestoneHeight <= 0 {
		r.MilestoneHeight = r.TaskHeight
	}
	if r.BaselineHeight <= 0 {
		r.BaselineHeight = DefaultBaselineHeight
	}
	if r.ProgressHeight < 0 {
		r.ProgressHeight = 0
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"milestone baseline offset", r.MilestoneBaselineYOffset},
		{"task padding", r.TaskPadding},
		{"gridline width", r.GridlineWidth},
		{"row height", r.RowHeight},
	} {
		if f.v < 0 {
			return Resolved{}, errors.New(errors.ErrCodeInvalidOptions, "%s must not be negative, got %v", f.name, f.v)
		}
	}

	b, err := ParseBehavior(string(o.Overlap))
	if err != nil {
		return Resolved{}, err
	}
	r.Overlap = b

	if o.OverlapOffset != nil {
		if *o.OverlapOffset < 0 {
			return Resolved{}, errors.New(errors.ErrCodeInvalidOptions, "overlap offset must not be negative, got %v", *o.OverlapOffset)
		}
		r.OverlapOffset = *o.OverlapOffset
		r.HasOverlapOffset = true
	}
	return r, nil
}

// RowPolicy is the overlap and sizing policy of one row, resolved once.
type RowPolicy struct {
	Behavior    Behavior
	Offset      float64
	HasOffset   bool
	FixedHeight float64 // zero when the row grows to fit
	Padding     float64
	// EmptyHeight is the envelope of one standalone task, used for rows
	// without tasks.
	EmptyHeight float64
	// StaggerOffset is used by stagger when no offset is set.
	StaggerOffset float64
}

// RowPolicy resolves the policy of row against the options. Invalid
// row-level behaviors fall back to the chart default.
func (r Resolved) RowPolicy(row *chart.Row) RowPolicy {
	p := RowPolicy{
		Behavior:      r.Overlap,
		Offset:        r.OverlapOffset,
		HasOffset:     r.HasOverlapOffset,
		FixedHeight:   r.RowHeight,
		Padding:       r.TaskPadding,
		EmptyHeight:   r.TaskHeight,
		StaggerOffset: r.TaskHeight / 2,
	}
	if row == nil {
		return p
	}
	if row.Height > 0 {
		p.FixedHeight = row.Height
	}
	if row.Padding != nil && *row.Padding >= 0 {
		p.Padding = *row.Padding
	}
	if row.Overlap != nil {
		if b, err := ParseBehavior(row.Overlap.Behavior); err == nil && row.Overlap.Behavior != "" {
			p.Behavior = b
		}
		if row.Overlap.Offset != nil && *row.Overlap.Offset >= 0 {
			p.Offset = *row.Overlap.Offset
			p.HasOffset = true
		}
	}
	return p
}

// taskBehavior resolves the effective behavior of one task in the row.
func (p RowPolicy) taskBehavior(rec *chart.Task) (Behavior, float64, bool) {
	b, off, has := p.Behavior, p.Offset, p.HasOffset
	if rec != nil && rec.Overlap != nil {
		if tb, err := ParseBehavior(rec.Overlap.Behavior); err == nil && rec.Overlap.Behavior != "" {
			b = tb
		}
		if rec.Overlap.Offset != nil && *rec.Overlap.Offset >= 0 {
			off, has = *rec.Overlap.Offset, true
		}
	}
	if b == BehaviorAuto {
		if p.FixedHeight > 0 {
			b = BehaviorStack
		} else {
			b = BehaviorStagger
		}
	}
	return b, off, has
}
