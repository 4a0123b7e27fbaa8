package layout

import (
	"github.com/matzehuels/timelane/pkg/chart"
)

// newTask maps a task record to a layout object and derives its heights.
// It returns nil for a task with neither an actual nor a baseline span.
func newTask(rec *chart.Task, r Resolved) *TaskLayout {
	actual := SpanOf(rec.Start, rec.End)
	var baseline Span
	if rec.Baseline != nil {
		baseline = SpanOf(rec.Baseline.Start, rec.Baseline.End)
	}
	if !actual.Valid && !baseline.Valid {
		return nil
	}
	t := &TaskLayout{
		ID:       rec.ID,
		Data:     rec,
		Actual:   actual,
		Baseline: baseline,
		Overall:  actual.Union(baseline),
	}
	switch rec.Type {
	case chart.TaskMilestone:
		t.Milestone = actual.Valid
	case chart.TaskSummary:
		// summaries stay bars even when degenerate
	default:
		t.Milestone = actual.IsPoint()
	}
	SizeTask(t, r)
	return t
}

// SizeTask derives the bar, baseline, progress and envelope heights of t.
//
// A bar is TaskHeight tall (MilestoneHeight for milestones) unless the record
// overrides it. With a baseline the envelope stacks bar and baseline; when
// both collapse to points the baseline diamond sits MilestoneBaselineYOffset
// below the milestone instead. A point baseline is at least MilestoneHeight
// tall. A progress bar taller than the task bar grows the envelope to
// max(progress, overhang + envelope) where overhang is half the difference.
func SizeTask(t *TaskLayout, r Resolved) {
	rec := t.Data
	h := r.TaskHeight
	if t.Milestone {
		h = r.MilestoneHeight
	}
	if rec != nil && rec.Height > 0 {
		h = rec.Height
	}
	t.Height = h

	overall := h
	t.BaselineHeight = 0
	t.BaselineMilestone = false
	if t.Baseline.Valid {
		bh := r.BaselineHeight
		if rec != nil && rec.Baseline != nil && rec.Baseline.Height > 0 {
			bh = rec.Baseline.Height
		}
		if t.Baseline.IsPoint() {
			t.BaselineMilestone = true
			bh = max(bh, r.MilestoneHeight)
		}
		t.BaselineHeight = bh

		switch {
		case t.Actual.IsPoint() && t.Baseline.IsPoint():
			overall = r.MilestoneBaselineYOffset + max(bh, h)
		case t.Actual.Valid:
			overall = h + bh
		default:
			overall = bh
		}
	}

	t.ProgressHeight = 0
	t.BarOffset = 0
	if rec != nil && rec.Progress != nil {
		ph := r.ProgressHeight
		if rec.Progress.Height > 0 {
			ph = rec.Progress.Height
		}
		if ph <= 0 {
			ph = h
		}
		t.ProgressHeight = ph
		if ph > h {
			t.BarOffset = (ph - h) / 2
			overall = max(ph, t.BarOffset+overall)
		}
	}
	t.OverallHeight = overall
}
