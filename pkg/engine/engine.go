// Package engine retains the current layout generation of a chart and
// exposes the operations an external renderer drives: full layout passes,
// diffing against the previous generation, viewport queries, in-place
// expand/collapse, and on-demand materialization of display handles.
//
// An Engine is not safe for concurrent use. Callers serialize access, for
// example with one mutex per engine as the HTTP inspector does.
//
// # Lifecycle
//
//	e := engine.New(layout.DefaultOptions(), engine.WithLogger(logger))
//	res, err := e.Update(chart)      // build, diff, reconcile, retain
//	r := e.FindRowRange(0, 600)      // rows in the viewport
//	deps := e.FindVisibleDependencies(r)
//	res, err = e.PatchExpandCollapse("epic-1", layout.Expand)
//
// Expansion state belongs to the engine once a generation is retained:
// later updates reuse the retained expanded-key set instead of the chart's
// own Expanded list, so a collapse is not undone by the next data refresh.
package engine

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/diff"
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/observability"
	"github.com/matzehuels/timelane/pkg/viewport"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaterializer registers the callback EnsureMaterialized uses.
func WithMaterializer(m Materializer) Option { return func(e *Engine) { e.mat = m } }

// WithHooks overrides the globally registered engine hooks.
func WithHooks(h observability.EngineHooks) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = h
		}
	}
}

// Engine owns the retained generation.
type Engine struct {
	opts    layout.Options
	logger  *log.Logger
	mat     Materializer
	hooks   observability.EngineHooks
	current *layout.Generation
	last    *diff.Result
}

// New creates an engine with no retained generation.
func New(opts layout.Options, options ...Option) *Engine {
	e := &Engine{
		opts:   opts,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		hooks:  observability.Engine(),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Options returns the layout options used by the next pass.
func (e *Engine) Options() layout.Options { return e.opts }

// SetOptions replaces the layout options. The retained generation is not
// rebuilt until the next ComputeLayout or Update.
func (e *Engine) SetOptions(opts layout.Options) { e.opts = opts }

// Current returns the retained generation, or nil before the first Update.
func (e *Engine) Current() *layout.Generation { return e.current }

// LastDiff returns the result of the most recent diff, or nil.
func (e *Engine) LastDiff() *diff.Result { return e.last }

// Reset drops the retained generation and its expansion state.
func (e *Engine) Reset() {
	e.current = nil
	e.last = nil
}

// ComputeLayout runs a full layout pass without retaining the result.
func (e *Engine) ComputeLayout(c *chart.Chart) (*layout.Generation, error) {
	start := time.Now()
	if c != nil && e.current != nil {
		cc := *c
		cc.Expanded = e.current.Expanded().Sorted()
		c = &cc
	}

	g, err := layout.Build(c, e.opts)
	elapsed := time.Since(start)
	if err != nil {
		e.hooks.OnLayout(observability.LayoutStats{}, elapsed, err)
		return nil, err
	}

	stats := observability.LayoutStats{
		Rows:              len(g.Rows),
		Tasks:             len(g.Tasks()),
		Dependencies:      len(g.Dependencies),
		DiscardedTasks:    g.Discarded.Tasks,
		DiscardedDeps:     g.Discarded.Dependencies,
		ContentHeight:     g.ContentHeight,
		MaxDependencySpan: g.MaxSpan,
	}
	e.hooks.OnLayout(stats, elapsed, nil)
	e.logger.Debug("computed layout",
		"rows", stats.Rows,
		"tasks", stats.Tasks,
		"dependencies", stats.Dependencies,
		"height", g.ContentHeight,
		"duration", elapsed)
	if stats.DiscardedTasks > 0 || stats.DiscardedDeps > 0 {
		e.logger.Debug("discarded records",
			"tasks", stats.DiscardedTasks,
			"dependencies", stats.DiscardedDeps)
	}
	return g, nil
}

// DiffAgainstPrevious classifies g against the retained generation,
// transfers display handles, and retains g.
func (e *Engine) DiffAgainstPrevious(g *layout.Generation) *diff.Result {
	start := time.Now()
	res := diff.Diff(e.current, g)
	diff.Reconcile(res)
	e.retain(g, res, time.Since(start))
	return res
}

// Update is ComputeLayout followed by DiffAgainstPrevious.
func (e *Engine) Update(c *chart.Chart) (*diff.Result, error) {
	g, err := e.ComputeLayout(c)
	if err != nil {
		return nil, err
	}
	return e.DiffAgainstPrevious(g), nil
}

// FindRowRange returns the retained rows intersecting [yMin, yMax].
func (e *Engine) FindRowRange(yMin, yMax float64) viewport.Range {
	if e.current == nil {
		return viewport.NoData
	}
	return viewport.FindRowRange(e.current.Rows, yMin, yMax)
}

// FindVisibleDependencies returns the retained dependencies crossing r.
func (e *Engine) FindVisibleDependencies(r viewport.Range) []*layout.DependencyLayout {
	return viewport.FindVisibleDependencies(e.current, r)
}

// PatchExpandCollapse expands or collapses the row with the given id in the
// retained generation and returns the diff against its state before the
// patch. Handles are reconciled; rows the patch removed keep theirs and are
// listed as delete instructions.
func (e *Engine) PatchExpandCollapse(rowID string, dir layout.Direction) (*diff.Result, error) {
	start := time.Now()
	if e.current == nil {
		return nil, errors.New(errors.ErrCodeRowNotFound, "row %q: no layout computed", rowID)
	}
	row := e.current.Row(rowID)
	if row == nil {
		err := errors.New(errors.ErrCodeRowNotFound, "row %q not found", rowID)
		e.hooks.OnPatch(rowID, dir.String(), 0, 0, time.Since(start), err)
		return nil, err
	}

	prevRows := slices.Clone(e.current.Rows)
	prevDeps := slices.Clone(e.current.Dependencies)
	p, err := layout.Patch(e.current, row, dir)
	if err != nil {
		e.hooks.OnPatch(rowID, dir.String(), 0, 0, time.Since(start), err)
		return nil, err
	}

	res := diff.DiffRows(prevRows, prevDeps, e.current)
	diff.Reconcile(res)
	elapsed := time.Since(start)
	e.hooks.OnPatch(rowID, dir.String(), len(p.Added), len(p.Removed), elapsed, nil)
	e.logger.Debug("patched row",
		"row", rowID,
		"direction", dir,
		"added", len(p.Added),
		"removed", len(p.Removed),
		"duration", elapsed)
	e.retain(e.current, res, elapsed)
	return res, nil
}

// Toggle expands a collapsed row and collapses an expanded one.
func (e *Engine) Toggle(rowID string) (*diff.Result, error) {
	if e.current != nil {
		if row := e.current.Row(rowID); row != nil && row.Expanded == layout.Expanded {
			return e.PatchExpandCollapse(rowID, layout.Collapse)
		}
	}
	return e.PatchExpandCollapse(rowID, layout.Expand)
}

func (e *Engine) retain(g *layout.Generation, res *diff.Result, elapsed time.Duration) {
	changed := 0
	total := 0
	for _, c := range []diff.Counts{res.Rows, res.Tasks, res.Dependencies} {
		changed += c.Add + c.Migrate + c.Delete
		total += c.Total()
	}
	e.hooks.OnDiff(changed, total, elapsed)
	if e.current != nil && e.current != g {
		e.current.DropPredecessors()
	}
	for _, r := range res.DeletedRows {
		r.Old = nil
	}
	for _, t := range res.DeletedTasks {
		t.Old = nil
	}
	for _, d := range res.DeletedDependencies {
		d.Old = nil
	}
	e.current = g
	e.last = res
}
