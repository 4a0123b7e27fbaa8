// Package view converts layout generations and diffs into plain,
// serializable values for CLI output and the HTTP inspector.
//
// Snapshots hold no pointers back into the engine, so they can be encoded as
// JSON, stored as BSON documents, or compared in tests.
package view

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/timelane/pkg/diff"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/viewport"
)

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is a positioned generation, or a window of one.
type Snapshot struct {
	ContentHeight float64         `json:"content_height" bson:"content_height"`
	MaxSpan       int             `json:"max_span" bson:"max_span"`
	Range         *viewport.Range `json:"range,omitempty" bson:"range,omitempty"`
	Expanded      []string        `json:"expanded,omitempty" bson:"expanded,omitempty"`
	Discarded     Discarded       `json:"discarded" bson:"discarded"`
	Rows          []Row           `json:"rows" bson:"rows"`
	Dependencies  []Dependency    `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
}

// Discarded counts records the layout pass left out.
type Discarded struct {
	Tasks        int `json:"tasks" bson:"tasks"`
	Dependencies int `json:"dependencies" bson:"dependencies"`
}

// Row is one positioned row.
type Row struct {
	ID       string  `json:"id" bson:"id"`
	Label    string  `json:"label,omitempty" bson:"label,omitempty"`
	Index    int     `json:"index" bson:"index"`
	Y        float64 `json:"y" bson:"y"`
	Height   float64 `json:"height" bson:"height"`
	Depth    int     `json:"depth,omitempty" bson:"depth,omitempty"`
	Parent   int     `json:"parent" bson:"parent"`
	Expander string  `json:"expander" bson:"expander"`
	Lanes    int     `json:"lanes,omitempty" bson:"lanes,omitempty"`
	State    string  `json:"state" bson:"state"`
	Tasks    []Task  `json:"tasks,omitempty" bson:"tasks,omitempty"`
}

// Task is one positioned task. Y is absolute.
type Task struct {
	ID        string  `json:"id" bson:"id"`
	Label     string  `json:"label,omitempty" bson:"label,omitempty"`
	Start     int64   `json:"start" bson:"start"`
	End       int64   `json:"end" bson:"end"`
	Baseline  *Span   `json:"baseline,omitempty" bson:"baseline,omitempty"`
	X         float64 `json:"x" bson:"x"`
	Y         float64 `json:"y" bson:"y"`
	Width     float64 `json:"width" bson:"width"`
	Height    float64 `json:"height" bson:"height"`
	Envelope  float64 `json:"envelope" bson:"envelope"`
	BarOffset float64 `json:"bar_offset,omitempty" bson:"bar_offset,omitempty"`
	Lane      int     `json:"lane" bson:"lane"`
	Milestone bool    `json:"milestone,omitempty" bson:"milestone,omitempty"`
	State     string  `json:"state" bson:"state"`

	PrevMilestoneBaseline string `json:"prev_milestone_baseline,omitempty" bson:"prev_milestone_baseline,omitempty"`
	NextMilestoneBaseline string `json:"next_milestone_baseline,omitempty" bson:"next_milestone_baseline,omitempty"`
}

// Span is a closed time interval in epoch milliseconds.
type Span struct {
	Start int64 `json:"start" bson:"start"`
	End   int64 `json:"end" bson:"end"`
}

// Dependency is one arc between two tasks.
type Dependency struct {
	ID          string `json:"id" bson:"id"`
	Type        string `json:"type" bson:"type"`
	Predecessor string `json:"predecessor" bson:"predecessor"`
	Successor   string `json:"successor" bson:"successor"`
	Top         int    `json:"top" bson:"top"`
	Bottom      int    `json:"bottom" bson:"bottom"`
	State       string `json:"state" bson:"state"`
}

// FromGeneration snapshots g. A nil range includes every row and
// dependency; otherwise only the rows in r and the arcs crossing it.
func FromGeneration(g *layout.Generation, r *viewport.Range) Snapshot {
	s := Snapshot{Rows: []Row{}}
	if g == nil {
		return s
	}
	s.ContentHeight = g.ContentHeight
	s.MaxSpan = g.MaxSpan
	s.Expanded = g.Expanded().Sorted()
	s.Discarded = Discarded{Tasks: g.Discarded.Tasks, Dependencies: g.Discarded.Dependencies}

	rows := g.Rows
	deps := g.Dependencies
	if r != nil {
		rr := *r
		s.Range = &rr
		rows = nil
		if !rr.Empty() && rr.Min < len(g.Rows) {
			rows = g.Rows[rr.Min : min(rr.Max, len(g.Rows)-1)+1]
		}
		deps = viewport.FindVisibleDependencies(g, rr)
	}

	for _, row := range rows {
		s.Rows = append(s.Rows, rowOf(row))
	}
	for _, d := range deps {
		s.Dependencies = append(s.Dependencies, Dependency{
			ID:          d.ID,
			Type:        string(d.Type),
			Predecessor: d.Predecessor.ID,
			Successor:   d.Successor.ID,
			Top:         d.Top.Index,
			Bottom:      d.Bottom.Index,
			State:       d.State.String(),
		})
	}
	return s
}

func rowOf(r *layout.RowLayout) Row {
	out := Row{
		ID:       r.ID,
		Index:    r.Index,
		Y:        r.Y,
		Height:   r.Height,
		Depth:    r.Depth,
		Parent:   r.ParentIndex,
		Expander: r.Expanded.String(),
		Lanes:    r.Lanes,
		State:    r.State.String(),
	}
	if r.Data != nil {
		out.Label = r.Data.Label
	}
	for _, t := range r.Tasks {
		out.Tasks = append(out.Tasks, taskOf(t))
	}
	return out
}

func taskOf(t *layout.TaskLayout) Task {
	out := Task{
		ID:        t.ID,
		Start:     t.Overall.Start,
		End:       t.Overall.End,
		X:         t.X,
		Y:         t.AbsY(),
		Width:     t.Width,
		Height:    t.Height,
		Envelope:  t.OverallHeight,
		BarOffset: t.BarOffset,
		Lane:      t.Lane,
		Milestone: t.Milestone,
		State:     t.State.String(),
	}
	if t.Actual.Valid {
		out.Start, out.End = t.Actual.Start, t.Actual.End
	}
	if t.Baseline.Valid {
		out.Baseline = &Span{Start: t.Baseline.Start, End: t.Baseline.End}
	}
	if t.Data != nil {
		out.Label = t.Data.Label
	}
	if p := t.PrevMilestoneBaseline; p != nil {
		out.PrevMilestoneBaseline = p.ID
	}
	if n := t.NextMilestoneBaseline; n != nil {
		out.NextMilestoneBaseline = n.ID
	}
	return out
}

// =============================================================================
// Diff summary
// =============================================================================

// Change is one reconciliation instruction without object references.
type Change struct {
	Kind   string `json:"kind" bson:"kind"`
	Action string `json:"action" bson:"action"`
	ID     string `json:"id" bson:"id"`
	// From is the previous owning row of a migrated task.
	From string `json:"from,omitempty" bson:"from,omitempty"`
}

// DiffSummary is a serializable diff.Result.
type DiffSummary struct {
	Rows         diff.Counts `json:"rows" bson:"rows"`
	Tasks        diff.Counts `json:"tasks" bson:"tasks"`
	Dependencies diff.Counts `json:"dependencies" bson:"dependencies"`
	Changes      []Change    `json:"changes,omitempty" bson:"changes,omitempty"`
}

// Summarize converts res. Exist instructions are counted but not listed
// unless all is set.
func Summarize(res *diff.Result, all bool) DiffSummary {
	if res == nil {
		return DiffSummary{}
	}
	s := DiffSummary{Rows: res.Rows, Tasks: res.Tasks, Dependencies: res.Dependencies}
	for _, in := range res.Instructions {
		if in.Action == layout.StateExist && !all {
			continue
		}
		c := Change{Kind: in.Kind.String(), Action: in.Action.String(), ID: in.ID}
		if in.Action == layout.StateMigrate {
			if old, ok := in.Old.(*layout.TaskLayout); ok && old.Row != nil {
				c.From = old.Row.ID
			}
		}
		s.Changes = append(s.Changes, c)
	}
	return s
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal encodes v as indented JSON.
func Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// UnmarshalSnapshot decodes a snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

// WriteFile writes v as JSON to path.
func WriteFile(v any, path string) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSnapshotFile reads a snapshot written by WriteFile.
func ReadSnapshotFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalSnapshot(data)
}
