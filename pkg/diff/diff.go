// Package diff compares two layout generations and produces the instruction
// list an external renderer applies to its retained display objects.
//
// Diff classifies every row, task and dependency of both generations by id:
//
//   - add: present only in the new generation
//   - exist: present in both (for tasks, still owned by the same row id)
//   - migrate: a task present in both whose owning row id changed
//   - delete: present only in the previous generation
//
// The four classes partition the union of ids of each kind. New objects are
// tagged in place and point at their predecessor through Old. Reconcile then
// moves display handles from old objects onto their successors so each id
// keeps exactly one live handle.
package diff

import (
	"iter"

	"github.com/matzehuels/timelane/pkg/layout"
)

// Instruction is one step of the reconciliation protocol.
type Instruction struct {
	Kind   layout.Kind
	Action layout.RenderState
	ID     string
	// Old is the previous generation's object; nil for add.
	Old layout.Object
	// New is the current generation's object; nil for delete.
	New layout.Object
	// Handle is filled by Reconcile: the transferred handle for
	// exist/migrate, the orphaned handle for delete.
	Handle any
}

// Counts tallies instructions of one kind by action.
type Counts struct {
	Add     int `json:"add"`
	Exist   int `json:"exist"`
	Migrate int `json:"migrate"`
	Delete  int `json:"delete"`
}

// Total returns the number of distinct ids.
func (c Counts) Total() int { return c.Add + c.Exist + c.Migrate + c.Delete }

// Changed reports whether anything other than exist occurred.
func (c Counts) Changed() bool { return c.Add+c.Migrate+c.Delete > 0 }

func (c *Counts) inc(a layout.RenderState) {
	switch a {
	case layout.StateAdd:
		c.Add++
	case layout.StateExist:
		c.Exist++
	case layout.StateMigrate:
		c.Migrate++
	case layout.StateDelete:
		c.Delete++
	}
}

// Result is the outcome of Diff.
type Result struct {
	// Instructions lists deletes of each kind before the objects of the new
	// generation, rows first, then tasks, then dependencies.
	Instructions []Instruction

	Rows         Counts
	Tasks        Counts
	Dependencies Counts

	DeletedRows         []*layout.RowLayout
	DeletedTasks        []*layout.TaskLayout
	DeletedDependencies []*layout.DependencyLayout
}

// Counts returns the tally for kind.
func (r *Result) Counts(kind layout.Kind) Counts {
	switch kind {
	case layout.KindRow:
		return r.Rows
	case layout.KindTask:
		return r.Tasks
	}
	return r.Dependencies
}

// Changed reports whether the new generation differs from the previous one
// in any id or task ownership.
func (r *Result) Changed() bool {
	return r.Rows.Changed() || r.Tasks.Changed() || r.Dependencies.Changed()
}

// Select iterates the instructions of kind with the given action.
func (r *Result) Select(kind layout.Kind, action layout.RenderState) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		for _, in := range r.Instructions {
			if in.Kind == kind && in.Action == action && !yield(in) {
				return
			}
		}
	}
}

// IDs collects the ids of the instructions of kind with the given action.
func (r *Result) IDs(kind layout.Kind, action layout.RenderState) []string {
	var ids []string
	for in := range r.Select(kind, action) {
		ids = append(ids, in.ID)
	}
	return ids
}

func (r *Result) add(in Instruction) {
	r.Instructions = append(r.Instructions, in)
	switch in.Kind {
	case layout.KindRow:
		r.Rows.inc(in.Action)
	case layout.KindTask:
		r.Tasks.inc(in.Action)
	case layout.KindDependency:
		r.Dependencies.inc(in.Action)
	}
}
