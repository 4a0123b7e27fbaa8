package diff

import (
	"github.com/matzehuels/timelane/pkg/layout"
)

// Diff classifies the objects of next against prev and tags next in place.
//
// prev may be nil, in which case everything is added. prev is only read,
// except where the two generations share an object (as they do after a
// patch): shared objects are tagged exist and keep a nil Old.
func Diff(prev, next *layout.Generation) *Result {
	if next == nil {
		next = layout.Empty()
	}
	var (
		prevRows  []*layout.RowLayout
		prevTasks []*layout.TaskLayout
		prevDeps  []*layout.DependencyLayout
	)
	if prev != nil {
		prevRows, prevTasks, prevDeps = prev.Rows, prev.Tasks(), prev.Dependencies
	}
	return diffObjects(prevRows, prevTasks, prevDeps, next)
}

// DiffRows is Diff against a snapshot of a generation's rows and
// dependencies, taken before the generation was patched in place.
func DiffRows(prevRows []*layout.RowLayout, prevDeps []*layout.DependencyLayout, next *layout.Generation) *Result {
	var prevTasks []*layout.TaskLayout
	for _, r := range prevRows {
		prevTasks = append(prevTasks, r.Tasks...)
	}
	return diffObjects(prevRows, prevTasks, prevDeps, next)
}

func diffObjects(prevRows []*layout.RowLayout, prevTasks []*layout.TaskLayout, prevDeps []*layout.DependencyLayout, next *layout.Generation) *Result {
	res := &Result{}

	res.DeletedRows = classify(res, layout.KindRow, prevRows, next.Rows,
		func(r, old *layout.RowLayout, s layout.RenderState) { r.State, r.Old = s, old },
		nil)

	res.DeletedTasks = classify(res, layout.KindTask, prevTasks, next.Tasks(),
		func(t, old *layout.TaskLayout, s layout.RenderState) { t.State, t.Old = s, old },
		func(old, t *layout.TaskLayout) bool { return ownerID(old) != ownerID(t) })

	res.DeletedDependencies = classify(res, layout.KindDependency, prevDeps, next.Dependencies,
		func(d, old *layout.DependencyLayout, s layout.RenderState) { d.State, d.Old = s, old },
		nil)

	return res
}

type object interface {
	layout.Object
	comparable
}

// classify runs the set algebra for one id space, appending delete
// instructions for prev-only ids followed by one instruction per object of
// next. It returns the deleted objects.
func classify[T object](res *Result, kind layout.Kind, prev, next []T, tag func(obj, old T, s layout.RenderState), moved func(old, obj T) bool) []T {
	var zero T

	byID := make(map[string]T, len(prev))
	for _, o := range prev {
		byID[o.ObjectID()] = o
	}
	live := make(map[string]struct{}, len(next))
	for _, n := range next {
		live[n.ObjectID()] = struct{}{}
	}

	var deleted []T
	for _, o := range prev {
		id := o.ObjectID()
		if _, ok := live[id]; ok {
			continue
		}
		deleted = append(deleted, o)
		res.add(Instruction{Kind: kind, Action: layout.StateDelete, ID: id, Old: o})
	}

	for _, n := range next {
		id := n.ObjectID()
		o, ok := byID[id]
		switch {
		case !ok:
			tag(n, zero, layout.StateAdd)
			res.add(Instruction{Kind: kind, Action: layout.StateAdd, ID: id, New: n})
		case o == n:
			tag(n, zero, layout.StateExist)
			res.add(Instruction{Kind: kind, Action: layout.StateExist, ID: id, Old: o, New: n})
		default:
			s := layout.StateExist
			if moved != nil && moved(o, n) {
				s = layout.StateMigrate
			}
			tag(n, o, s)
			res.add(Instruction{Kind: kind, Action: s, ID: id, Old: o, New: n})
		}
	}
	return deleted
}

func ownerID(t *layout.TaskLayout) string {
	if t.Row == nil {
		return ""
	}
	return t.Row.ID
}
