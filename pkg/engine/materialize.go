package engine

import (
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/viewport"
)

// Materializer creates the display handle for a layout object that does not
// have one yet.
type Materializer interface {
	Materialize(obj layout.Object) (any, error)
}

// MaterializerFunc adapts a function to Materializer.
type MaterializerFunc func(obj layout.Object) (any, error)

// Materialize implements Materializer.
func (f MaterializerFunc) Materialize(obj layout.Object) (any, error) { return f(obj) }

// EnsureMaterialized attaches a display handle to obj unless it already has
// one. Without a registered Materializer it fails with UNSUPPORTED. A nil
// object, including a typed nil layout pointer, is a no-op.
func (e *Engine) EnsureMaterialized(obj layout.Object) error {
	if isNil(obj) || obj.Handle() != nil {
		return nil
	}
	if e.mat == nil {
		return errors.New(errors.ErrCodeUnsupported, "no materializer registered")
	}

	h, err := e.mat.Materialize(obj)
	e.hooks.OnMaterialize(obj.Kind().String(), obj.ObjectID(), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "materialize %s %q", obj.Kind(), obj.ObjectID())
	}
	obj.SetHandle(h)
	return nil
}

// MaterializeRange ensures handles for the rows in r, their tasks, and the
// dependencies crossing r. It returns the number of handles created. Rows
// of r past the end of the current generation are ignored.
func (e *Engine) MaterializeRange(r viewport.Range) (int, error) {
	if e.current == nil || r.Empty() || r.Min >= len(e.current.Rows) {
		return 0, nil
	}
	r.Max = min(r.Max, len(e.current.Rows)-1)
	created := 0
	ensure := func(obj layout.Object) error {
		had := obj.Handle() != nil
		if err := e.EnsureMaterialized(obj); err != nil {
			return err
		}
		if !had {
			created++
		}
		return nil
	}

	for _, row := range e.current.Rows[r.Min : r.Max+1] {
		if err := ensure(row); err != nil {
			return created, err
		}
		for _, t := range row.Tasks {
			if err := ensure(t); err != nil {
				return created, err
			}
		}
	}
	for _, d := range e.FindVisibleDependencies(r) {
		if err := ensure(d); err != nil {
			return created, err
		}
	}
	return created, nil
}

func isNil(obj layout.Object) bool {
	switch o := obj.(type) {
	case nil:
		return true
	case *layout.RowLayout:
		return o == nil
	case *layout.TaskLayout:
		return o == nil
	case *layout.DependencyLayout:
		return o == nil
	}
	return false
}
