package diff

import "github.com/matzehuels/timelane/pkg/layout"

// Reconcile transfers display handles along the instruction list.
//
// For exist and migrate the old object's handle moves to the new object and
// the old object is cleared.
// Delete instructions record the handle left on the removed object so the
// renderer can dispose of it. Reconcile is idempotent.
func Reconcile(res *Result) {
	if res == nil {
		return
	}
	for i := range res.Instructions {
		in := &res.Instructions[i]
		switch in.Action {
		case layout.StateExist, layout.StateMigrate:
			if in.Old != nil && in.Old != in.New {
				if h := in.Old.Handle(); h != nil {
					in.New.SetHandle(h)
					in.Old.SetHandle(nil)
				}
			}
			in.Handle = in.New.Handle()
		case layout.StateDelete:
			in.Handle = in.Old.Handle()
		}
	}
}
