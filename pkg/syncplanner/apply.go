package syncplanner

import (
	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/filetree"
)

// Apply runs p's operations against target in order, stopping at the
// first failure. The tree (and, when the tree has Writeback enabled, the
// filesystem under it) is left exactly as far along as the operations got; resuming a
// partially-applied plan is the caller's responsibility, typically by
// replanning from the tree's current state.
func Apply(target *filetree.Tree, p *Plan) error {
	for _, op := range p.Operations {
		item, err := target.PathToItem(op.From)
		if err != nil {
			return err
		}
		if item == nil || !item.IsFile() {
			return errors.Errorf("syncplanner: %s source %q is not a file", op.Kind, op.From)
		}

		log.Debugf("%s %s -> %s", op.Kind, op.From, op.To)
		switch op.Kind {
		case OpMove:
			err = target.MovePath(item.File, op.From, op.To)
		case OpLink:
			err = target.AddLink(item.File, op.To)
		case OpUnlink:
			err = target.UnlinkPath(item.File, op.From)
		}
		if err != nil {
			return errors.Wrapf(err, "applying %s %s -> %s", op.Kind, op.From, op.To)
		}
	}
	return nil
}
