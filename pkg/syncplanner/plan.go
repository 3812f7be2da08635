// Package syncplanner computes reversible path-operation plans that
// reconcile a target PropertyTree's path layout with a source
// PropertyTree's, matching files purely by content (size and
// fingerprint), never by name.
package syncplanner

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
	"github.com/mrsimoes/lnsyncgo/pkg/logging"
	"github.com/mrsimoes/lnsyncgo/pkg/proptree"
)

var log = logging.RootLogger.Sublogger("syncplanner")

// Signature is a file's (size, fingerprint) pair. The planner only
// reconciles files whose signature is present in both trees; a file
// whose signature appears on only one side has no counterpart to
// reconcile against and is left untouched.
type Signature struct {
	Size        int64
	Fingerprint int64
}

// Plan is an ordered, reversible sequence of path operations that
// transform target's path layout to match source's.
type Plan struct {
	Operations []Operation
}

// Undo returns p's operations reversed, in the order they must be
// applied to undo the plan.
func (p *Plan) Undo() []Operation {
	undo := make([]Operation, len(p.Operations))
	for i, op := range p.Operations {
		undo[len(p.Operations)-1-i] = op.Undo()
	}
	return undo
}

// signatureGroups partitions pt's files by (size, fingerprint),
// computing each file's fingerprint online (the planner only ever
// operates on live trees).
func signatureGroups(pt *proptree.PropertyTree) (map[Signature]map[int64][]string, error) {
	files, err := pt.Tree.WalkFiles(nil)
	if err != nil {
		return nil, err
	}
	groups := make(map[Signature]map[int64][]string)
	for _, f := range files {
		paths := f.Paths()
		if len(paths) == 0 {
			continue
		}
		fp, err := pt.GetFingerprint(f, paths[0])
		if err != nil {
			return nil, errors.Wrapf(err, "fingerprinting file id %d", f.ID)
		}
		sig := Signature{Size: f.Size, Fingerprint: fp}
		if groups[sig] == nil {
			groups[sig] = make(map[int64][]string)
		}
		groups[sig][f.ID] = append([]string(nil), paths...)
	}
	return groups, nil
}

// Compute computes the operations that reconcile target's paths with
// source's, one signature group at a time, in ascending (size,
// fingerprint) order. It returns lnsyncerr.ErrPlanImpossible, wrapped
// with the offending signature, if any group admits no acyclic move
// assignment.
func Compute(source, target *proptree.PropertyTree) (*Plan, error) {
	srcGroups, err := signatureGroups(source)
	if err != nil {
		return nil, err
	}
	tgtGroups, err := signatureGroups(target)
	if err != nil {
		return nil, err
	}

	var commonSigs []Signature
	for sig := range srcGroups {
		if _, ok := tgtGroups[sig]; ok {
			commonSigs = append(commonSigs, sig)
		}
	}
	sort.Slice(commonSigs, func(i, j int) bool {
		if commonSigs[i].Size != commonSigs[j].Size {
			return commonSigs[i].Size < commonSigs[j].Size
		}
		return commonSigs[i].Fingerprint < commonSigs[j].Fingerprint
	})

	graph := NewMoveGraph()
	var allOps []Operation

	for _, sig := range commonSigs {
		srcIDs, tgtIDs := srcGroups[sig], tgtGroups[sig]

		tgtQueue := make([]int64, 0, len(tgtIDs))
		for id := range tgtIDs {
			tgtQueue = append(tgtQueue, id)
		}
		sort.Slice(tgtQueue, func(i, j int) bool { return tgtQueue[i] < tgtQueue[j] })

		avail := make(map[int64]bool, len(srcIDs))
		for id := range srcIDs {
			avail[id] = true
		}

		state := &groupState{
			graph:    graph,
			tgtQueue: tgtQueue,
			tgtPaths: tgtIDs,
			srcPaths: srcIDs,
			availSrc: avail,
		}

		if !Search[groupDelta](state) {
			return nil, errors.Wrapf(lnsyncerr.ErrPlanImpossible,
				"signature size=%d fingerprint=%d", sig.Size, sig.Fingerprint)
		}
		for _, ops := range state.ops {
			allOps = append(allOps, ops...)
		}
	}

	ordered := orderOperations(allOps)
	log.Infof("planned %d operations across %d common signatures", len(ordered), len(commonSigs))
	return &Plan{Operations: ordered}, nil
}

// orderOperations assembles flat (unordered) operations into the final
// execution order: links first (vacating any destination already
// scheduled for unlinking ahead of the link that needs it), then moves
// per connected component from leaf to root, then whatever unlinks
// weren't already handled during the link phase.
func orderOperations(ops []Operation) []Operation {
	var links, moves, unlinks []Operation
	unlinkByPath := make(map[string]Operation)
	for _, op := range ops {
		switch op.Kind {
		case OpLink:
			links = append(links, op)
		case OpMove:
			moves = append(moves, op)
		case OpUnlink:
			unlinks = append(unlinks, op)
			unlinkByPath[op.From] = op
		}
	}

	handled := make(map[string]bool, len(unlinks))
	ordered := make([]Operation, 0, len(ops))
	for _, link := range links {
		if unlinkOp, ok := unlinkByPath[link.To]; ok && !handled[link.To] {
			ordered = append(ordered, unlinkOp)
			handled[link.To] = true
		}
		ordered = append(ordered, link)
	}

	moveGraph := NewMoveGraph()
	for _, mv := range moves {
		moveGraph.AddArrow(mv.From, mv.To)
	}
	for _, arrow := range moveGraph.LeafToRootOrder() {
		ordered = append(ordered, Operation{Kind: OpMove, From: arrow.From, To: arrow.To})
	}

	for _, unlinkOp := range unlinks {
		if !handled[unlinkOp.From] {
			ordered = append(ordered, unlinkOp)
		}
	}
	return ordered
}
