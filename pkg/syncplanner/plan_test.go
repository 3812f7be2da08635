package syncplanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
	"github.com/mrsimoes/lnsyncgo/pkg/filetree"
	"github.com/mrsimoes/lnsyncgo/pkg/hashing"
	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
	"github.com/mrsimoes/lnsyncgo/pkg/proptree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func newPropTree(t *testing.T, root string) *proptree.PropertyTree {
	t.Helper()
	store, err := cachestore.Open(filepath.Join(t.TempDir(), "lnsync-000.db"))
	if err != nil {
		t.Fatalf("cachestore.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tree, err := filetree.NewOnline(root, filetree.Config{})
	if err != nil {
		t.Fatalf("filetree.NewOnline failed: %v", err)
	}
	return proptree.New(tree, store, hashing.New())
}

func opsOfKind(ops []Operation, kind OpKind) []Operation {
	var out []Operation
	for _, op := range ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// TestPlanSimpleRename tests that a single file moved to a new name on
// the source side produces exactly one move on the target side.
func TestPlanSimpleRename(t *testing.T) {
	srcRoot, tgtRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "new-name.txt"), "identical contents")
	writeFile(t, filepath.Join(tgtRoot, "old-name.txt"), "identical contents")

	src, tgt := newPropTree(t, srcRoot), newPropTree(t, tgtRoot)

	plan, err := Compute(src, tgt)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	moves := opsOfKind(plan.Operations, OpMove)
	if len(moves) != 1 || moves[0].From != "old-name.txt" || moves[0].To != "new-name.txt" {
		t.Fatalf("expected one move old-name.txt -> new-name.txt, got %v", plan.Operations)
	}
}

// TestPlanNoOp tests that identical layouts produce an empty plan.
func TestPlanNoOp(t *testing.T) {
	srcRoot, tgtRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "a.txt"), "same")
	writeFile(t, filepath.Join(tgtRoot, "a.txt"), "same")

	src, tgt := newPropTree(t, srcRoot), newPropTree(t, tgtRoot)

	plan, err := Compute(src, tgt)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Operations) != 0 {
		t.Fatalf("expected no operations, got %v", plan.Operations)
	}
}

// TestPlanHardLinkLeftoverEmitsLink tests that a file with an extra
// source-side path produces a link (not a move), anchored on the path
// already common to both sides.
func TestPlanHardLinkLeftoverEmitsLink(t *testing.T) {
	srcRoot, tgtRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "shared.txt"), "same content")
	if err := os.Link(filepath.Join(srcRoot, "shared.txt"), filepath.Join(srcRoot, "extra.txt")); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}
	writeFile(t, filepath.Join(tgtRoot, "shared.txt"), "same content")

	src, tgt := newPropTree(t, srcRoot), newPropTree(t, tgtRoot)

	plan, err := Compute(src, tgt)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	links := opsOfKind(plan.Operations, OpLink)
	if len(links) != 1 || links[0].From != "shared.txt" || links[0].To != "extra.txt" {
		t.Fatalf("expected one link shared.txt -> extra.txt, got %v", plan.Operations)
	}
}

// TestPlanSwapCycleReturnsPlanImpossible tests that a straight 2-cycle
// (two single-path files that have swapped paths) is rejected rather
// than silently mis-executed.
func TestPlanSwapCycleReturnsPlanImpossible(t *testing.T) {
	srcRoot, tgtRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcRoot, "p"), "alpha")
	writeFile(t, filepath.Join(srcRoot, "q"), "beta12")
	writeFile(t, filepath.Join(tgtRoot, "p"), "beta12")
	writeFile(t, filepath.Join(tgtRoot, "q"), "alpha")

	src, tgt := newPropTree(t, srcRoot), newPropTree(t, tgtRoot)

	_, err := Compute(src, tgt)
	if !errors.Is(err, lnsyncerr.ErrPlanImpossible) {
		t.Fatalf("expected ErrPlanImpossible, got %v", err)
	}
}
