// Package setalgebra implements cross-tree duplicate queries over a list
// of PropertyTrees: which sizes/fingerprints are repeated, present on
// every tree, or present on the first tree and nowhere/somewhere else.
package setalgebra

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/filetree"
	"github.com/mrsimoes/lnsyncgo/pkg/logging"
	"github.com/mrsimoes/lnsyncgo/pkg/proptree"
)

var log = logging.RootLogger.Sublogger("setalgebra")

// Group is one fingerprint-equivalence class located across a list of
// trees: for each tree that contributed at least one file, the files it
// contributed. HasFingerprint is false only for the GroupsOnFirstOnly
// shortcut case where a file's size alone already proves uniqueness and
// computing its fingerprint was skipped.
type Group struct {
	Fingerprint    int64
	HasFingerprint bool
	ByTree         map[*proptree.PropertyTree][]*filetree.File
}

// filesAtSize returns pt's files of the given size, or every file in the
// tree when size is nil (the whole-set mode used when the tree's hasher
// doesn't depend on size). It runs a full walk first so the size index is
// complete.
func filesAtSize(pt *proptree.PropertyTree, size *int64) ([]*filetree.File, error) {
	all, err := pt.Tree.WalkFiles(nil)
	if err != nil {
		return nil, err
	}
	if size == nil {
		return all, nil
	}
	return pt.Tree.SizeToFiles(*size), nil
}

// fingerprintOf returns a file's fingerprint, logging and skipping files
// that can't be fingerprinted (no path, or a hashing failure) rather than
// aborting the whole query, mirroring the original's "ignore and warn"
// policy for individual bad files.
func fingerprintOf(pt *proptree.PropertyTree, f *filetree.File) (int64, bool) {
	paths := f.Paths()
	if len(paths) == 0 {
		return 0, false
	}
	fp, err := pt.GetFingerprint(f, paths[0])
	if err != nil {
		log.Warn(errors.Wrapf(err, "file id %d", f.ID))
		return 0, false
	}
	return fp, true
}

func sortedInt64s(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type treeCount struct {
	tree  *proptree.PropertyTree
	count int
}

// orderByFileCount sorts trees by ascending file count, so intersection
// passes start from the smallest candidate set (the short-circuit policy).
func orderByFileCount(trees []*proptree.PropertyTree) ([]*proptree.PropertyTree, error) {
	pairs := make([]treeCount, len(trees))
	for i, pt := range trees {
		files, err := pt.Tree.WalkFiles(nil)
		if err != nil {
			return nil, err
		}
		pairs[i] = treeCount{tree: pt, count: len(files)}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].count < pairs[j].count })
	ordered := make([]*proptree.PropertyTree, len(pairs))
	for i, p := range pairs {
		ordered[i] = p.tree
	}
	return ordered, nil
}

func locatedByProp(trees []*proptree.PropertyTree, prop int64, size *int64) (map[*proptree.PropertyTree][]*filetree.File, error) {
	located := make(map[*proptree.PropertyTree][]*filetree.File)
	for _, pt := range trees {
		files, err := filesAtSize(pt, size)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if p, ok := fingerprintOf(pt, f); ok && p == prop {
				located[pt] = append(located[pt], f)
			}
		}
	}
	return located, nil
}

// SizesWithDuplicates yields every size for which two or more files exist
// somewhere across all trees. If hardLinks is false, a single file with
// two or more paths already counts as a duplicate at that size.
func SizesWithDuplicates(trees []*proptree.PropertyTree, hardLinks bool) ([]int64, error) {
	seenOnce := make(map[int64]struct{})
	seenTwice := make(map[int64]struct{})
	var result []int64

	for _, pt := range trees {
		if _, err := pt.Tree.WalkFiles(nil); err != nil {
			return nil, err
		}
		for _, size := range pt.Tree.AllSizes() {
			if _, ok := seenTwice[size]; ok {
				continue
			}
			if _, ok := seenOnce[size]; ok {
				delete(seenOnce, size)
				seenTwice[size] = struct{}{}
				result = append(result, size)
				continue
			}
			files := pt.Tree.SizeToFiles(size)
			multi := len(files) > 1 || (!hardLinks && len(files[0].Paths()) > 1)
			if multi {
				seenTwice[size] = struct{}{}
				result = append(result, size)
			} else {
				seenOnce[size] = struct{}{}
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

func groupsOfDuplicates(trees []*proptree.PropertyTree, size *int64, hardLinks bool) ([]Group, error) {
	once := make(map[int64]map[*proptree.PropertyTree][]*filetree.File)
	twice := make(map[int64]map[*proptree.PropertyTree][]*filetree.File)
	var order []int64

	for _, pt := range trees {
		files, err := filesAtSize(pt, size)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			prop, ok := fingerprintOf(pt, f)
			if !ok {
				continue
			}
			if m, ok := twice[prop]; ok {
				m[pt] = append(m[pt], f)
				continue
			}
			if m, ok := once[prop]; ok {
				delete(once, prop)
				twice[prop] = m
				twice[prop][pt] = append(twice[prop][pt], f)
				order = append(order, prop)
				continue
			}
			if !hardLinks && len(f.Paths()) > 1 {
				twice[prop] = map[*proptree.PropertyTree][]*filetree.File{pt: {f}}
				order = append(order, prop)
			} else {
				once[prop] = map[*proptree.PropertyTree][]*filetree.File{pt: {f}}
			}
		}
	}

	groups := make([]Group, 0, len(order))
	for _, prop := range order {
		groups = append(groups, Group{Fingerprint: prop, HasFingerprint: true, ByTree: twice[prop]})
	}
	return groups, nil
}

// GroupsOfDuplicatesAtSize yields (fingerprint, located files) for every
// fingerprint with two or more members among files of the given size.
func GroupsOfDuplicatesAtSize(trees []*proptree.PropertyTree, size int64, hardLinks bool) ([]Group, error) {
	return groupsOfDuplicates(trees, &size, hardLinks)
}

// GroupsOfDuplicates is GroupsOfDuplicatesAtSize without a size pre-filter,
// for hashers whose DependsOnSize is false (size groups nothing for them).
func GroupsOfDuplicates(trees []*proptree.PropertyTree, hardLinks bool) ([]Group, error) {
	return groupsOfDuplicates(trees, nil, hardLinks)
}

// SizesOnAll returns every size present in every tree.
func SizesOnAll(trees []*proptree.PropertyTree) ([]int64, error) {
	if len(trees) == 0 {
		return nil, nil
	}
	ordered, err := orderByFileCount(trees)
	if err != nil {
		return nil, err
	}
	first, rest := ordered[0], ordered[1:]

	var result []int64
	for _, size := range first.Tree.AllSizes() {
		good := true
		for _, pt := range rest {
			if _, err := pt.Tree.WalkFiles(nil); err != nil {
				return nil, err
			}
			if len(pt.Tree.SizeToFiles(size)) == 0 {
				good = false
				break
			}
		}
		if good {
			result = append(result, size)
		}
	}
	return result, nil
}

func groupsOnAll(trees []*proptree.PropertyTree, size *int64) ([]Group, error) {
	if len(trees) == 0 {
		return nil, nil
	}
	ordered, err := orderByFileCount(trees)
	if err != nil {
		return nil, err
	}
	first, rest := ordered[0], ordered[1:]

	good := make(map[int64]struct{})
	firstFiles, err := filesAtSize(first, size)
	if err != nil {
		return nil, err
	}
	for _, f := range firstFiles {
		if prop, ok := fingerprintOf(first, f); ok {
			good[prop] = struct{}{}
		}
	}
	for _, pt := range rest {
		if len(good) == 0 {
			break
		}
		present := make(map[int64]struct{})
		files, err := filesAtSize(pt, size)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if prop, ok := fingerprintOf(pt, f); ok {
				present[prop] = struct{}{}
			}
		}
		for prop := range good {
			if _, ok := present[prop]; !ok {
				delete(good, prop)
			}
		}
	}

	groups := make([]Group, 0, len(good))
	for _, prop := range sortedInt64s(good) {
		located, err := locatedByProp(trees, prop, size)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Fingerprint: prop, HasFingerprint: true, ByTree: located})
	}
	return groups, nil
}

// GroupsOnAllAtSize returns the fingerprints, among files of the given
// size, present in every tree.
func GroupsOnAllAtSize(trees []*proptree.PropertyTree, size int64) ([]Group, error) {
	return groupsOnAll(trees, &size)
}

// GroupsOnAll is GroupsOnAllAtSize without a size pre-filter.
func GroupsOnAll(trees []*proptree.PropertyTree) ([]Group, error) {
	return groupsOnAll(trees, nil)
}

func groupsOnFirstOnly(trees []*proptree.PropertyTree, size *int64) ([]Group, error) {
	if len(trees) == 0 {
		return nil, nil
	}
	first := trees[0]
	firstFiles, err := filesAtSize(first, size)
	if err != nil {
		return nil, err
	}

	if size != nil && len(firstFiles) == 1 {
		unique := true
		for _, pt := range trees[1:] {
			files, err := filesAtSize(pt, size)
			if err != nil {
				return nil, err
			}
			if len(files) > 0 {
				unique = false
				break
			}
		}
		if unique {
			return []Group{{ByTree: map[*proptree.PropertyTree][]*filetree.File{first: firstFiles}}}, nil
		}
	}

	good := make(map[int64]struct{})
	for _, f := range firstFiles {
		if prop, ok := fingerprintOf(first, f); ok {
			good[prop] = struct{}{}
		}
	}
	for _, pt := range trees[1:] {
		if len(good) == 0 {
			break
		}
		files, err := filesAtSize(pt, size)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if prop, ok := fingerprintOf(pt, f); ok {
				delete(good, prop)
			}
		}
	}

	groups := make([]Group, 0, len(good))
	for _, prop := range sortedInt64s(good) {
		located, err := locatedByProp(trees[:1], prop, size)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Fingerprint: prop, HasFingerprint: true, ByTree: located})
	}
	return groups, nil
}

// GroupsOnFirstOnlyAtSize returns fingerprints, among files of the given
// size, present in the first tree and in none of the others.
func GroupsOnFirstOnlyAtSize(trees []*proptree.PropertyTree, size int64) ([]Group, error) {
	return groupsOnFirstOnly(trees, &size)
}

// GroupsOnFirstOnly is GroupsOnFirstOnlyAtSize without a size pre-filter.
func GroupsOnFirstOnly(trees []*proptree.PropertyTree) ([]Group, error) {
	return groupsOnFirstOnly(trees, nil)
}

func groupsOnFirstNotOnly(trees []*proptree.PropertyTree, size *int64) ([]Group, error) {
	if len(trees) < 2 {
		return nil, nil
	}
	first := trees[0]
	firstFiles, err := filesAtSize(first, size)
	if err != nil {
		return nil, err
	}

	candidates := make(map[int64]struct{})
	for _, f := range firstFiles {
		if prop, ok := fingerprintOf(first, f); ok {
			candidates[prop] = struct{}{}
		}
	}

	good := make(map[int64]struct{})
	for _, pt := range trees[1:] {
		if len(candidates) == 0 {
			break
		}
		files, err := filesAtSize(pt, size)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			prop, ok := fingerprintOf(pt, f)
			if !ok {
				continue
			}
			if _, ok := candidates[prop]; ok {
				delete(candidates, prop)
				good[prop] = struct{}{}
			}
		}
	}

	groups := make([]Group, 0, len(good))
	for _, prop := range sortedInt64s(good) {
		located, err := locatedByProp(trees, prop, size)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Fingerprint: prop, HasFingerprint: true, ByTree: located})
	}
	return groups, nil
}

// GroupsOnFirstNotOnlyAtSize returns fingerprints, among files of the
// given size, present in the first tree and in at least one other tree.
func GroupsOnFirstNotOnlyAtSize(trees []*proptree.PropertyTree, size int64) ([]Group, error) {
	return groupsOnFirstNotOnly(trees, &size)
}

// GroupsOnFirstNotOnly is GroupsOnFirstNotOnlyAtSize without a size
// pre-filter.
func GroupsOnFirstNotOnly(trees []*proptree.PropertyTree) ([]Group, error) {
	return groupsOnFirstNotOnly(trees, nil)
}
