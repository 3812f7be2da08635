package setalgebra

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/mrsimoes/lnsyncgo/pkg/filetree"
	"github.com/mrsimoes/lnsyncgo/pkg/proptree"
)

// FormatOptions controls FormatGroups' rendering, mirroring the
// classic fdupes convention: one path per line, a blank line between
// groups.
type FormatOptions struct {
	// HardLinks, if false, prints every path alias for a hard-linked
	// file; if true, prints a single path per file (the lexicographically
	// first).
	HardLinks bool
	// SortBySize orders groups by ascending average file size instead of
	// the order they were supplied in.
	SortBySize bool
}

// FormatGroups writes groups to w, one file path per line, a blank line
// separating groups.
func FormatGroups(w io.Writer, groups []Group, opts FormatOptions) error {
	ordered := groups
	if opts.SortBySize {
		ordered = append([]Group(nil), groups...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return averageSize(ordered[i]) < averageSize(ordered[j])
		})
	}

	for i, group := range ordered {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := printGroup(w, group, opts.HardLinks); err != nil {
			return err
		}
	}
	return nil
}

func averageSize(g Group) float64 {
	var total int64
	var count int
	for _, files := range g.ByTree {
		for _, f := range files {
			total += f.Size
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func printGroup(w io.Writer, group Group, hardLinks bool) error {
	for tree, files := range group.ByTree {
		for _, f := range files {
			if err := printFile(w, tree, f, hardLinks); err != nil {
				return err
			}
		}
	}
	return nil
}

func printFile(w io.Writer, tree *proptree.PropertyTree, f *filetree.File, hardLinks bool) error {
	paths := f.Paths()
	sort.Strings(paths)
	for k, relPath := range paths {
		if k > 0 && hardLinks {
			break
		}
		full := filepath.Join(tree.Tree.Root(), relPath)
		if _, err := fmt.Fprintln(w, full); err != nil {
			return err
		}
	}
	return nil
}
