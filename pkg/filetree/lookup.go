package filetree

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

func errTreeError(format string, args ...any) error {
	return errors.Wrapf(lnsyncerr.ErrTreeError, format, args...)
}

// PathToItem resolves a path relative to the tree root, scanning
// directories along the way on demand. It returns nil if the path doesn't
// exist.
func (t *Tree) PathToItem(relPath string) (*Item, error) {
	relPath = filepath.Clean(relPath)
	if relPath == "." || relPath == "" {
		root := t.RootDir()
		return &Item{Dir: root}, nil
	}

	idx := dirIndex(0)
	components := strings.Split(relPath, string(filepath.Separator))
	for i, name := range components {
		if err := t.ensureScanned(idx); err != nil {
			return nil, err
		}
		ref, ok := t.dirByIndex(idx).children[name]
		if !ok {
			return nil, nil
		}
		if i == len(components)-1 {
			item := itemFromRef(t, ref)
			return &item, nil
		}
		if ref.isFile {
			return nil, errTreeError("%s: not a directory", filepath.Join(components[:i+1]...))
		}
		idx = ref.dir
	}
	return nil, nil
}

// SizeToFiles returns every file of the given size found so far. It is
// only complete once every directory that could contain a file of that
// size has been scanned; the design leaves that obligation to the caller
// (typically: a full WalkFiles first).
func (t *Tree) SizeToFiles(size int64) []*File {
	indices := t.sizeIndex[size]
	files := make([]*File, 0, len(indices))
	for _, idx := range indices {
		files = append(files, t.fileByIndex(idx))
	}
	return files
}

// AllSizes returns every distinct file size indexed so far, in ascending
// order. Meaningful only after a full WalkFiles, per the same
// scan-completeness caveat as SizeToFiles.
func (t *Tree) AllSizes() []int64 {
	sizes := make([]int64, 0, len(t.sizeIndex))
	for size := range t.sizeIndex {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	return sizes
}

// FileByID returns the file with the given id, if the tree has
// encountered it during scanning.
func (t *Tree) FileByID(id int64) (*File, bool) {
	ref, ok := t.idIndex[id]
	if !ok || !ref.isFile {
		return nil, false
	}
	return t.fileByIndex(ref.file), true
}

// ChildEntry is one entry of a directory's listing, as needed to write an
// offline snapshot's dir_contents table.
type ChildEntry struct {
	Basename string
	ID       int64
	IsFile   bool
}

// DirEntries scans dir on demand and returns its children.
func (t *Tree) DirEntries(dir *Dir) ([]ChildEntry, error) {
	idx, err := t.indexOfDir(dir)
	if err != nil {
		return nil, err
	}
	if err := t.ensureScanned(idx); err != nil {
		return nil, err
	}
	children := t.dirByIndex(idx).children
	entries := make([]ChildEntry, 0, len(children))
	for name, ref := range children {
		if ref.isFile {
			entries = append(entries, ChildEntry{Basename: name, ID: t.fileByIndex(ref.file).ID, IsFile: true})
		} else {
			entries = append(entries, ChildEntry{Basename: name, ID: t.dirByIndex(ref.dir).ID, IsFile: false})
		}
	}
	return entries, nil
}

// LiveFileIDs returns the set of file ids currently indexed by the tree.
// Meaningful only after a full WalkFiles, per the same scan-completeness
// caveat as SizeToFiles.
func (t *Tree) LiveFileIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(t.files))
	for _, f := range t.files {
		ids[f.ID] = struct{}{}
	}
	return ids
}

// AllDirs returns every directory arena entry created so far (requires a
// prior full WalkPaths with includeDirs to be complete).
func (t *Tree) AllDirs() []*Dir {
	dirs := make([]*Dir, len(t.dirs))
	for i := range t.dirs {
		dirs[i] = &t.dirs[i]
	}
	return dirs
}
