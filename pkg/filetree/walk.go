package filetree

import "path/filepath"

// WalkFiles yields each file in the subtree rooted at top (the tree root
// if top is nil) exactly once, regardless of how many hard-linked paths it
// has.
func (t *Tree) WalkFiles(top *Dir) ([]*File, error) {
	startIdx := dirIndex(0)
	if top != nil {
		idx, err := t.indexOfDir(top)
		if err != nil {
			return nil, err
		}
		startIdx = idx
	}

	var files []*File
	seen := make(map[fileIndex]struct{})
	err := t.walkDirs(startIdx, func(idx dirIndex) error {
		if err := t.ensureScanned(idx); err != nil {
			return err
		}
		for _, ref := range t.dirByIndex(idx).children {
			if !ref.isFile {
				continue
			}
			if _, ok := seen[ref.file]; ok {
				continue
			}
			seen[ref.file] = struct{}{}
			files = append(files, t.fileByIndex(ref.file))
		}
		return nil
	})
	return files, err
}

func (t *Tree) walkDirs(idx dirIndex, visit func(dirIndex) error) error {
	if err := visit(idx); err != nil {
		return err
	}
	if err := t.ensureScanned(idx); err != nil {
		return err
	}
	for _, ref := range t.dirByIndex(idx).children {
		if ref.isFile {
			continue
		}
		if err := t.walkDirs(ref.dir, visit); err != nil {
			return err
		}
	}
	return nil
}

// WalkEntry is one yielded item from WalkPaths: the item itself, its
// parent directory, and its path relative to the tree root.
type WalkEntry struct {
	Item    Item
	Parent  *Dir
	RelPath string
}

// WalkPaths yields every path in the subtree rooted at top (the tree root
// if nil), subject to recurse/dirs/files filters. In bottom-up mode
// (topDown == false), a directory's entries are yielded before the
// directory itself.
func (t *Tree) WalkPaths(top *Dir, recurse, includeDirs, includeFiles, topDown bool) ([]WalkEntry, error) {
	startIdx := dirIndex(0)
	if top != nil {
		idx, err := t.indexOfDir(top)
		if err != nil {
			return nil, err
		}
		startIdx = idx
	}

	var entries []WalkEntry
	var visit func(idx dirIndex, relPath string) error
	visit = func(idx dirIndex, relPath string) error {
		if err := t.ensureScanned(idx); err != nil {
			return err
		}
		dir := t.dirByIndex(idx)

		selfEntry := func() {
			if idx != 0 && includeDirs {
				entries = append(entries, WalkEntry{
					Item:    Item{Dir: dir},
					Parent:  t.dirByIndex(dir.parent),
					RelPath: relPath,
				})
			}
		}

		if topDown {
			selfEntry()
		}

		for name, ref := range dir.children {
			childPath := filepath.Join(relPath, name)
			if ref.isFile {
				if includeFiles {
					entries = append(entries, WalkEntry{
						Item:    Item{File: t.fileByIndex(ref.file)},
						Parent:  dir,
						RelPath: childPath,
					})
				}
				continue
			}
			if !recurse {
				if includeDirs {
					entries = append(entries, WalkEntry{
						Item:    Item{Dir: t.dirByIndex(ref.dir)},
						Parent:  dir,
						RelPath: childPath,
					})
				}
				continue
			}
			if err := visit(ref.dir, childPath); err != nil {
				return err
			}
		}

		if !topDown {
			selfEntry()
		}
		return nil
	}

	if err := visit(startIdx, ""); err != nil {
		return nil, err
	}
	return entries, nil
}

// indexOfDir resolves a *Dir back to its arena index via its stable id,
// rather than via pointer identity: the dirs arena can reallocate on
// growth, which would leave a pointer captured before the last append
// pointing at stale memory.
func (t *Tree) indexOfDir(d *Dir) (dirIndex, error) {
	ref, ok := t.idIndex[d.ID]
	if !ok || ref.isFile {
		return 0, errTreeError("directory does not belong to this tree")
	}
	return ref.dir, nil
}
