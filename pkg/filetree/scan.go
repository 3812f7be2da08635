package filetree

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/globmatch"
	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

// dirPath reconstructs the path of the directory at idx, relative to the
// tree root, by walking parent indices up to the root (name == "").
func (t *Tree) dirPath(idx dirIndex) string {
	if idx == 0 {
		return ""
	}
	dir := t.dirByIndex(idx)
	parent := t.dirPath(dir.parent)
	if parent == "" {
		return dir.name
	}
	return filepath.Join(parent, dir.name)
}

// ensureScanned scans the directory at idx on demand, populating its
// children. Already-scanned directories are a no-op.
func (t *Tree) ensureScanned(idx dirIndex) error {
	dir := t.dirByIndex(idx)
	if dir.scanned {
		return nil
	}
	var err error
	if t.backend.online {
		err = t.scanOnline(idx)
	} else {
		err = t.scanOffline(idx)
	}
	if err != nil {
		return err
	}
	t.dirByIndex(idx).scanned = true
	return nil
}

func (t *Tree) scanOnline(idx dirIndex) error {
	dir := t.dirByIndex(idx)
	matcher := dir.matcher
	if matcher == nil {
		matcher = globmatch.AllowAll
	}
	relDir := t.dirPath(idx)
	absDir := filepath.Join(t.backend.root, relDir)

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return errors.Wrapf(lnsyncerr.ErrTreeError, "unable to scan directory %s: %v", relDir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		info, err := entry.Info()
		if err != nil {
			log.Warn(errors.Wrapf(err, "unable to stat %s", filepath.Join(relDir, name)))
			continue
		}
		mode := info.Mode()

		if mode&fs.ModeSymlink != 0 {
			continue // symlinks are always Other: never indexed, never followed
		}
		if mode.IsDir() {
			if matcher.Classify(name, true) == globmatch.ExcludeDir {
				continue
			}
			t.addOnlineDir(idx, name, filepath.Join(absDir, name), info, matcher)
			continue
		}
		if !mode.IsRegular() {
			continue // Other: device files, sockets, etc.
		}
		if mode.Perm()&0o444 == 0 {
			continue // Other: unreadable
		}
		if matcher.Classify(name, false) == globmatch.ExcludeFile {
			continue
		}
		if t.Config.SkipEmpty && info.Size() == 0 {
			continue
		}
		if t.Config.MaxSize > 0 && info.Size() > t.Config.MaxSize {
			continue
		}
		if err := t.addOnlineFile(idx, name, filepath.Join(absDir, name), info); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) addOnlineDir(parent dirIndex, name, absPath string, info os.FileInfo, parentMatcher globmatch.Matcher) {
	id, err := t.backend.idProv.GetID(absPath, info)
	if err != nil {
		log.Warn(errors.Wrapf(err, "unable to identify directory %s", absPath))
		return
	}
	childIdx := dirIndex(len(t.dirs))
	t.dirs = append(t.dirs, Dir{
		ID:       id,
		parent:   parent,
		name:     name,
		children: make(map[string]itemRef),
		matcher:  parentMatcher.Descend(name),
	})
	t.dirByIndex(parent).children[name] = itemRef{isFile: false, dir: childIdx}
	t.idIndex[id] = itemRef{isFile: false, dir: childIdx}
}

func (t *Tree) addOnlineFile(parent dirIndex, name, absPath string, info os.FileInfo) error {
	id, err := t.backend.idProv.GetID(absPath, info)
	if err != nil {
		return errors.Wrapf(lnsyncerr.ErrTreeError, "unable to identify file %s: %v", absPath, err)
	}

	relPath := filepath.Join(t.dirPath(parent), name)
	if ref, ok := t.idIndex[id]; ok && ref.isFile {
		file := t.fileByIndex(ref.file)
		file.paths[relPath] = struct{}{}
		t.dirByIndex(parent).children[name] = ref
		return nil
	}

	fileIdx := fileIndex(len(t.files))
	t.files = append(t.files, File{
		ID:    id,
		Size:  info.Size(),
		Stamp: stampFromInfo(info),
		paths: map[string]struct{}{relPath: {}},
	})
	ref := itemRef{isFile: true, file: fileIdx}
	t.dirByIndex(parent).children[name] = ref
	t.idIndex[id] = ref
	t.sizeIndex[info.Size()] = append(t.sizeIndex[info.Size()], fileIdx)
	return nil
}

func (t *Tree) scanOffline(idx dirIndex) error {
	dir := t.dirByIndex(idx)
	entries, err := t.backend.store.GetDirEntries(dir.ID)
	if err != nil {
		return err
	}
	relDir := t.dirPath(idx)

	for _, entry := range entries {
		if entry.IsFile {
			stamp, ok, err := t.backend.store.GetOfflineMetadata(entry.ObjID)
			if err != nil {
				return err
			}
			if !ok {
				continue // metadata missing: treat as not present offline
			}
			if t.Config.SkipEmpty && stamp.Size == 0 {
				continue
			}
			if t.Config.MaxSize > 0 && stamp.Size > t.Config.MaxSize {
				continue
			}
			relPath := filepath.Join(relDir, entry.Basename)
			if ref, ok := t.idIndex[entry.ObjID]; ok && ref.isFile {
				t.fileByIndex(ref.file).paths[relPath] = struct{}{}
				t.dirByIndex(idx).children[entry.Basename] = ref
				continue
			}
			fileIdx := fileIndex(len(t.files))
			t.files = append(t.files, File{
				ID:    entry.ObjID,
				Size:  stamp.Size,
				Stamp: stamp,
				paths: map[string]struct{}{relPath: {}},
			})
			ref := itemRef{isFile: true, file: fileIdx}
			t.dirByIndex(idx).children[entry.Basename] = ref
			t.idIndex[entry.ObjID] = ref
			t.sizeIndex[stamp.Size] = append(t.sizeIndex[stamp.Size], fileIdx)
			continue
		}

		childIdx := dirIndex(len(t.dirs))
		t.dirs = append(t.dirs, Dir{
			ID:       entry.ObjID,
			parent:   idx,
			name:     entry.Basename,
			children: make(map[string]itemRef),
		})
		t.dirByIndex(idx).children[entry.Basename] = itemRef{isFile: false, dir: childIdx}
		t.idIndex[entry.ObjID] = itemRef{isFile: false, dir: childIdx}
	}
	return nil
}
