package filetree

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/globmatch"
	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
)

func (t *Tree) requireOnline(op string) error {
	if !t.backend.online {
		return errTreeError("%s is not supported on an offline tree", op)
	}
	return nil
}

// ensureDirPath returns the arena index for relDir, creating any missing
// intermediate directories (in memory, and on disk too if the tree is in
// writeback mode), mirroring the design's "creating intermediate
// directories during add_link/move_path is automatic."
func (t *Tree) ensureDirPath(relDir string) (dirIndex, error) {
	relDir = filepath.Clean(relDir)
	if relDir == "." || relDir == "" {
		return 0, nil
	}

	idx := dirIndex(0)
	built := ""
	for _, name := range strings.Split(relDir, string(filepath.Separator)) {
		if err := t.ensureScanned(idx); err != nil {
			return 0, err
		}
		dir := t.dirByIndex(idx)
		if ref, ok := dir.children[name]; ok {
			if ref.isFile {
				return 0, errTreeError("%s: not a directory", filepath.Join(built, name))
			}
			idx = ref.dir
			built = filepath.Join(built, name)
			continue
		}

		absPath := filepath.Join(t.backend.root, built, name)
		if t.Config.Writeback {
			if err := os.Mkdir(absPath, 0o755); err != nil && !os.IsExist(err) {
				return 0, errors.Wrap(lnsyncerr.ErrWritebackFailed, err.Error())
			}
		}
		id, err := t.backend.idProv.GetID(absPath, nil)
		if err != nil {
			return 0, errTreeError("unable to identify new directory %s: %v", absPath, err)
		}

		parentMatcher := dir.matcher
		if parentMatcher == nil {
			parentMatcher = globmatch.AllowAll
		}
		childIdx := dirIndex(len(t.dirs))
		t.dirs = append(t.dirs, Dir{
			ID:       id,
			parent:   idx,
			name:     name,
			children: make(map[string]itemRef),
			scanned:  true,
			matcher:  parentMatcher.Descend(name),
		})
		t.dirByIndex(idx).children[name] = itemRef{isFile: false, dir: childIdx}
		t.idIndex[id] = itemRef{isFile: false, dir: childIdx}

		idx = childIdx
		built = filepath.Join(built, name)
	}
	return idx, nil
}

func splitPath(relPath string) (dir, base string) {
	relPath = filepath.Clean(relPath)
	return filepath.Dir(relPath), filepath.Base(relPath)
}

func (t *Tree) absPath(relPath string) string {
	return filepath.Join(t.backend.root, relPath)
}

// MovePath moves file from an existing path to a new one. The new path's
// intermediate directories are created automatically.
func (t *Tree) MovePath(file *File, from, to string) error {
	if err := t.requireOnline("move_path"); err != nil {
		return err
	}
	if _, ok := file.paths[from]; !ok {
		return errTreeError("%s: not a current path of this file", from)
	}

	toDir, toBase := splitPath(to)
	toDirIdx, err := t.ensureDirPath(toDir)
	if err != nil {
		return err
	}
	if _, exists := t.dirByIndex(toDirIdx).children[toBase]; exists {
		return errTreeError("%s: destination path already occupied", to)
	}

	fromDir, fromBase := splitPath(from)
	fromDirIdx, err := t.ensureDirPath(fromDir)
	if err != nil {
		return err
	}
	ref := t.dirByIndex(fromDirIdx).children[fromBase]

	// In-memory first.
	delete(t.dirByIndex(fromDirIdx).children, fromBase)
	t.dirByIndex(toDirIdx).children[toBase] = ref
	delete(file.paths, from)
	file.paths[to] = struct{}{}

	if t.Config.Writeback {
		if err := os.Rename(t.absPath(from), t.absPath(to)); err != nil {
			return errors.Wrap(lnsyncerr.ErrWritebackFailed, err.Error())
		}
	}
	return nil
}

// AddLink adds a new hard-linked path to file. Forbidden if file currently
// has no paths at all (a file with zero paths has left the tree).
func (t *Tree) AddLink(file *File, to string) error {
	if err := t.requireOnline("add_link"); err != nil {
		return err
	}
	if len(file.paths) == 0 {
		return errTreeError("cannot link a file with no existing paths")
	}

	var existing string
	for p := range file.paths {
		existing = p
		break
	}

	toDir, toBase := splitPath(to)
	toDirIdx, err := t.ensureDirPath(toDir)
	if err != nil {
		return err
	}
	if _, exists := t.dirByIndex(toDirIdx).children[toBase]; exists {
		return errTreeError("%s: destination path already occupied", to)
	}

	id := file.ID
	ref, ok := t.idIndex[id]
	if !ok {
		return errTreeError("file is no longer indexed by id %d", id)
	}

	t.dirByIndex(toDirIdx).children[toBase] = ref
	file.paths[to] = struct{}{}

	if t.Config.Writeback {
		if err := os.Link(t.absPath(existing), t.absPath(to)); err != nil {
			return errors.Wrap(lnsyncerr.ErrWritebackFailed, err.Error())
		}
	}
	return nil
}

// UnlinkPath removes one path to file. Forbidden if at is the file's only
// remaining path.
func (t *Tree) UnlinkPath(file *File, at string) error {
	if err := t.requireOnline("unlink_path"); err != nil {
		return err
	}
	if _, ok := file.paths[at]; !ok {
		return errTreeError("%s: not a current path of this file", at)
	}
	if len(file.paths) == 1 {
		return errTreeError("%s: refusing to unlink a file's last remaining path", at)
	}

	dir, base := splitPath(at)
	dirIdx, err := t.ensureDirPath(dir)
	if err != nil {
		return err
	}

	delete(t.dirByIndex(dirIdx).children, base)
	delete(file.paths, at)

	if t.Config.Writeback {
		if err := os.Remove(t.absPath(at)); err != nil {
			return errors.Wrap(lnsyncerr.ErrWritebackFailed, err.Error())
		}
	}
	return nil
}

// Rmdir removes an empty directory.
func (t *Tree) Rmdir(dir *Dir) error {
	if err := t.requireOnline("rmdir"); err != nil {
		return err
	}
	if len(dir.children) > 0 {
		return errTreeError("directory is not empty")
	}
	idx, err := t.indexOfDir(dir)
	if err != nil {
		return err
	}
	if idx == 0 {
		return errTreeError("cannot remove the tree root")
	}

	relPath := t.dirPath(idx)
	parentIdx := dir.parent
	delete(t.dirByIndex(parentIdx).children, dir.name)
	delete(t.idIndex, dir.ID)

	if t.Config.Writeback {
		if err := os.Remove(t.absPath(relPath)); err != nil {
			return errors.Wrap(lnsyncerr.ErrWritebackFailed, err.Error())
		}
	}
	return nil
}
