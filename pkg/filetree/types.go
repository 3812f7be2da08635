// Package filetree implements FileTree: an arena-indexed representation
// of a file tree, backed either by a live directory (online) or by a
// CacheStore snapshot (offline), exposing walk, lookup, and (online-only)
// writeback path operations.
//
// Directory and file entities live in parallel arenas addressed by
// integer index; there are no parent/child pointers, so the structure
// can't form a reference cycle and is trivially safe to copy by value
// where needed.
package filetree

import (
	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
	"github.com/mrsimoes/lnsyncgo/pkg/globmatch"
)

// dirIndex and fileIndex are arena indices into Tree.dirs and Tree.files.
type dirIndex int
type fileIndex int

const noIndex = -1

// Dir is a directory entity. Its id is stable across a scan (the file id
// provider's GetID applied to the directory path in online mode; the
// offline store's obj_id in offline mode).
type Dir struct {
	ID       int64
	parent   dirIndex
	name     string // basename; "" for the root
	children map[string]itemRef
	scanned  bool
	matcher  globmatch.Matcher // online only; the matcher already descended to this dir
}

// File is a file entity, possibly reachable by more than one path (hard
// links).
type File struct {
	ID          int64
	Size        int64
	Stamp       cachestore.Stamp
	paths       map[string]struct{}
	fingerprint *int64
}

// Paths returns the file's current set of paths, in no particular order.
func (f *File) Paths() []string {
	paths := make([]string, 0, len(f.paths))
	for p := range f.paths {
		paths = append(paths, p)
	}
	return paths
}

// CachedFingerprint returns the in-memory cached fingerprint, if any.
func (f *File) CachedFingerprint() (int64, bool) {
	if f.fingerprint == nil {
		return 0, false
	}
	return *f.fingerprint, true
}

// SetCachedFingerprint records an in-memory fingerprint for the file. It
// does not touch the CacheStore; that's PropertyTree's job.
func (f *File) SetCachedFingerprint(fp int64) {
	f.fingerprint = &fp
}

// InvalidateCachedFingerprint clears the in-memory fingerprint, forcing
// the next GetFingerprint to consult the cache store or recompute.
func (f *File) InvalidateCachedFingerprint() {
	f.fingerprint = nil
}

type itemRef struct {
	isFile bool
	file   fileIndex
	dir    dirIndex
}

// Item is a directory entry: either a File or a Dir, as returned by
// lookups and walks. Exactly one of File/Dir is non-nil.
type Item struct {
	File *File
	Dir  *Dir
}

// IsFile reports whether the item is a file.
func (i Item) IsFile() bool { return i.File != nil }
