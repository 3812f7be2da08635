// Package proptree implements PropertyTree: a FileTree composed with a
// CacheStore and a Hasher, adding fingerprint lookup with stamp-based
// staleness detection on top of the tree's plain structure.
package proptree

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
	"github.com/mrsimoes/lnsyncgo/pkg/filetree"
	"github.com/mrsimoes/lnsyncgo/pkg/hashing"
	"github.com/mrsimoes/lnsyncgo/pkg/lnsyncerr"
	"github.com/mrsimoes/lnsyncgo/pkg/logging"
)

var log = logging.RootLogger.Sublogger("proptree")

// PropertyTree composes a FileTree with a CacheStore and a Hasher.
type PropertyTree struct {
	Tree   *filetree.Tree
	Store  *cachestore.Store
	Hasher hashing.Hasher
}

// New wraps an already-open Tree and Store with the given Hasher.
func New(tree *filetree.Tree, store *cachestore.Store, hasher hashing.Hasher) *PropertyTree {
	return &PropertyTree{Tree: tree, Store: store, Hasher: hasher}
}

func stampOf(file *filetree.File) cachestore.Stamp { return file.Stamp }

// GetFingerprint implements the design's five-step decision order:
// in-memory cache, then the store (invalidating on stamp mismatch), then
// (online) computing via the Hasher, or (offline) surfacing
// NotCachedOffline. The online/offline branch is decided by the tree's
// own backend, never by the caller.
func (p *PropertyTree) GetFingerprint(file *filetree.File, relPath string) (int64, error) {
	if fp, ok := file.CachedFingerprint(); ok {
		return fp, nil
	}

	online := p.Tree.Online()
	stamp := stampOf(file)
	stored, ok, err := p.Store.GetProp(file.ID)
	if err != nil {
		return 0, err
	}
	if ok {
		if stored.Stamp.Equal(stamp) {
			file.SetCachedFingerprint(stored.Fingerprint)
			return stored.Fingerprint, nil
		}
		if online {
			if err := p.Store.DeleteIDs([]int64{file.ID}); err != nil {
				return 0, err
			}
		} else {
			return 0, errors.Wrapf(lnsyncerr.ErrStaleCached, "file id %d", file.ID)
		}
	}

	if !online {
		return 0, errors.Wrapf(lnsyncerr.ErrNotCachedOffline, "file id %d", file.ID)
	}

	fp, err := p.Hasher.FingerprintFile(filepath.Join(p.Tree.Root(), relPath))
	if err != nil {
		return 0, errors.Wrap(lnsyncerr.ErrFingerprintFailed, err.Error())
	}
	if err := p.Store.PutProp(file.ID, cachestore.Prop{Fingerprint: fp, Stamp: stamp}); err != nil {
		return 0, err
	}
	file.SetCachedFingerprint(fp)
	return fp, nil
}

// RecheckFingerprint recomputes a file's fingerprint from source and
// compares it to the cached value. It never replaces a cached value with
// the recomputed one; when no valid cached value exists yet, the
// GetFingerprint lookup it starts with computes and stores one first.
func (p *PropertyTree) RecheckFingerprint(file *filetree.File, relPath string) (bool, error) {
	cached, err := p.GetFingerprint(file, relPath)
	if err != nil {
		return false, err
	}
	fresh, err := p.Hasher.FingerprintFile(filepath.Join(p.Tree.Root(), relPath))
	if err != nil {
		return false, errors.Wrap(lnsyncerr.ErrFingerprintFailed, err.Error())
	}
	return fresh == cached, nil
}
