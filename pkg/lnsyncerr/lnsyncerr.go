// Package lnsyncerr defines the error taxonomy shared by lnsyncgo's cache,
// tree, and planner layers.
//
// Each sentinel represents a distinct failure kind from the design's error
// table. Callers should test against these with errors.Is, since concrete
// errors are usually wrapped with path or identifier context via
// github.com/pkg/errors.
package lnsyncerr

import "errors"

var (
	// ErrCacheUnavailable indicates that the cache file is missing, has an
	// unsupported schema version, or is locked by another process.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrCacheCorrupt indicates that the cache violates its own schema
	// invariants (e.g. a foreign key failure during a merge).
	ErrCacheCorrupt = errors.New("cache corrupt")

	// ErrStaleCached indicates that an offline lookup found a property row
	// whose stamp no longer matches the file's recorded metadata.
	ErrStaleCached = errors.New("cached fingerprint is stale")

	// ErrNotCachedOffline indicates that an offline lookup found no
	// property row for the requested file.
	ErrNotCachedOffline = errors.New("no cached fingerprint for offline file")

	// ErrFingerprintFailed indicates that the hasher could not read a file
	// to compute its fingerprint.
	ErrFingerprintFailed = errors.New("unable to compute fingerprint")

	// ErrTreeError indicates a tree-structural problem: a path that does
	// not exist, a path that is not the expected kind, or an id that no
	// longer resolves.
	ErrTreeError = errors.New("tree error")

	// ErrPlanImpossible indicates that the sync planner could not produce
	// an acyclic move plan for the given signature groups.
	ErrPlanImpossible = errors.New("no acyclic sync plan exists")

	// ErrWritebackFailed indicates that an on-disk rename/link/unlink/
	// mkdir/rmdir operation failed while mirroring a writeback op.
	ErrWritebackFailed = errors.New("writeback operation failed")

	// ErrAmbiguousCache indicates that more than one file in a directory
	// matches the cache basename pattern, so the correct one cannot be
	// picked automatically.
	ErrAmbiguousCache = errors.New("ambiguous cache file selection")
)
