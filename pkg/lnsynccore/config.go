// Package lnsynccore wires the tree, cache, and hashing layers together
// behind a single injected Config, the way the teacher's session/
// endpoint layer is built from a configuration struct passed into a
// constructor rather than package-level globals.
package lnsynccore

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
	"github.com/mrsimoes/lnsyncgo/pkg/filetree"
	"github.com/mrsimoes/lnsyncgo/pkg/globmatch"
	"github.com/mrsimoes/lnsyncgo/pkg/hashing"
	"github.com/mrsimoes/lnsyncgo/pkg/logging"
	"github.com/mrsimoes/lnsyncgo/pkg/proptree"
)

var log = logging.RootLogger.Sublogger("lnsynccore")

// Config collects everything needed to open a PropertyTree rooted at a
// real directory: the hasher, scan filters, writeback mode, and where
// its cache lives on disk. A zero Config is valid and opens the
// directory's own cache file with the default hasher and no filters.
type Config struct {
	// Hasher selects the fingerprinting algorithm. Nil means
	// hashing.New(), the default xxHash-based Hasher.
	Hasher hashing.Hasher

	// Matcher filters which entries are scanned. Nil means
	// globmatch.AllowAll.
	Matcher globmatch.Matcher

	// MaxSize excludes files larger than this many bytes from scans.
	// Zero means unlimited.
	MaxSize int64

	// SkipEmpty excludes zero-length files from scans.
	SkipEmpty bool

	// Writeback enables on-disk move/link/unlink when a plan is
	// applied. False opens the tree read-only (plans can still be
	// computed, just not applied).
	Writeback bool

	// CacheDir is the directory the cache database lives in. Empty
	// means the tree's own root directory, matching the design's
	// "the cache file lives alongside the tree it describes" default.
	CacheDir string

	// CachePrefix is the cache file's basename prefix. Empty means
	// cachestore.DefaultPrefix.
	CachePrefix string
}

func (c Config) hasher() hashing.Hasher {
	if c.Hasher == nil {
		return hashing.New()
	}
	return c.Hasher
}

func (c Config) treeConfig() filetree.Config {
	return filetree.Config{
		Matcher:   c.Matcher,
		MaxSize:   c.MaxSize,
		SkipEmpty: c.SkipEmpty,
		Writeback: c.Writeback,
	}
}

// OpenPropertyTree opens an online tree rooted at root and its cache
// store, composing them into a PropertyTree per cfg.
func OpenPropertyTree(root string, cfg Config) (*proptree.PropertyTree, error) {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = root
	}
	prefix := cfg.CachePrefix
	if prefix == "" {
		prefix = cachestore.DefaultPrefix
	}

	cachePath, err := cachestore.PathFor(cacheDir, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "locating cache for %s", root)
	}
	store, err := cachestore.Open(cachePath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache %s", cachePath)
	}

	tree, err := filetree.NewOnline(root, cfg.treeConfig())
	if err != nil {
		store.Close()
		return nil, errors.Wrapf(err, "scanning %s", root)
	}

	log.Infof("opened %s (cache %s)", root, filepath.Base(cachePath))
	return proptree.New(tree, store, cfg.hasher()), nil
}
