package filetree

import (
	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
	"github.com/mrsimoes/lnsyncgo/pkg/fileid"
	"github.com/mrsimoes/lnsyncgo/pkg/globmatch"
	"github.com/mrsimoes/lnsyncgo/pkg/logging"
)

var log = logging.RootLogger.Sublogger("filetree")

// Config holds the scan-time and writeback-time policy shared by a tree:
// which entries to skip, how large a file may be before it's dropped, and
// whether path operations mirror to disk. It's injected rather than held
// as global state, per the design's rejection of a process-wide hasher
// pattern generalized to tree policy.
type Config struct {
	Matcher   globmatch.Matcher // nil means globmatch.AllowAll
	MaxSize   int64             // 0 means unlimited
	SkipEmpty bool
	Writeback bool
}

func (c Config) matcher() globmatch.Matcher {
	if c.Matcher == nil {
		return globmatch.AllowAll
	}
	return c.Matcher
}

// backend distinguishes the two tree modes the design calls for instead
// of dynamic dispatch: online trees hold a real root path and id
// provider; offline trees hold a CacheStore to read structure from.
type backend struct {
	online  bool
	root    string
	idProv  fileid.Provider
	store   *cachestore.Store
	rootID  int64 // offline root dir id, used as the parent_id of dir_contents rows under the root
}

// Tree is a FileTree: an arena of directories and files, rooted at index
// 0, with an online or offline backend.
type Tree struct {
	Config Config

	backend backend

	dirs  []Dir
	files []File

	idIndex   map[int64]itemRef
	sizeIndex map[int64][]fileIndex
}

func newTree(cfg Config, b backend, rootID int64) *Tree {
	t := &Tree{
		Config:    cfg,
		backend:   b,
		idIndex:   make(map[int64]itemRef),
		sizeIndex: make(map[int64][]fileIndex),
	}
	t.dirs = append(t.dirs, Dir{ID: rootID, parent: noIndex, name: "", children: make(map[string]itemRef)})
	t.idIndex[rootID] = itemRef{isFile: false, dir: 0}
	return t
}

// NewOnline opens an online tree rooted at root, a real directory on disk.
func NewOnline(root string, cfg Config) (*Tree, error) {
	idProv, err := fileid.ForRoot(root)
	if err != nil {
		return nil, err
	}
	rootID, err := idProv.GetID(root, nil)
	if err != nil {
		return nil, err
	}
	t := newTree(cfg, backend{online: true, root: root, idProv: idProv}, rootID)
	t.dirs[0].matcher = cfg.matcher()
	return t, nil
}

// NewOffline opens an offline tree backed by store, rooted at rootID (the
// id the snapshot recorded for the tree's root directory).
func NewOffline(store *cachestore.Store, rootID int64, cfg Config) *Tree {
	return newTree(cfg, backend{online: false, store: store, rootID: rootID}, rootID)
}

// RootDir returns the tree's root directory.
func (t *Tree) RootDir() *Dir {
	return &t.dirs[0]
}

// Root returns the online tree's root path on disk, or "" for an offline
// tree (which has no filesystem location of its own).
func (t *Tree) Root() string {
	return t.backend.root
}

// Online reports whether the tree reads a real directory on disk (true)
// or a frozen CacheStore snapshot (false). PropertyTree uses this to
// pick its fingerprint miss policy per file, rather than trusting a
// caller-supplied flag.
func (t *Tree) Online() bool {
	return t.backend.online
}

func (t *Tree) dirByIndex(idx dirIndex) *Dir   { return &t.dirs[idx] }
func (t *Tree) fileByIndex(idx fileIndex) *File { return &t.files[idx] }

func itemFromRef(t *Tree, ref itemRef) Item {
	if ref.isFile {
		return Item{File: t.fileByIndex(ref.file)}
	}
	return Item{Dir: t.dirByIndex(ref.dir)}
}
