package fileid

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// PathHashProvider derives ids from the hash of each path component plus
// the file's size, for filesystems (typically network filesystems such as
// NFS variants that don't guarantee inode stability across a scan) where
// InodeProvider can't be trusted. Collisions are resolved by incrementing
// the candidate id and recording which path claimed it, matching the
// design's "increment id, record id -> path" collision policy.
type PathHashProvider struct {
	mountPoint string

	mu      sync.Mutex
	claimed map[int64]string
}

// NewPathHashProvider constructs a PathHashProvider anchored at mountPoint.
// A path that lies under mountPoint is hashed by its components below it,
// so that two different trees rooted at different subdirectories of the
// same anchor still assign consistent ids to files they share (modulo
// collision resolution, which is per-instance); any other path is hashed
// by all of its components.
func NewPathHashProvider(mountPoint string) *PathHashProvider {
	return &PathHashProvider{
		mountPoint: mountPoint,
		claimed:    make(map[int64]string),
	}
}

// GetID implements Provider.
func (p *PathHashProvider) GetID(relPath string, info os.FileInfo) (int64, error) {
	var size uint64
	if info != nil {
		size = uint64(info.Size())
	} else if stat, err := os.Lstat(relPath); err == nil {
		size = uint64(stat.Size())
	}

	hashed := relPath
	if rel, err := filepath.Rel(p.mountPoint, relPath); err == nil &&
		rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		hashed = rel
	}

	var sum uint64
	for _, component := range strings.Split(hashed, string(os.PathSeparator)) {
		if component == "" {
			continue
		}
		sum += xxhash.Sum64String(component)
	}
	sum += size

	id := int64(sum)

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		existing, ok := p.claimed[id]
		if !ok {
			p.claimed[id] = relPath
			return id, nil
		}
		if existing == relPath {
			return id, nil
		}
		// Collision: increment and retry, as the design specifies.
		id++
	}
}

// SubdirInvariant implements Provider. Because the hash is computed from
// path components between the anchor directory and the file, and ForRoot
// anchors at the tree root itself, starting a scan at a different (deeper)
// root changes which components are hashed and hence changes ids.
func (p *PathHashProvider) SubdirInvariant() bool {
	return false
}
