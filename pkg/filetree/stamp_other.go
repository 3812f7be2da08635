//go:build !linux

package filetree

import (
	"os"

	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
)

// stampFromInfo falls back to mtime-only on platforms where we don't have
// a syscall.Stat_t field table wired up; ctime is left zero, which does
// not affect staleness detection because Stamp.Equal ignores ctime.
func stampFromInfo(info os.FileInfo) cachestore.Stamp {
	return cachestore.Stamp{
		Size:  info.Size(),
		MTime: info.ModTime().Unix(),
	}
}
