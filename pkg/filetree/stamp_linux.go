//go:build linux

package filetree

import (
	"os"
	"syscall"

	"github.com/mrsimoes/lnsyncgo/pkg/cachestore"
)

func stampFromInfo(info os.FileInfo) cachestore.Stamp {
	stamp := cachestore.Stamp{
		Size:  info.Size(),
		MTime: info.ModTime().Unix(),
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		stamp.CTime = stat.Ctim.Sec
	}
	return stamp
}
