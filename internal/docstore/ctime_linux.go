//go:build linux

package docstore

import (
	"os"
	"syscall"
	"time"
)

// changeTime returns the inode change time. A rename updates it, so for
// a trash entry it is the moment the item was trashed.
func changeTime(info os.FileInfo) time.Time {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}

	return time.Unix(int64(sys.Ctim.Sec), int64(sys.Ctim.Nsec)) //nolint:unconvert // int32 on 32-bit platforms
}
