//go:build darwin

package docstore

import (
	"os"
	"syscall"
	"time"
)

// changeTime returns the inode change time.
// On macOS, Stat_t has Ctimespec (not Ctim like Linux).
func changeTime(info os.FileInfo) time.Time {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}

	return time.Unix(sys.Ctimespec.Sec, sys.Ctimespec.Nsec)
}
