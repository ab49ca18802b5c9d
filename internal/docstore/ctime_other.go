//go:build !linux && !darwin

package docstore

import (
	"os"
	"time"
)

// changeTime returns the zero time on unsupported platforms. Callers
// treat it as unknown.
func changeTime(_ os.FileInfo) time.Time {
	return time.Time{}
}
