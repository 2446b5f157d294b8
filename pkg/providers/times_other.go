//go:build !darwin && !freebsd && !linux

package providers

import (
	"os"
	"time"
)

func fileTimes(info os.FileInfo) (created, accessed time.Time) {
	return info.ModTime(), info.ModTime()
}
