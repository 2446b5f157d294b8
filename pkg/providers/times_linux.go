//go:build linux

package providers

import (
	"os"
	"syscall"
	"time"
)

// Linux stat does not report a birth time; the inode change time stands in
// for it.
func fileTimes(info os.FileInfo) (created, accessed time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	return time.Unix(st.Ctim.Unix()), time.Unix(st.Atim.Unix())
}
