//go:build !unix

package providers

import "os"

func fileOwner(os.FileInfo) (uid, gid uint32, ok bool) {
	return 0, 0, false
}
