// Command mtl renders metadata templates for files.
//
//	mtl render "{created.year}/{filepath.name}" photos/*.jpg
//	mtl check "{exiftool:created.year,unknown}"
//	mtl fields
//	mtl watch ./inbox "{mimetype:type}/{filepath.name}"
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
