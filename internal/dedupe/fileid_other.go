//go:build !unix

package dedupe

import "io/fs"

func fileID(fs.FileInfo) (string, bool) { return "", false }
