//go:build unix

package dedupe

import (
	"io/fs"
	"strconv"
	"syscall"
)

// fileID identifies a directory by device and inode.
func fileID(info fs.FileInfo) (string, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return "", false
	}
	return "ino:" + strconv.FormatUint(uint64(st.Dev), 10) + ":" + strconv.FormatUint(uint64(st.Ino), 10), true
}
