package storage

import (
	"io/fs"
	"os"
)

// FileSystem is the minimal set of filesystem calls the scanner and deleter use.
// Tests substitute fakes to inject failures.
type FileSystem interface {
	// ReadDir lists the immediate children of dir.
	ReadDir(dir string) ([]fs.DirEntry, error)
	// Stat returns metadata for path, following symlinks.
	Stat(path string) (fs.FileInfo, error)
	// RemoveAll removes path and everything below it. A missing path is not an error.
	RemoveAll(path string) error
}

// Local is the live operating-system filesystem.
type Local struct{}

func NewLocal() Local { return Local{} }

func (Local) ReadDir(dir string) ([]fs.DirEntry, error) { return os.ReadDir(dir) }

func (Local) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (Local) RemoveAll(path string) error { return os.RemoveAll(path) }
