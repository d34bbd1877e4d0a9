package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/yourorg/nmsweep/internal/storage"
)

// DefaultMaxDepth bounds traversal against pathological or cyclic trees.
const DefaultMaxDepth = 10

// ErrNoRoot means neither the requested path nor the home directory is usable.
var ErrNoRoot = errors.New("no usable start directory")

// Config holds runtime settings. Flags in cmd/nmsweep override the env values.
type Config struct {
	MaxDepth  int
	LogLevel  string // debug, info, warn, error
	LogFormat string // console, json
	Skip      []string
	DeepSize  bool
}

// FromEnv loads configuration from environment variables.
func FromEnv() Config {
	return Config{
		MaxDepth:  getEnvInt("NMSWEEP_MAX_DEPTH", DefaultMaxDepth),
		LogLevel:  getEnv("NMSWEEP_LOG_LEVEL", "info"),
		LogFormat: getEnv("NMSWEEP_LOG_FORMAT", "console"),
		Skip:      SplitList(os.Getenv("NMSWEEP_SKIP")),
		DeepSize:  strings.EqualFold(os.Getenv("NMSWEEP_DEEP_SIZE"), "true"),
	}
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// homeDir is swapped in tests.
var homeDir = os.UserHomeDir

// ResolveRoot turns the optional start argument into an absolute directory.
// An empty or unusable argument falls back to the user's home directory; only a
// missing or inaccessible home is fatal.
func ResolveRoot(arg string, fsys storage.FileSystem, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if arg != "" {
		abs, err := filepath.Abs(arg)
		if err == nil {
			if err = checkDir(fsys, abs); err == nil {
				return abs, nil
			}
		}
		log.Warn("start path unusable, falling back to home directory", zap.String("path", arg), zap.Error(err))
	}

	home, err := homeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRoot, err)
	}
	home = filepath.Clean(home)
	if err := checkDir(fsys, home); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRoot, err)
	}
	return home, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n != 0 {
			return n
		}
	}
	return def
}

// checkDir returns nil for an existing directory. A non-directory matches
// syscall.ENOTDIR under errors.Is.
func checkDir(fsys storage.FileSystem, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "stat", Path: path, Err: syscall.ENOTDIR}
	}
	return nil
}
