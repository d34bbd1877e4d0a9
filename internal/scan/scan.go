package scan

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	znmetrics "github.com/yourorg/nmsweep/internal/metrics"
	"github.com/yourorg/nmsweep/internal/storage"
	"github.com/yourorg/nmsweep/internal/types"
)

// DefaultMaxDepth is the recursion ceiling used when none is configured.
const DefaultMaxDepth = 10

type Config struct {
	MaxDepth int
	Skip     []string
}

// Engine walks a directory tree and collects node_modules directories without
// entering them. It holds no per-scan state, so one Engine can run many scans.
type Engine struct {
	fs       storage.FileSystem
	log      *zap.Logger
	maxDepth int
	ignore   Ignore
}

func New(fsys storage.FileSystem, log *zap.Logger, cfg Config) *Engine {
	if fsys == nil {
		fsys = storage.NewLocal()
	}
	if log == nil {
		log = zap.NewNop()
	}
	depth := cfg.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	return &Engine{fs: fsys, log: log, maxDepth: depth, ignore: NewIgnore(cfg.Skip...)}
}

// Scan returns every match below root. Per-directory failures never abort the scan.
// Once ctx is cancelled no further directories are listed.
func (e *Engine) Scan(ctx context.Context, root string) types.ScanResult {
	start := time.Now()
	var res types.ScanResult
	res.Matches = e.walk(ctx, filepath.Clean(root), 0, &res)
	if res.Matches == nil {
		res.Matches = types.MatchSet{}
	}
	znmetrics.ScanDuration.Observe(time.Since(start).Seconds())
	e.log.Debug("scan finished",
		zap.String("root", root),
		zap.Int("matches", len(res.Matches)),
		zap.Int("visited", res.Visited),
		zap.Int("warnings", len(res.Warnings)))
	return res
}

// walk returns the matches under dir. Warnings and the visit count go to stats;
// matches are merged from the return values only.
func (e *Engine) walk(ctx context.Context, dir string, depth int, stats *types.ScanResult) types.MatchSet {
	if depth > e.maxDepth {
		e.log.Debug("depth ceiling reached", zap.String("path", dir), zap.Int("depth", depth))
		return nil
	}
	// A target is matched from its parent's listing; never expand it.
	if filepath.Base(dir) == TargetName {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		if !benign(err) {
			e.log.Warn("could not scan directory", zap.String("path", dir), zap.Error(err))
			stats.Warnings = append(stats.Warnings, types.Warning{Path: dir, Err: err})
			znmetrics.ScanWarnings.Inc()
		}
		return nil
	}
	stats.Visited++
	znmetrics.DirsScanned.Inc()

	var found types.MatchSet
	for _, ent := range entries {
		name := ent.Name()
		if e.ignore.Skip(name) || !ent.IsDir() {
			continue
		}
		full := filepath.Join(dir, name)
		if name == TargetName {
			found = append(found, full)
			znmetrics.MatchesFound.Inc()
			continue
		}
		found = append(found, e.walk(ctx, full, depth+1, stats)...)
	}
	return found
}

// benign reports listing errors that are expected and not worth surfacing.
func benign(err error) bool {
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR)
}
