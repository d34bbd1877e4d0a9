package sweep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	znmetrics "github.com/yourorg/nmsweep/internal/metrics"
	"github.com/yourorg/nmsweep/internal/storage"
	"github.com/yourorg/nmsweep/internal/types"
)

// ErrNotTarget is returned for a path that is not an absolute node_modules directory.
var ErrNotTarget = errors.New("refusing to delete: not an absolute node_modules path")

const targetName = "node_modules"

// Progress is called before each item is processed; i is 1-based.
type Progress func(i, n int, path string)

// Deleter removes matched directories one at a time, in order.
type Deleter struct {
	fs       storage.FileSystem
	log      *zap.Logger
	progress Progress
}

type Option func(*Deleter)

func WithProgress(p Progress) Option { return func(d *Deleter) { d.progress = p } }

func New(fsys storage.FileSystem, log *zap.Logger, opts ...Option) *Deleter {
	if fsys == nil {
		fsys = storage.NewLocal()
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &Deleter{fs: fsys, log: log}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Delete removes every path in p.Matches. A failing item is recorded and the
// batch moves on; cancellation stops before the next item.
func (d *Deleter) Delete(ctx context.Context, p types.DeleteParams) types.DeletionResult {
	start := time.Now()
	defer func() { znmetrics.DeleteDuration.Observe(time.Since(start).Seconds()) }()

	var res types.DeletionResult
	n := len(p.Matches)
	for i, path := range p.Matches {
		if ctx.Err() != nil {
			res.Interrupted = true
			d.log.Warn("deletion interrupted", zap.Int("done", i), zap.Int("total", n))
			break
		}
		if d.progress != nil {
			d.progress(i+1, n, path)
		}

		if err := checkTarget(path); err != nil {
			d.fail(&res, path, err)
			continue
		}
		size := d.size(path, p.SizeMode)
		if err := d.fs.RemoveAll(path); err != nil {
			d.fail(&res, path, err)
			continue
		}
		res.Count++
		res.TotalSize += size
		znmetrics.Deleted.Inc()
		znmetrics.BytesFreed.Add(float64(size))
		d.log.Debug("deleted", zap.String("path", path), zap.Int64("size", size))
	}
	return res
}

func (d *Deleter) fail(res *types.DeletionResult, path string, err error) {
	d.log.Warn("could not delete", zap.String("path", path), zap.Error(err))
	res.Failures = append(res.Failures, types.Warning{Path: path, Err: err})
	znmetrics.DeleteFailures.Inc()
}

// size is best-effort: any failure contributes zero.
func (d *Deleter) size(path string, mode types.SizeMode) int64 {
	if mode == types.SizeDeep {
		return deepSize(path)
	}
	info, err := d.fs.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// deepSize sums regular files below root, skipping anything unreadable.
func deepSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, de fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !de.Type().IsRegular() {
			return nil
		}
		if info, ierr := de.Info(); ierr == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func checkTarget(path string) error {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) || filepath.Base(clean) != targetName || clean != path {
		return fmt.Errorf("%w: %q", ErrNotTarget, path)
	}
	return nil
}
