package dedupe

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/yourorg/nmsweep/internal/storage"
	"github.com/yourorg/nmsweep/internal/types"
)

// Deduper drops matches that point at a directory already in the set, e.g. the
// same node_modules reached through a bind mount. The seen-set lives in an
// in-memory badger instance and is discarded after each call.
type Deduper struct {
	fs  storage.FileSystem
	log *zap.Logger
}

func New(fsys storage.FileSystem, log *zap.Logger) *Deduper {
	if fsys == nil {
		fsys = storage.NewLocal()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Deduper{fs: fsys, log: log}
}

// Matches returns the input with later duplicates removed, preserving order.
// Paths that cannot be statted are keyed by their path and kept.
func (d *Deduper) Matches(ctx context.Context, in types.MatchSet) (types.MatchSet, types.DedupeStats, error) {
	stats := types.DedupeStats{Total: len(in)}
	if len(in) < 2 {
		stats.Unique = len(in)
		return in, stats, nil
	}

	db, err := badger.Open(seenOptions())
	if err != nil {
		return in, stats, err
	}
	defer db.Close()

	out := make(types.MatchSet, 0, len(in))
	for _, p := range in {
		if err := ctx.Err(); err != nil {
			return in, stats, err
		}
		k := []byte(d.key(p))
		fresh := false
		err := db.Update(func(txn *badger.Txn) error {
			_, e := txn.Get(k)
			if e == badger.ErrKeyNotFound {
				fresh = true
				return txn.Set(k, []byte(p))
			}
			return e
		})
		if err != nil {
			return in, stats, err
		}
		if !fresh {
			d.log.Info("skipping duplicate match", zap.String("path", p))
			continue
		}
		out = append(out, p)
	}
	stats.Unique = len(out)
	return out, stats, nil
}

// seenOptions sizes badger for a few thousand short keys. A small memtable
// caps the batch size, so the value threshold has to sit below it; with no
// block cache, compression must be off or Open panics.
func seenOptions() badger.Options {
	return badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil).
		WithMemTableSize(4 << 20).
		WithValueThreshold(1 << 10).
		WithCompression(options.None).
		WithBlockCacheSize(0).
		WithIndexCacheSize(0)
}

func (d *Deduper) key(p string) string {
	info, err := d.fs.Stat(p)
	if err != nil {
		return "path:" + p
	}
	if id, ok := fileID(info); ok {
		return id
	}
	return "path:" + p
}
