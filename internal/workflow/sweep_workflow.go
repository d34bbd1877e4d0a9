package workflow

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/nmsweep/internal/confirm"
	"github.com/yourorg/nmsweep/internal/report"
	"github.com/yourorg/nmsweep/internal/types"
)

type Scanner interface {
	Scan(ctx context.Context, root string) types.ScanResult
}

type Deduper interface {
	Matches(ctx context.Context, in types.MatchSet) (types.MatchSet, types.DedupeStats, error)
}

type Deleter interface {
	Delete(ctx context.Context, p types.DeleteParams) types.DeletionResult
}

// Deps are the stages of a sweep. Dedupe and Report are optional.
type Deps struct {
	Scanner Scanner
	Decider confirm.Decider
	Dedupe  Deduper
	Deleter Deleter
	Report  *report.Printer
	Log     *zap.Logger
}

// SweepWorkflow runs scan → confirm → dedupe → delete. The scan completes before
// anything is deleted. The only errors returned are a failing decider and
// ctx cancellation; per-item failures live in the result.
func SweepWorkflow(ctx context.Context, d Deps, p types.SweepParams) (types.SweepResult, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	rep := d.Report
	if rep == nil {
		rep = report.New(io.Discard)
	}
	var res types.SweepResult

	rep.Start(p.Scan.Root, p.AutoConfirm)
	scanStart := time.Now()
	res.Scan = d.Scanner.Scan(ctx, p.Scan.Root)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	rep.ScanDone(res.Scan, time.Since(scanStart))
	if len(res.Scan.Matches) == 0 {
		return res, nil
	}
	rep.Matches(res.Scan.Matches)

	decider := d.Decider
	if p.AutoConfirm {
		rep.AutoConfirmed()
		decider = confirm.Auto
	}
	if decider == nil {
		// No way to ask: treat as declined.
		rep.Cancelled()
		return res, nil
	}
	ok, err := decider.Confirm(ctx, res.Scan.Matches)
	if err != nil {
		return res, err
	}
	res.Confirmed = ok
	if !ok {
		rep.Cancelled()
		return res, nil
	}

	matches := res.Scan.Matches
	res.Dedupe = types.DedupeStats{Total: len(matches), Unique: len(matches)}
	if d.Dedupe != nil {
		uniq, stats, err := d.Dedupe.Matches(ctx, matches)
		switch {
		case ctx.Err() != nil:
			return res, ctx.Err()
		case err != nil:
			log.Warn("dedupe failed, deleting matches as scanned", zap.Error(err))
		default:
			matches = uniq
			res.Dedupe = stats
		}
	}

	rep.DeleteStart()
	delStart := time.Now()
	res.Deletion = d.Deleter.Delete(ctx, types.DeleteParams{Matches: matches, SizeMode: p.SizeMode})
	if res.Deletion.Interrupted {
		return res, ctx.Err()
	}
	rep.DeleteDone(res.Deletion, time.Since(delStart))
	log.Debug("sweep finished",
		zap.String("root", p.Scan.Root),
		zap.Int("matches", len(res.Scan.Matches)),
		zap.Int("deleted", res.Deletion.Count),
		zap.Int("failed", len(res.Deletion.Failures)),
		zap.Int64("bytes", res.Deletion.TotalSize))
	return res, nil
}
