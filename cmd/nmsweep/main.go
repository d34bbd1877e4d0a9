package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/yourorg/nmsweep/internal/config"
	"github.com/yourorg/nmsweep/internal/confirm"
	"github.com/yourorg/nmsweep/internal/dedupe"
	"github.com/yourorg/nmsweep/internal/logging"
	znmetrics "github.com/yourorg/nmsweep/internal/metrics"
	"github.com/yourorg/nmsweep/internal/report"
	"github.com/yourorg/nmsweep/internal/scan"
	"github.com/yourorg/nmsweep/internal/storage"
	"github.com/yourorg/nmsweep/internal/sweep"
	"github.com/yourorg/nmsweep/internal/types"
	"github.com/yourorg/nmsweep/internal/workflow"
)

// Overridden with -ldflags "-X main.version=1.0.0".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	root        string
	autoConfirm bool
	showMetrics bool
	showVersion bool
	unknown     []string // unrecognised dashed arguments, ignored
	cfg         config.Config
}

// newFlagSet binds the command-line flags to o. The -skip value is returned
// separately because it extends, rather than replaces, the env list.
func newFlagSet(o *options, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("nmsweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.autoConfirm, "y", false, "delete without asking for confirmation")
	fs.BoolVar(&o.autoConfirm, "yes", false, "same as -y")
	fs.IntVar(&o.cfg.MaxDepth, "max-depth", o.cfg.MaxDepth, "maximum directory depth to descend")
	fs.StringVar(&o.cfg.LogLevel, "log-level", o.cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&o.cfg.LogFormat, "log-format", o.cfg.LogFormat, "log format: console or json")
	fs.BoolVar(&o.cfg.DeepSize, "deep-size", o.cfg.DeepSize, "measure the full size of each directory before deleting it")
	skip := fs.String("skip", "", "comma-separated extra directory names to skip")
	fs.BoolVar(&o.showMetrics, "metrics", false, "print run metrics to stderr on exit")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, `nmsweep %s - find and delete node_modules directories

Usage:
  nmsweep [flags] [start-dir]

start-dir defaults to your home directory. Unknown flags are ignored.

Flags:
`, version)
		fs.PrintDefaults()
	}
	return fs, skip
}

// parseArgs accepts flags and the single positional start path in any order.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	o := options{cfg: config.FromEnv()}
	fs, skip := newFlagSet(&o, stderr)

	var rest []string
	rest, o.unknown = dropUnknown(fs, args)
	for {
		if err := fs.Parse(rest); err != nil {
			return o, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		if o.root == "" {
			o.root = rest[0]
		}
		rest = rest[1:]
	}
	if extra := config.SplitList(*skip); len(extra) > 0 {
		o.cfg.Skip = append(o.cfg.Skip, extra...)
	}
	return o, nil
}

// dropUnknown removes dashed arguments that fs does not define so they are
// ignored rather than fatal. Values of known non-bool flags, -h/-help and
// everything after "--" pass through untouched.
func dropUnknown(fs *flag.FlagSet, args []string) (kept, unknown []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			kept = append(kept, args[i:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			kept = append(kept, a)
			continue
		}
		name, _, hasValue := strings.Cut(strings.TrimPrefix(a[1:], "-"), "=")
		if name == "h" || name == "help" {
			kept = append(kept, a)
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			unknown = append(unknown, a)
			continue
		}
		kept = append(kept, a)
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			continue
		}
		if !hasValue && i+1 < len(args) {
			i++
			kept = append(kept, args[i])
		}
	}
	return kept, unknown
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}

	zl := logging.New(o.cfg.LogLevel, o.cfg.LogFormat)
	defer zl.Sync()

	for _, a := range o.unknown {
		zl.Warn("ignoring unknown flag", zap.String("flag", a))
	}

	znmetrics.Init()
	if o.showMetrics {
		defer func() {
			if err := znmetrics.WriteText(stderr); err != nil {
				zl.Warn("metrics output failed", zap.Error(err))
			}
		}()
	}

	fsys := storage.NewLocal()
	root, err := config.ResolveRoot(o.root, fsys, zl)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	rep := report.New(stdout)
	sizeMode := types.SizeShallow
	if o.cfg.DeepSize {
		sizeMode = types.SizeDeep
	}
	deps := workflow.Deps{
		Scanner: scan.New(fsys, zl, scan.Config{MaxDepth: o.cfg.MaxDepth, Skip: o.cfg.Skip}),
		Decider: confirm.Prompt{In: stdin, Out: stdout},
		Dedupe:  dedupe.New(fsys, zl),
		Deleter: sweep.New(fsys, zl, sweep.WithProgress(rep.Progress)),
		Report:  rep,
		Log:     zl,
	}
	params := types.SweepParams{
		Scan:        types.ScanParams{Root: root, MaxDepth: o.cfg.MaxDepth, Skip: o.cfg.Skip},
		SizeMode:    sizeMode,
		AutoConfirm: o.autoConfirm,
	}

	if _, err := workflow.SweepWorkflow(ctx, deps, params); err != nil {
		if errors.Is(err, context.Canceled) {
			rep.Interrupted()
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
