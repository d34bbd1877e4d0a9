package report

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yourorg/nmsweep/internal/types"
)

// Printer renders the human-facing side of a run. Write errors are ignored;
// the report is advisory and never changes the outcome.
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer { return &Printer{w: w} }

func (p *Printer) printf(format string, args ...any) { _, _ = fmt.Fprintf(p.w, format, args...) }

func (p *Printer) Start(root string, auto bool) {
	p.printf("Scanning for node_modules directories starting from: %s\n", root)
	if auto {
		p.printf("Auto-confirmation enabled (-y flag)\n")
	}
	p.printf("This may take a while for large directory trees...\n\n")
}

func (p *Printer) ScanDone(res types.ScanResult, elapsed time.Duration) {
	p.printf("\nScan completed in %s\n", Duration(elapsed))
	p.printf("Found %d node_modules directories\n", len(res.Matches))
	if len(res.Matches) == 0 {
		p.printf("No node_modules directories found.\n")
	}
}

// Matches prints the numbered list shown before confirmation.
func (p *Printer) Matches(ms types.MatchSet) {
	p.printf("\nDirectories to be deleted:\n")
	for i, m := range ms {
		p.printf("%d. %s\n", i+1, m)
	}
}

func (p *Printer) AutoConfirmed() {
	p.printf("\nAuto-confirming deletion (use without -y flag for manual confirmation)\n")
}

func (p *Printer) DeleteStart() { p.printf("\nStarting deletion process...\n") }

// Progress rewrites a single status line; it matches sweep.Progress.
func (p *Printer) Progress(i, n int, path string) {
	p.printf("\rDeleting %d/%d: %s", i, n, Short(path))
}

func (p *Printer) DeleteDone(res types.DeletionResult, elapsed time.Duration) {
	p.printf("\n\n")
	p.printf("Successfully deleted %d node_modules directories\n", res.Count)
	if len(res.Failures) > 0 {
		p.printf("Could not delete %d directories:\n", len(res.Failures))
		for _, f := range res.Failures {
			p.printf("  %s: %v\n", f.Path, f.Err)
		}
	}
	if res.TotalSize > 0 {
		p.printf("Freed approximately %s of disk space\n", Bytes(res.TotalSize))
	}
	p.printf("Deletion completed in %s\n", Duration(elapsed))
}

func (p *Printer) Cancelled() { p.printf("Operation cancelled.\n") }

func (p *Printer) Interrupted() { p.printf("\n\nOperation interrupted by user\n") }

// Short renders a match as "<parent>/node_modules".
func Short(path string) string {
	return filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
}

// Bytes formats n with binary units ("1.5 MiB"); zero is "0 B".
func Bytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

// Duration prints sub-second spans in ms and longer ones rounded to 10ms.
func Duration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
