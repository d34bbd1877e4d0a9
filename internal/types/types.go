package types

// MatchSet is the ordered list of absolute node_modules paths found by a scan.
// No element is an ancestor of another.
type MatchSet []string

// Warning records a non-fatal failure for one path.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) Error() string {
	if w.Err == nil {
		return w.Path
	}
	return w.Path + ": " + w.Err.Error()
}

func (w Warning) Unwrap() error { return w.Err }

type ScanParams struct {
	Root     string   // absolute start path
	MaxDepth int      // recursion ceiling; <= 0 uses the default
	Skip     []string // extra directory names to skip
}

type ScanResult struct {
	Matches  MatchSet
	Warnings []Warning // listing errors other than permission / not-found
	Visited  int       // directories listed
}

// SizeMode selects how the deletion pipeline measures a match.
type SizeMode int

const (
	// SizeShallow uses the match's own metadata size (a lower bound).
	SizeShallow SizeMode = iota
	// SizeDeep sums every regular file below the match.
	SizeDeep
)

type DeleteParams struct {
	Matches  MatchSet
	SizeMode SizeMode
}

type DeletionResult struct {
	Count       int   // paths removed
	TotalSize   int64 // best-effort bytes
	Failures    []Warning
	Interrupted bool // cancellation stopped the batch before the end
}

// DedupeStats reports what the pre-deletion dedupe pass did.
type DedupeStats struct {
	Total  int
	Unique int
}

// SweepParams is the input of a full scan → confirm → delete run.
type SweepParams struct {
	Scan        ScanParams
	SizeMode    SizeMode
	AutoConfirm bool
}

type SweepResult struct {
	Scan      ScanResult
	Confirmed bool
	Dedupe    DedupeStats
	Deletion  DeletionResult
}
