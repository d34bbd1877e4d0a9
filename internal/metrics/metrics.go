package metrics

import (
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	DirsScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nmsweep",
		Name:      "dirs_scanned_total",
		Help:      "Total directories listed during scanning.",
	})
	MatchesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nmsweep",
		Name:      "matches_found_total",
		Help:      "Total node_modules directories matched.",
	})
	ScanWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nmsweep",
		Name:      "scan_warnings_total",
		Help:      "Directory listings that failed with an unexpected error.",
	})
	Deleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nmsweep",
		Name:      "deleted_total",
		Help:      "Total matched directories removed.",
	})
	DeleteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nmsweep",
		Name:      "delete_failures_total",
		Help:      "Matched directories that could not be removed.",
	})
	BytesFreed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nmsweep",
		Name:      "bytes_freed_total",
		Help:      "Best-effort bytes reclaimed by deletion.",
	})
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nmsweep",
		Name:      "scan_duration_seconds",
		Help:      "Wall time of a full scan.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})
	DeleteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nmsweep",
		Name:      "delete_duration_seconds",
		Help:      "Wall time of a deletion batch.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

var initOnce sync.Once

// Init registers collectors with the default registry; safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(DirsScanned, MatchesFound, ScanWarnings, Deleted, DeleteFailures, BytesFreed, ScanDuration, DeleteDuration)
	})
}

// WriteText renders every nmsweep family from the default gatherer in the text exposition format.
func WriteText(w io.Writer) error {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if !strings.HasPrefix(mf.GetName(), "nmsweep_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
