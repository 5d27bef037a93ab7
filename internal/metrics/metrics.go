// Package metrics exposes Prometheus collectors for scans and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	filesScannedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sanskan",
			Name:      "files_scanned_total",
			Help:      "Total number of files read and evaluated",
		},
	)

	filesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sanskan",
			Name:      "files_skipped_total",
			Help:      "Total number of unreadable files skipped",
		},
	)

	matchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sanskan",
			Name:      "matches_total",
			Help:      "Total number of reported matches",
		},
	)

	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sanskan",
			Name:      "scan_duration_seconds",
			Help:      "Scan duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(filesScannedTotal)
	prometheus.MustRegister(filesSkippedTotal)
	prometheus.MustRegister(matchesTotal)
	prometheus.MustRegister(scanDuration)
}

// ScanRecorder records scan progress into the package collectors.
type ScanRecorder struct{}

// NewScanRecorder returns a recorder backed by the default registry.
func NewScanRecorder() *ScanRecorder {
	return &ScanRecorder{}
}

// FileScanned records one evaluated file and the matches it produced.
func (ScanRecorder) FileScanned(matches int) {
	filesScannedTotal.Inc()
	matchesTotal.Add(float64(matches))
}

// FileSkipped records one unreadable file that was skipped.
func (ScanRecorder) FileSkipped() {
	filesSkippedTotal.Inc()
}

// ScanFinished records the duration of a scan, labelled by outcome.
func (ScanRecorder) ScanFinished(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	scanDuration.WithLabelValues(status).Observe(d.Seconds())
}
