package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every uncheckedscan metric. It is dumped to a textfile at
// the end of a run rather than served, since the tool exits after one pass.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Metrics definitions
var (
	ParsingDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uncheckedscan_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	PhaseDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uncheckedscan_phase_seconds",
		Help:    "Time spent in each audit phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	FilesScannedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "uncheckedscan_files_scanned_total",
		Help: "Total number of source files parsed during collection.",
	})

	FilesFailedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "uncheckedscan_files_failed_total",
		Help: "Total number of files that could not be read or parsed.",
	}, []string{"phase"})

	MarkedEntries = factory.NewGauge(prometheus.GaugeOpts{
		Name: "uncheckedscan_marked_entries",
		Help: "Number of distinct unchecked declarations found in the last run.",
	})

	ResolutionResults = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "uncheckedscan_resolution_results",
		Help: "Resolution outcomes of the last run by result (paired, absent).",
	}, []string{"result"})

	CacheLookupsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "uncheckedscan_declaration_cache_lookups_total",
		Help: "Declaration cache lookups by outcome (hit, miss).",
	}, []string{"outcome"})
)

// WriteTextfile writes the current metric values in the Prometheus text
// format, suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
