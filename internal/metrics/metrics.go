// Package metrics holds the pipeline's Prometheus collectors. A batch run has no scrape
// endpoint, so the registry is flushed to a node_exporter textfile at the end of the run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
)

// Registry collects every pipeline metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Aggregation metrics
var (
	// CaptureFilesTotal tracks raw capture files discovered per entity
	CaptureFilesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiday_capture_files_total",
			Help: "Raw capture files discovered by entity",
		},
		[]string{"entity"},
	)

	// DaysMergedTotal tracks consolidated day files written per entity
	DaysMergedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiday_days_merged_total",
			Help: "Day corpora consolidated by entity",
		},
		[]string{"entity"},
	)
)

// Scoring metrics
var (
	// RecordsScoredTotal tracks scored records by entity and input stage (raw/daily)
	RecordsScoredTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiday_records_scored_total",
			Help: "Text records scored by entity and input stage",
		},
		[]string{"entity", "input"},
	)

	// RecordsDroppedTotal tracks records removed before scoring by filter
	RecordsDroppedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiday_records_dropped_total",
			Help: "Text records dropped before scoring by filter (keyword/influence)",
		},
		[]string{"filter"},
	)

	// RecordsForeignLangTotal tracks scored records tagged with a non-English language
	RecordsForeignLangTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiday_records_foreign_lang_total",
			Help: "Scored text records tagged with a non-English language, by entity",
		},
		[]string{"entity"},
	)
)

// Run metrics
var (
	// UnitFailuresTotal tracks failed units of work by stage and error type
	UnitFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiday_unit_failures_total",
			Help: "Failed units of work (day merges, score files, series) by stage and error type",
		},
		[]string{"stage", "type"},
	)

	// StageDuration tracks wall time per stage in seconds
	StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentiday_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"stage"},
	)

	// LastRunTimestamp is the unix time the last run finished
	LastRunTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiday_last_run_timestamp_seconds",
			Help: "Unix time of the last finished run",
		},
	)
)

// RecordFailure counts a failed unit, labelled with its error type ("other" when untyped).
func RecordFailure(stage string, err error) {
	t := string(apperrors.TypeOf(err))
	if t == "" {
		t = "other"
	}
	UnitFailuresTotal.WithLabelValues(stage, t).Inc()
}

// WriteTextfile writes the registry in the Prometheus text format, replacing path atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
