// File: internal/metrics/metrics.go
package metrics

import (
	"fmt"
	"strings"
	"time"

	"strata/pkg/common"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every strata metric. A CLI run is short-lived, so the metrics are
// dumped to a node_exporter textfile at exit rather than scraped
var Registry = prometheus.NewRegistry()

var (
	storageOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_storage_operations_total",
			Help: "Total number of storage operations by provider, operation and outcome.",
		},
		[]string{"provider", "operation", "outcome"},
	)
	selectQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_select_queries_total",
			Help: "Total number of S3 Select queries by input format and outcome.",
		},
		[]string{"format", "outcome"},
	)
	selectBytesScannedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "strata_select_bytes_scanned_total",
			Help: "Total bytes scanned by S3 Select.",
		},
	)
	selectBytesReturnedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "strata_select_bytes_returned_total",
			Help: "Total bytes returned by S3 Select.",
		},
	)
	selectRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "strata_select_records_total",
			Help: "Total number of record payloads received from S3 Select.",
		},
	)
	tableLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_table_loads_total",
			Help: "Total number of objects loaded into DuckDB by format and outcome.",
		},
		[]string{"format", "outcome"},
	)
	tableLoadDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strata_table_load_duration_ms",
			Help:    "Time spent downloading an object and loading it into DuckDB in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
	)
)

func init() {
	Registry.MustRegister(
		storageOperationsTotal,
		selectQueriesTotal,
		selectBytesScannedTotal,
		selectBytesReturnedTotal,
		selectRecordsTotal,
		tableLoadsTotal,
		tableLoadDurationMs,
	)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// The provider label is normalized so "-p AWS" and "-p aws" share one series
func ObserveStorageOperation(provider, operation string, err error) {
	storageOperationsTotal.WithLabelValues(providerLabel(provider), operation, outcome(err)).Inc()
}

func providerLabel(name string) string {
	if p, err := common.ParseProvider(name); err == nil {
		return string(p)
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func ObserveSelectQuery(format string, records int, scanned, returned int64, err error) {
	selectQueriesTotal.WithLabelValues(format, outcome(err)).Inc()
	if records > 0 {
		selectRecordsTotal.Add(float64(records))
	}
	if scanned > 0 {
		selectBytesScannedTotal.Add(float64(scanned))
	}
	if returned > 0 {
		selectBytesReturnedTotal.Add(float64(returned))
	}
}

func ObserveTableLoad(format string, elapsed time.Duration, err error) {
	tableLoadsTotal.WithLabelValues(format, outcome(err)).Inc()
	if err == nil {
		tableLoadDurationMs.Observe(float64(elapsed.Milliseconds()))
	}
}

// WriteTextfile atomically writes the current metric values in text exposition format
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("error writing metrics to %s: %w", path, err)
	}
	return nil
}
