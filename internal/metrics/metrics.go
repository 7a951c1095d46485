// Package metrics records pipeline stage timings and table sizes in a
// private Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the pipeline metrics.
type Registry struct {
	StageDuration *prometheus.GaugeVec
	TableRows     *prometheus.GaugeVec
	RunsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all pipeline metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		StageDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "graphprep_stage_duration_seconds",
				Help: "Wall-clock duration of the last run of each pipeline stage",
			},
			[]string{"stage"},
		),
		TableRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "graphprep_table_rows",
				Help: "Rows in each table after preparation",
			},
			[]string{"table"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphprep_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"status"},
		),
		registry: reg,
	}
}

// ObserveStage records the duration of one stage.
func (r *Registry) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// SetRows records the row count of a table.
func (r *Registry) SetRows(table string, n int) {
	r.TableRows.WithLabelValues(table).Set(float64(n))
}

// RecordRun counts a finished run.
func (r *Registry) RecordRun(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	r.RunsTotal.WithLabelValues(status).Inc()
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
