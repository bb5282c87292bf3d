// Package metrics records run-level figures in a private Prometheus
// registry and dumps them in the text exposition format, ready for a
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/OldStager01/mlops-scoring/internal/events"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

const namespace = "scorer"

type Metrics struct {
	registry *prometheus.Registry

	rowsRead        prometheus.Counter
	rowsScored      prometheus.Counter
	positives       prometheus.Counter
	threshold       prometheus.Gauge
	meanProbability prometheus.Gauge
	lastSuccess     prometheus.Gauge
	stageDuration   *prometheus.GaugeVec
	stageFailures   *prometheus.CounterVec
	info            *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Raw input rows read.",
		}),
		rowsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_scored_total",
			Help:      "Rows scored by the classifier.",
		}),
		positives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positive_predictions_total",
			Help:      "Rows labelled positive.",
		}),
		threshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threshold",
			Help:      "Probability threshold used for labelling.",
		}),
		meanProbability: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_probability",
			Help:      "Mean predicted probability of the batch.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
		}, []string{"stage"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Failed pipeline stages.",
		}, []string{"stage"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_info",
			Help:      "Model used for the run.",
		}, []string{"type", "version"}),
	}

	m.registry.MustRegister(
		m.rowsRead, m.rowsScored, m.positives,
		m.threshold, m.meanProbability, m.lastSuccess,
		m.stageDuration, m.stageFailures, m.info,
	)
	return m
}

// Attach feeds stage timings and failures from the event bus.
func (m *Metrics) Attach(bus *events.EventBus) {
	bus.Subscribe(models.EventTypeStageCompleted, m.observeStage)
	bus.Subscribe(models.EventTypeStageFailed, m.observeStage)
}

func (m *Metrics) observeStage(event *models.Event) {
	res, ok := event.Data.(events.StageResult)
	if !ok {
		return
	}
	m.stageDuration.WithLabelValues(res.Stage).Set(res.Duration.Seconds())
	if event.Type == models.EventTypeStageFailed {
		m.stageFailures.WithLabelValues(res.Stage).Inc()
	}
}

func (m *Metrics) AddRowsRead(n int) {
	m.rowsRead.Add(float64(n))
}

// RecordRun copies the outcome of a finished run into the registry.
func (m *Metrics) RecordRun(s *models.RunSummary) {
	m.rowsScored.Add(float64(s.RowsScored))
	m.positives.Add(float64(s.Positives))
	if s.ModelType != "" {
		m.threshold.Set(s.Threshold)
		m.meanProbability.Set(s.MeanProbability)
		m.info.WithLabelValues(s.ModelType, s.ModelVersion).Set(1)
	}
	if !s.FinishedAt.IsZero() {
		m.lastSuccess.Set(float64(s.FinishedAt.Unix()))
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the registry to path. The write goes through a
// temporary file so readers never see a partial dump.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
