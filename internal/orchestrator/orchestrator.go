package orchestrator

import (
	"context"
	"fmt"

	"github.com/OldStager01/mlops-scoring/internal/events"
	"github.com/OldStager01/mlops-scoring/internal/export"
	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/internal/metrics"
	"github.com/OldStager01/mlops-scoring/internal/preprocess"
	"github.com/OldStager01/mlops-scoring/pkg/config"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// Orchestrator wires the stages of one batch run together and owns the
// shared event bus, metrics and export sink.
type Orchestrator struct {
	config       *config.Config
	eventBus     *events.EventBus
	publisher    *events.Publisher
	metrics      *metrics.Metrics
	exporter     export.Exporter
	preprocessor *preprocess.Preprocessor
}

func New(cfg *config.Config, exporter export.Exporter) *Orchestrator {
	if exporter == nil {
		exporter = export.Nop{}
	}

	eventBus := events.NewEventBus()
	events.NewEventLogger().Attach(eventBus)

	m := metrics.New()
	m.Attach(eventBus)

	pre := cfg.Preprocess
	preprocessor := preprocess.New(preprocess.Config{
		IDColumn:           pre.IDColumn,
		TimestampColumn:    pre.TimestampColumn,
		LatColumn:          pre.LatColumn,
		LonColumn:          pre.LonColumn,
		MerchantLatColumn:  pre.MerchantLatColumn,
		MerchantLonColumn:  pre.MerchantLonColumn,
		CategoricalColumns: pre.CategoricalColumns,
	})

	return &Orchestrator{
		config:       cfg,
		eventBus:     eventBus,
		publisher:    events.NewPublisher(eventBus),
		metrics:      m,
		exporter:     exporter,
		preprocessor: preprocessor,
	}
}

// Subscribe registers an extra event handler, e.g. for tests.
func (o *Orchestrator) Subscribe(h events.Handler) {
	o.eventBus.SubscribeAll(h)
}

// Run executes the selected stages in order. The first failing step stops
// the run and its error is returned; later steps do not run.
func (o *Orchestrator) Run(ctx context.Context, stage models.Stage) (*models.RunSummary, error) {
	summary := models.NewRunSummary(stage)
	ctx = logger.WithRunID(ctx, summary.RunID)

	p := NewPipeline(PipelineConfig{
		Paths:        o.config.Paths,
		Submission:   o.config.Submission,
		Report:       o.config.Report,
		Preprocessor: o.preprocessor,
		Publisher:    o.publisher.WithRunID(summary.RunID),
		Metrics:      o.metrics,
	}, summary)

	logger.From(ctx).Infof("Run started (stage=%s)", stage)

	if err := p.step(ctx, stepManifest, p.loadManifest); err != nil {
		return summary, err
	}

	if stage.RunsPreprocess() {
		if err := p.step(ctx, stepPreprocess, p.preprocess); err != nil {
			return summary, err
		}
	}

	if stage.RunsPredict() {
		steps := []struct {
			name string
			fn   func(context.Context) (int, error)
		}{
			{stepLoadModel, p.loadModel},
			{stepPredict, p.predict},
			{stepReport, p.reports},
		}
		for _, s := range steps {
			if err := p.step(ctx, s.name, s.fn); err != nil {
				return summary, err
			}
		}
	}

	summary.Finish()

	if stage.RunsPredict() {
		err := p.step(ctx, stepExport, func(ctx context.Context) (int, error) {
			return len(p.preds), o.exporter.Export(ctx, summary, p.preds)
		})
		if err != nil {
			return summary, err
		}
	}

	o.metrics.RecordRun(summary)
	if o.config.Metrics.Enabled {
		path := o.config.Paths.Output(o.config.Metrics.File)
		if err := o.metrics.WriteTextfile(path); err != nil {
			return summary, fmt.Errorf("metrics: %w", err)
		}
	}

	logger.From(ctx).Infof("Run finished in %s (rows_read=%d, rows_scored=%d, positives=%d)",
		summary.Duration(), summary.RowsRead, summary.RowsScored, summary.Positives)
	return summary, nil
}

func (o *Orchestrator) Close() error {
	o.eventBus.Close()
	return o.exporter.Close()
}
