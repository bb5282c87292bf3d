package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/OldStager01/mlops-scoring/internal/dataset"
	"github.com/OldStager01/mlops-scoring/internal/decision"
	"github.com/OldStager01/mlops-scoring/internal/events"
	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/internal/manifest"
	"github.com/OldStager01/mlops-scoring/internal/metrics"
	"github.com/OldStager01/mlops-scoring/internal/model"
	"github.com/OldStager01/mlops-scoring/internal/predictor"
	"github.com/OldStager01/mlops-scoring/internal/preprocess"
	"github.com/OldStager01/mlops-scoring/internal/report"
	"github.com/OldStager01/mlops-scoring/pkg/config"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

const (
	stepManifest   = "load_manifest"
	stepPreprocess = "preprocess"
	stepLoadModel  = "load_model"
	stepPredict    = "predict"
	stepReport     = "report"
	stepExport     = "export"
)

type PipelineConfig struct {
	Paths        config.PathsConfig
	Submission   config.SubmissionConfig
	Report       config.ReportConfig
	Preprocessor *preprocess.Preprocessor
	Publisher    *events.Publisher
	Metrics      *metrics.Metrics
}

// Pipeline holds the per-run state of one invocation.
type Pipeline struct {
	config   PipelineConfig
	summary  *models.RunSummary
	manifest *manifest.Manifest
	records  []models.ProcessedRecord

	classifier model.Classifier
	threshold  decision.Threshold
	preds      []models.Prediction
}

func NewPipeline(cfg PipelineConfig, summary *models.RunSummary) *Pipeline {
	return &Pipeline{config: cfg, summary: summary}
}

// step wraps fn with stage events and timing. fn reports the number of
// rows it handled.
func (p *Pipeline) step(ctx context.Context, name string, fn func(ctx context.Context) (int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pub := p.config.Publisher
	pub.StageStarted(name)
	start := time.Now()

	rows, err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		pub.StageFailed(name, elapsed, err)
		return fmt.Errorf("%s: %w", name, err)
	}

	pub.StageCompleted(name, elapsed, rows)
	return nil
}

func (p *Pipeline) loadManifest(ctx context.Context) (int, error) {
	m, err := manifest.Load(p.config.Paths.Manifest)
	if err != nil {
		return 0, err
	}
	p.manifest = m
	return m.Len(), nil
}

// preprocess reads the raw file, derives the manifest features and writes
// the intermediate file.
func (p *Pipeline) preprocess(ctx context.Context) (int, error) {
	table, err := dataset.ReadRaw(ctx, p.config.Paths.Input)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", p.config.Paths.Input, err)
	}
	p.summary.RowsRead = table.Len()
	p.config.Metrics.AddRowsRead(table.Len())

	records, err := p.config.Preprocessor.Run(ctx, table, p.manifest)
	if err != nil {
		return 0, err
	}

	schema := p.config.Preprocessor.Schema(p.manifest)
	if err := dataset.WriteProcessed(p.config.Paths.Processed, schema, records); err != nil {
		return 0, fmt.Errorf("write %s: %w", p.config.Paths.Processed, err)
	}

	p.records = records
	return len(records), nil
}

func (p *Pipeline) loadModel(ctx context.Context) (int, error) {
	threshold, err := decision.ResolveThreshold(p.config.Paths.Threshold)
	if err != nil {
		return 0, err
	}
	if threshold.Defaulted {
		p.config.Publisher.ThresholdDefaulted(threshold.Source, threshold.Value)
	}

	classifier, err := model.Load(p.config.Paths.Model)
	if err != nil {
		return 0, err
	}

	p.threshold = threshold
	p.classifier = classifier
	p.summary.Threshold = threshold.Value
	p.summary.ThresholdDefault = threshold.Defaulted
	p.summary.ModelType = classifier.Type()
	p.summary.ModelVersion = classifier.Version()

	logger.WithStage(ctx, stepLoadModel).Infof(
		"Loaded %s model (version=%q, features=%d), threshold=%g",
		classifier.Type(), classifier.Version(), len(classifier.Features()), threshold.Value,
	)
	return 0, nil
}

// predict scores the records handed over by preprocess, or the
// intermediate file when preprocess did not run in this invocation.
func (p *Pipeline) predict(ctx context.Context) (int, error) {
	pred := predictor.New(p.classifier, decision.NewEngine(p.threshold.Value))
	if err := pred.CheckSchema(p.manifest); err != nil {
		return 0, err
	}

	records := p.records
	if records == nil {
		schema := p.config.Preprocessor.Schema(p.manifest)
		loaded, err := dataset.ReadProcessed(ctx, p.config.Paths.Processed, schema)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", p.config.Paths.Processed, err)
		}
		records = loaded
		p.summary.RowsRead = len(records)
		p.config.Metrics.AddRowsRead(len(records))
	}

	preds, err := pred.Predict(ctx, records)
	if err != nil {
		return 0, err
	}

	sub := p.config.Submission
	cols := dataset.SubmissionColumns{ID: sub.IDColumn, Probability: sub.ProbabilityColumn, Label: sub.LabelColumn}
	if err := dataset.WriteSubmission(p.config.Paths.Output(sub.File), cols, preds); err != nil {
		return 0, err
	}
	if err := dataset.WriteBinarySubmission(p.config.Paths.Output(sub.BinaryFile), sub.IDColumn, sub.ProbabilityColumn, preds); err != nil {
		return 0, err
	}

	s := report.Summarize(preds)
	p.summary.RowsScored = s.Rows
	p.summary.Positives = s.Positives
	p.summary.MeanProbability = s.Mean
	p.preds = preds

	logger.WithStage(ctx, stepPredict).Infof(
		"Predictions saved to %s (rows=%d, positives=%d, mean=%.4f)",
		p.config.Paths.Output(sub.File), s.Rows, s.Positives, s.Mean,
	)
	return len(preds), nil
}

// reports writes the optional artefacts. They are best effort: a failure
// is logged and the run carries on.
func (p *Pipeline) reports(ctx context.Context) (int, error) {
	cfg := p.config.Report
	written := 0

	if cfg.Importances {
		scores := p.classifier.Importances()
		if len(scores) == 0 {
			p.config.Publisher.ReportSkipped(cfg.ImportancesFile, "model has no feature importances")
		} else {
			top := report.TopImportances(scores, p.manifest.Features(), cfg.TopK)
			if err := report.WriteImportances(p.config.Paths.Output(cfg.ImportancesFile), top); err != nil {
				logger.WithStage(ctx, stepReport).Warnf("Failed to write importances: %v", err)
			} else {
				written++
			}
		}
	}

	if cfg.Density {
		bins, err := report.Density(models.Probabilities(p.preds), cfg.DensityBins)
		if err == nil {
			err = report.WriteDensity(p.config.Paths.Output(cfg.DensityFile), bins)
		}
		if err != nil {
			logger.WithStage(ctx, stepReport).Warnf("Failed to write score density: %v", err)
		} else {
			written++
		}
	}

	return written, nil
}
