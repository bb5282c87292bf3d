// Package predictor scores processed records with a classifier and turns
// the probabilities into labels.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OldStager01/mlops-scoring/internal/decision"
	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/internal/manifest"
	"github.com/OldStager01/mlops-scoring/internal/model"
	"github.com/OldStager01/mlops-scoring/pkg/models"
	"github.com/OldStager01/mlops-scoring/pkg/validation"
)

const ctxCheckInterval = 1024

var (
	ErrSchemaMismatch = errors.New("model features do not match manifest")
	ErrScoring        = errors.New("scoring failed")
)

type Predictor struct {
	classifier model.Classifier
	engine     *decision.Engine
}

func New(classifier model.Classifier, engine *decision.Engine) *Predictor {
	return &Predictor{classifier: classifier, engine: engine}
}

// CheckSchema verifies the classifier was trained on exactly the manifest
// features in manifest order.
func (p *Predictor) CheckSchema(m *manifest.Manifest) error {
	want := p.classifier.Features()
	if m.Equal(want) {
		return nil
	}
	return fmt.Errorf("%w: model [%s], manifest [%s]", ErrSchemaMismatch,
		strings.Join(want, ","), strings.Join(m.Features(), ","))
}

// Predict scores every record and returns predictions in input order.
func (p *Predictor) Predict(ctx context.Context, records []models.ProcessedRecord) ([]models.Prediction, error) {
	preds := make([]models.Prediction, len(records))

	for i, rec := range records {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		prob, err := p.classifier.PredictProba(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrScoring, i+1, err)
		}
		if err := validation.ValidateProbability(prob); err != nil {
			return nil, fmt.Errorf("%w: row %d (%s): %v", ErrScoring, i+1, rec.ID, err)
		}

		preds[i] = p.engine.Label(rec.ID, prob)
	}

	logger.WithStage(ctx, string(models.StagePredict)).Debugf(
		"Scored: rows=%d, positives=%d, threshold=%g",
		len(preds), models.CountPositives(preds), p.engine.Threshold(),
	)

	return preds, nil
}
