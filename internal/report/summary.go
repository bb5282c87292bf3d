package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// Summary is the headline view of one scored batch.
type Summary struct {
	Rows      int
	Positives int
	Mean      float64
	Min       float64
	Max       float64
}

func Summarize(preds []models.Prediction) Summary {
	s := Summary{Rows: len(preds), Positives: models.CountPositives(preds)}
	if len(preds) == 0 {
		return s
	}
	probs := models.Probabilities(preds)
	s.Mean = stat.Mean(probs, nil)
	s.Min = floats.Min(probs)
	s.Max = floats.Max(probs)
	return s
}
