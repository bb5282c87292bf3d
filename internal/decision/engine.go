package decision

import (
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// Engine turns probabilities into hard labels.
type Engine struct {
	threshold float64
}

func NewEngine(threshold float64) *Engine {
	return &Engine{threshold: threshold}
}

func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Decide labels p positive when it reaches the threshold.
func (e *Engine) Decide(p float64) int {
	if p >= e.threshold {
		return 1
	}
	return 0
}

// Label fills in the label of an already scored row.
func (e *Engine) Label(id string, p float64) models.Prediction {
	return models.Prediction{ID: id, Probability: p, Label: e.Decide(p)}
}
