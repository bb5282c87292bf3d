package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// Logistic is a linear model squashed through the logistic function.
// Categorical features are mapped to numbers through per-feature encodings.
type Logistic struct {
	base
	intercept float64
	weights   []float64
	encodings []map[string]float64
}

func newLogistic(b base, a Artifact) (*Logistic, error) {
	if len(a.Weights) != len(a.Features) {
		return nil, fmt.Errorf("%w: %d weights for %d features", ErrModelLoad, len(a.Weights), len(a.Features))
	}
	if !isFinite(a.Intercept) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrModelLoad)
	}
	for i, w := range a.Weights {
		if !isFinite(w) {
			return nil, fmt.Errorf("%w: weight for %s is not finite", ErrModelLoad, a.Features[i])
		}
	}

	encodings := make([]map[string]float64, len(a.Features))
	for name, enc := range a.Categorical {
		i := -1
		for j, f := range a.Features {
			if f == name {
				i = j
				break
			}
		}
		if i < 0 {
			return nil, fmt.Errorf("%w: encoding for unknown feature %q", ErrModelLoad, name)
		}
		encodings[i] = enc
	}

	return &Logistic{
		base:      b,
		intercept: a.Intercept,
		weights:   append([]float64(nil), a.Weights...),
		encodings: encodings,
	}, nil
}

func (l *Logistic) PredictProba(rec models.ProcessedRecord) (float64, error) {
	if err := l.checkWidth(rec); err != nil {
		return 0, err
	}

	x := make([]float64, len(rec.Values))
	for i, v := range rec.Values {
		if v.IsCategorical() {
			x[i] = l.encode(i, v.Text)
			continue
		}
		x[i] = v.Num
	}

	return sigmoid(l.intercept + floats.Dot(l.weights, x)), nil
}

func (l *Logistic) encode(i int, category string) float64 {
	enc := l.encodings[i]
	if v, ok := enc[category]; ok {
		return v
	}
	return enc[DefaultCategory]
}

// sigmoid avoids overflow of exp for large |z|.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
