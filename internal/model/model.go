// Package model loads the pre-trained classifier artifact and scores
// processed records with it.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/OldStager01/mlops-scoring/pkg/models"
	"github.com/OldStager01/mlops-scoring/pkg/validation"
)

var ErrModelLoad = errors.New("model load failed")

const (
	TypeLogistic = "logistic"
	TypeConstant = "constant"
	TypeRandom   = "random"

	// DefaultCategory is the encoding key used for unseen categories.
	DefaultCategory = "__default__"
)

// Classifier scores one processed record. Features reports the column
// order the classifier was trained on.
type Classifier interface {
	Type() string
	Version() string
	Features() []string
	Importances() map[string]float64
	PredictProba(rec models.ProcessedRecord) (float64, error)
}

// Artifact is the on-disk model document.
type Artifact struct {
	Type               string                        `json:"type"`
	Version            string                        `json:"version,omitempty"`
	Features           []string                      `json:"features"`
	Intercept          float64                       `json:"intercept,omitempty"`
	Weights            []float64                     `json:"weights,omitempty"`
	Categorical        map[string]map[string]float64 `json:"categorical,omitempty"`
	Probability        *float64                      `json:"probability,omitempty"`
	Seed               uint64                        `json:"seed,omitempty"`
	FeatureImportances map[string]float64            `json:"feature_importances,omitempty"`
}

// Load reads and validates a model artifact. Every failure wraps ErrModelLoad.
func Load(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Classifier, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrModelLoad, err)
	}
	return New(a)
}

// New builds the classifier described by a.
func New(a Artifact) (Classifier, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("%w: no features declared", ErrModelLoad)
	}
	if err := validation.ValidateUniqueNames(a.Features); err != nil {
		return nil, fmt.Errorf("%w: features: %v", ErrModelLoad, err)
	}
	for name := range a.FeatureImportances {
		if !contains(a.Features, name) {
			return nil, fmt.Errorf("%w: importance for unknown feature %q", ErrModelLoad, name)
		}
	}

	b := base{
		kind:        a.Type,
		version:     a.Version,
		features:    append([]string(nil), a.Features...),
		importances: a.FeatureImportances,
	}

	switch a.Type {
	case TypeLogistic:
		l, err := newLogistic(b, a)
		if err != nil {
			return nil, err
		}
		return l, nil
	case TypeConstant:
		if a.Probability == nil {
			return nil, fmt.Errorf("%w: constant model needs a probability", ErrModelLoad)
		}
		if err := validation.ValidateProbability(*a.Probability); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		return &Constant{base: b, probability: *a.Probability}, nil
	case TypeRandom:
		return &Random{base: b, seed: a.Seed}, nil
	case "":
		return nil, fmt.Errorf("%w: missing model type", ErrModelLoad)
	default:
		return nil, fmt.Errorf("%w: unknown model type %q", ErrModelLoad, a.Type)
	}
}

type base struct {
	kind        string
	version     string
	features    []string
	importances map[string]float64
}

func (b base) Type() string    { return b.kind }
func (b base) Version() string { return b.version }

func (b base) Features() []string {
	return append([]string(nil), b.features...)
}

func (b base) Importances() map[string]float64 {
	if len(b.importances) == 0 {
		return nil
	}
	out := make(map[string]float64, len(b.importances))
	for k, v := range b.importances {
		out[k] = v
	}
	return out
}

func (b base) checkWidth(rec models.ProcessedRecord) error {
	if len(rec.Values) != len(b.features) {
		return fmt.Errorf("record %s has %d values, model expects %d", rec.ID, len(rec.Values), len(b.features))
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
