package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

const logisticJSON = `{
  "type": "logistic",
  "version": "2024.03",
  "features": ["amount", "gender", "dist_km"],
  "intercept": -1.0,
  "weights": [0.01, 1.0, 0.5],
  "categorical": {"gender": {"F": 0.5, "M": -0.5, "__default__": 0.1}},
  "feature_importances": {"amount": 0.6, "gender": 0.1, "dist_km": 0.3}
}`

func record(id string, values ...models.FeatureValue) models.ProcessedRecord {
	return models.ProcessedRecord{ID: id, Values: values}
}

func TestParse_Logistic(t *testing.T) {
	c, err := Parse([]byte(logisticJSON))
	require.NoError(t, err)

	assert.Equal(t, TypeLogistic, c.Type())
	assert.Equal(t, "2024.03", c.Version())
	assert.Equal(t, []string{"amount", "gender", "dist_km"}, c.Features())
	assert.Equal(t, map[string]float64{"amount": 0.6, "gender": 0.1, "dist_km": 0.3}, c.Importances())

	tests := []struct {
		name   string
		gender string
		z      float64
	}{
		{name: "known category", gender: "F", z: -1 + 1 + 0.5 + 1},
		{name: "other known category", gender: "M", z: -1 + 1 - 0.5 + 1},
		{name: "unseen category", gender: "X", z: -1 + 1 + 0.1 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.PredictProba(record("r",
				models.NumericValue(100),
				models.CategoricalValue(tt.gender),
				models.NumericValue(2),
			))
			require.NoError(t, err)
			assert.InDelta(t, 1/(1+math.Exp(-tt.z)), p, 1e-12)
		})
	}
}

func TestLogistic_ExtremeScoresStayInRange(t *testing.T) {
	c, err := New(Artifact{Type: TypeLogistic, Features: []string{"x"}, Weights: []float64{1}})
	require.NoError(t, err)

	hi, err := c.PredictProba(record("a", models.NumericValue(1e6)))
	require.NoError(t, err)
	lo, err := c.PredictProba(record("b", models.NumericValue(-1e6)))
	require.NoError(t, err)

	assert.Equal(t, 1.0, hi)
	assert.Equal(t, 0.0, lo)
}

func TestConstant(t *testing.T) {
	c, err := Parse([]byte(`{"type":"constant","features":["a","b"],"probability":0.42}`))
	require.NoError(t, err)

	p, err := c.PredictProba(record("x", models.NumericValue(1), models.NumericValue(2)))
	require.NoError(t, err)
	assert.Equal(t, 0.42, p)
	assert.Nil(t, c.Importances())
}

func TestRandom_Deterministic(t *testing.T) {
	c, err := Parse([]byte(`{"type":"random","features":["a"],"seed":7}`))
	require.NoError(t, err)
	other, err := Parse([]byte(`{"type":"random","features":["a"],"seed":8}`))
	require.NoError(t, err)

	rec := record("txn-1", models.NumericValue(1))
	p1, err := c.PredictProba(rec)
	require.NoError(t, err)
	p2, err := c.PredictProba(rec)
	require.NoError(t, err)
	p3, err := other.PredictProba(rec)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.NotEqual(t, p1, p3)
	assert.GreaterOrEqual(t, p1, 0.0)
	assert.Less(t, p1, 1.0)
}

func TestPredictProba_WidthMismatch(t *testing.T) {
	c, err := Parse([]byte(logisticJSON))
	require.NoError(t, err)

	_, err = c.PredictProba(record("r", models.NumericValue(1)))
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed json", doc: `{"type":`},
		{name: "missing type", doc: `{"features":["a"]}`},
		{name: "unknown type", doc: `{"type":"forest","features":["a"]}`},
		{name: "no features", doc: `{"type":"constant","probability":0.5}`},
		{name: "duplicate features", doc: `{"type":"random","features":["a","a"]}`},
		{name: "weight count", doc: `{"type":"logistic","features":["a","b"],"weights":[1]}`},
		{name: "unknown encoding", doc: `{"type":"logistic","features":["a"],"weights":[1],"categorical":{"b":{"x":1}}}`},
		{name: "constant without probability", doc: `{"type":"constant","features":["a"]}`},
		{name: "constant out of range", doc: `{"type":"constant","features":["a"],"probability":1.5}`},
		{name: "importance for unknown feature", doc: `{"type":"random","features":["a"],"feature_importances":{"b":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrModelLoad)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrModelLoad)

	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte(logisticJSON), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, TypeLogistic, c.Type())
}
