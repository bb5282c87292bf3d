// Package simulator generates synthetic transaction batches, together with
// a matching feature manifest and demo model, for local runs of the scorer.
package simulator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	"github.com/OldStager01/mlops-scoring/internal/dataset"
	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/internal/model"
)

type Config struct {
	Rows        int
	Seed        int64
	Start       time.Time
	Days        int
	Pattern     string
	MissingRate float64
}

type Transaction struct {
	ID          string
	Time        time.Time
	Amount      float64
	Category    string
	Gender      string
	Lat         float64
	Lon         float64
	MerchantLat float64
	MerchantLon float64
	// Missing marks fields blanked out to exercise imputation.
	Missing map[string]bool
}

// DefaultFeatures is the manifest written next to generated data.
var DefaultFeatures = []string{
	"amount", "cat_id", "gender",
	"hour", "dow", "is_weekend", "hour_sin", "hour_cos", "dist_km",
}

var Header = []string{
	"id", "transaction_time", "amount", "cat_id", "gender",
	"lat", "lon", "merchant_lat", "merchant_lon",
}

var (
	categories = []string{"grocery_pos", "gas_transport", "shopping_net", "food_dining", "travel", "entertainment"}
	cities     = [][2]float64{
		{40.71, -74.00},  // New York
		{34.05, -118.24}, // Los Angeles
		{41.88, -87.63},  // Chicago
		{29.76, -95.37},  // Houston
		{47.61, -122.33}, // Seattle
	}
)

type Simulator struct {
	config  Config
	rng     *rand.Rand
	pattern Pattern
}

func New(cfg Config) *Simulator {
	if cfg.Rows <= 0 {
		cfg.Rows = 1000
	}
	if cfg.Days <= 0 {
		cfg.Days = 7
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	}
	if cfg.MissingRate < 0 {
		cfg.MissingRate = 0
	}

	return &Simulator{
		config:  cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		pattern: ParsePattern(cfg.Pattern),
	}
}

// Generate returns the configured number of transactions. The same seed
// always yields the same batch.
func (s *Simulator) Generate() []Transaction {
	txns := make([]Transaction, s.config.Rows)
	for i := range txns {
		txns[i] = s.next(i)
	}
	return txns
}

func (s *Simulator) next(i int) Transaction {
	city := cities[s.rng.Intn(len(cities))]
	lat := city[0] + s.rng.NormFloat64()*0.3
	lon := city[1] + s.rng.NormFloat64()*0.3

	gender := "F"
	if s.rng.Intn(2) == 1 {
		gender = "M"
	}

	t := Transaction{
		ID:          fmt.Sprintf("txn-%06d", i+1),
		Time:        s.timestamp(),
		Amount:      math.Round(math.Exp(3.5+s.rng.NormFloat64())*100) / 100,
		Category:    categories[s.rng.Intn(len(categories))],
		Gender:      gender,
		Lat:         round(lat, 4),
		Lon:         round(lon, 4),
		MerchantLat: round(lat+s.rng.NormFloat64()*0.5, 4),
		MerchantLon: round(lon+s.rng.NormFloat64()*0.5, 4),
	}

	if s.config.MissingRate > 0 {
		for _, field := range []string{"amount", "cat_id", "merchant_lat"} {
			if s.rng.Float64() < s.config.MissingRate {
				if t.Missing == nil {
					t.Missing = make(map[string]bool)
				}
				t.Missing[field] = true
			}
		}
	}
	return t
}

// timestamp draws a second within the window, accepting it with the
// pattern's weight.
func (s *Simulator) timestamp() time.Time {
	span := int64(s.config.Days) * 24 * 3600
	for {
		ts := s.config.Start.Add(time.Duration(s.rng.Int63n(span)) * time.Second)
		if s.rng.Float64() < s.pattern.Weight(ts) {
			return ts
		}
	}
}

func (t Transaction) Row() []string {
	cell := func(field, value string) string {
		if t.Missing[field] {
			return ""
		}
		return value
	}
	return []string{
		t.ID,
		t.Time.Format("2006-01-02 15:04:05"),
		cell("amount", strconv.FormatFloat(t.Amount, 'f', 2, 64)),
		cell("cat_id", t.Category),
		t.Gender,
		strconv.FormatFloat(t.Lat, 'f', -1, 64),
		strconv.FormatFloat(t.Lon, 'f', -1, 64),
		cell("merchant_lat", strconv.FormatFloat(t.MerchantLat, 'f', -1, 64)),
		strconv.FormatFloat(t.MerchantLon, 'f', -1, 64),
	}
}

func WriteTransactions(path string, txns []Transaction) error {
	return dataset.WriteCSVAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(Header); err != nil {
			return err
		}
		for _, t := range txns {
			if err := w.Write(t.Row()); err != nil {
				return err
			}
		}
		return nil
	})
}

// DemoModel returns a hand-tuned logistic artefact over DefaultFeatures:
// late-night, weekend, large and far-away purchases score higher.
func DemoModel() model.Artifact {
	return model.Artifact{
		Type:      model.TypeLogistic,
		Version:   "demo-1",
		Features:  append([]string(nil), DefaultFeatures...),
		Intercept: -3.2,
		Weights:   []float64{0.004, 1, 0.5, -0.02, 0.05, 0.6, -0.4, 0.7, 0.012},
		Categorical: map[string]map[string]float64{
			"cat_id": {
				"shopping_net":        0.9,
				"travel":              0.6,
				"grocery_pos":         -0.3,
				model.DefaultCategory: 0,
			},
			"gender": {"F": 0, "M": 0.2, model.DefaultCategory: 0.1},
		},
		FeatureImportances: map[string]float64{
			"amount":     0.31,
			"cat_id":     0.18,
			"gender":     0.02,
			"hour":       0.12,
			"dow":        0.04,
			"is_weekend": 0.07,
			"hour_sin":   0.09,
			"hour_cos":   0.11,
			"dist_km":    0.06,
		},
	}
}

func writeJSON(path string, v interface{}) error {
	return dataset.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// Paths names the files WriteWorkspace produces.
type Paths struct {
	Input    string
	Manifest string
	Model    string
}

func DefaultPaths(root string) Paths {
	return Paths{
		Input:    filepath.Join(root, "input", "test.csv"),
		Manifest: filepath.Join(root, "features.json"),
		Model:    filepath.Join(root, "model.json"),
	}
}

// WriteWorkspace generates a batch and writes it with the default
// manifest and the demo model.
func (s *Simulator) WriteWorkspace(paths Paths) error {
	txns := s.Generate()

	if err := WriteTransactions(paths.Input, txns); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	if err := writeJSON(paths.Manifest, DefaultFeatures); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := writeJSON(paths.Model, DemoModel()); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	logger.Infof("Generated %d transactions (%s pattern, seed %d) into %s",
		len(txns), s.pattern.Name(), s.config.Seed, paths.Input)
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
