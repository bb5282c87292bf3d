package preprocess

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OldStager01/mlops-scoring/internal/dataset"
	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/internal/manifest"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

const (
	ctxCheckInterval = 1024
	missingCategory  = "na"
)

var ErrMissingColumn = errors.New("required column missing from input")

type Config struct {
	IDColumn           string
	TimestampColumn    string
	LatColumn          string
	LonColumn          string
	MerchantLatColumn  string
	MerchantLonColumn  string
	CategoricalColumns []string
}

type Preprocessor struct {
	config      Config
	categorical map[string]bool
}

type column struct {
	name    string
	kind    models.FeatureKind
	source  string
	extract extractor
}

func New(cfg Config) *Preprocessor {
	if cfg.IDColumn == "" {
		cfg.IDColumn = "id"
	}
	if cfg.TimestampColumn == "" {
		cfg.TimestampColumn = "transaction_time"
	}
	if cfg.LatColumn == "" {
		cfg.LatColumn = "lat"
	}
	if cfg.LonColumn == "" {
		cfg.LonColumn = "lon"
	}
	if cfg.MerchantLatColumn == "" {
		cfg.MerchantLatColumn = "merchant_lat"
	}
	if cfg.MerchantLonColumn == "" {
		cfg.MerchantLonColumn = "merchant_lon"
	}
	if cfg.CategoricalColumns == nil {
		cfg.CategoricalColumns = []string{"cat_id", "gender"}
	}

	categorical := make(map[string]bool, len(cfg.CategoricalColumns))
	for _, c := range cfg.CategoricalColumns {
		categorical[c] = true
	}

	return &Preprocessor{config: cfg, categorical: categorical}
}

// Schema describes the processed layout produced for m.
func (p *Preprocessor) Schema(m *manifest.Manifest) models.FeatureSchema {
	features := m.Features()
	kinds := make([]models.FeatureKind, len(features))
	for i, name := range features {
		kinds[i] = p.kindOf(name)
	}
	return models.FeatureSchema{IDColumn: p.config.IDColumn, Features: features, Kinds: kinds}
}

func (p *Preprocessor) kindOf(name string) models.FeatureKind {
	if _, ok := p.derived(name); ok {
		return models.FeatureNumeric
	}
	if p.categorical[name] {
		return models.FeatureCategorical
	}
	return models.FeatureNumeric
}

// Run projects every raw row onto the manifest. Output rows are in input
// order and carry exactly the manifest's features.
func (p *Preprocessor) Run(ctx context.Context, table *dataset.RawTable, m *manifest.Manifest) ([]models.ProcessedRecord, error) {
	columns, err := p.plan(table, m)
	if err != nil {
		return nil, err
	}

	n := table.Len()
	records := make([]models.ProcessedRecord, n)
	for i, raw := range table.Records {
		records[i] = models.ProcessedRecord{
			ID:     strings.TrimSpace(raw.Fields[p.config.IDColumn]),
			Values: make([]models.FeatureValue, len(columns)),
		}
	}

	for j, col := range columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if col.kind == models.FeatureCategorical {
			for i, raw := range table.Records {
				records[i].Values[j] = models.CategoricalValue(normalizeCategory(raw.Fields[col.source]))
			}
			continue
		}
		if err := p.fillNumeric(ctx, col, table.Records, records, j); err != nil {
			return nil, err
		}
	}

	logger.WithStage(ctx, string(models.StagePreprocess)).Debugf(
		"Preprocessed: rows=%d, features=%d", n, len(columns),
	)

	return records, nil
}

func (p *Preprocessor) fillNumeric(ctx context.Context, col column, raws []models.RawRecord, out []models.ProcessedRecord, j int) error {
	values := make([]float64, len(raws))
	parsed := make([]float64, 0, len(raws))
	var missing []int

	for i, raw := range raws {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		v, ok := col.extract(raw)
		if !ok {
			missing = append(missing, i)
			continue
		}
		values[i] = v
		parsed = append(parsed, v)
	}

	if len(missing) > 0 {
		fill, _ := median(parsed)
		for _, i := range missing {
			values[i] = fill
		}
		logger.WithStage(ctx, string(models.StagePreprocess)).Debugf(
			"Imputed %d cells of %s with %g", len(missing), col.name, fill,
		)
	}

	for i, v := range values {
		out[i].Values[j] = models.NumericValue(v)
	}
	return nil
}

// plan resolves every manifest feature to an extraction rule and reports
// all missing source columns at once.
func (p *Preprocessor) plan(table *dataset.RawTable, m *manifest.Manifest) ([]column, error) {
	var missing []string
	seen := make(map[string]bool)
	require := func(name string) {
		if !table.HasColumn(name) && !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
	}

	require(p.config.IDColumn)

	features := m.Features()
	columns := make([]column, 0, len(features))
	for _, name := range features {
		if d, ok := p.derived(name); ok {
			for _, src := range d.sources {
				require(src)
			}
			columns = append(columns, column{name: name, kind: models.FeatureNumeric, extract: d.extract})
			continue
		}

		require(name)
		col := column{name: name, kind: p.kindOf(name), source: name}
		if col.kind == models.FeatureNumeric {
			source := name
			col.extract = func(r models.RawRecord) (float64, bool) {
				return parseNumber(r.Fields[source])
			}
		}
		columns = append(columns, col)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return columns, nil
}
