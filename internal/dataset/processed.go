package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// WriteProcessed writes the intermediate file: identifier column first,
// then the schema features in order.
func WriteProcessed(path string, schema models.FeatureSchema, records []models.ProcessedRecord) error {
	return WriteCSVAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(schema.Header()); err != nil {
			return err
		}

		row := make([]string, len(schema.Features)+1)
		for i, rec := range records {
			if len(rec.Values) != len(schema.Features) {
				return fmt.Errorf("record %d (%s) has %d values, schema has %d features",
					i, rec.ID, len(rec.Values), len(schema.Features))
			}
			row[0] = rec.ID
			for j, v := range rec.Values {
				row[j+1] = v.String()
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadProcessed loads an intermediate file and checks its header against
// the schema before decoding any row.
func ReadProcessed(ctx context.Context, path string, schema models.FeatureSchema) ([]models.ProcessedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	return DecodeProcessed(ctx, f, schema)
}

func DecodeProcessed(ctx context.Context, r io.Reader, schema models.FeatureSchema) ([]models.ProcessedRecord, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: processed file is empty", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidInput, err)
	}

	want := schema.Header()
	if !equalHeader(header, want) {
		return nil, fmt.Errorf("%w: got [%s], want [%s]", ErrHeaderMismatch,
			strings.Join(header, ","), strings.Join(want, ","))
	}

	var records []models.ProcessedRecord
	for {
		if len(records)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		line, _ := cr.FieldPos(0)
		rec := models.ProcessedRecord{
			ID:     row[0],
			Values: make([]models.FeatureValue, len(schema.Features)),
		}
		for j := range schema.Features {
			cell := row[j+1]
			if schema.KindOf(j) == models.FeatureCategorical {
				rec.Values[j] = models.CategoricalValue(cell)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %q is not numeric",
					ErrInvalidInput, line, schema.Features[j], cell)
			}
			rec.Values[j] = models.NumericValue(v)
		}
		records = append(records, rec)
	}

	return records, nil
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}
