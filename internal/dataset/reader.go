// Package dataset reads and writes the CSV files exchanged between the
// pipeline stages.
package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OldStager01/mlops-scoring/pkg/models"
	"github.com/OldStager01/mlops-scoring/pkg/validation"
)

// ctxCheckInterval bounds how many rows are handled between cancellation checks.
const ctxCheckInterval = 1024

// RawTable is the parsed raw input: normalised header plus rows in file order.
type RawTable struct {
	Header  []string
	Records []models.RawRecord
}

func (t *RawTable) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

func (t *RawTable) Len() int {
	return len(t.Records)
}

// ReadRaw loads a raw CSV file with a header row.
func ReadRaw(ctx context.Context, path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	return DecodeRaw(ctx, f)
}

// DecodeRaw parses raw CSV from r.
func DecodeRaw(ctx context.Context, r io.Reader) (*RawTable, error) {
	cr := csv.NewReader(bufio.NewReader(r))

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidInput, err)
	}

	for i, h := range header {
		header[i] = validation.SanitizeHeader(h)
		if header[i] == "" {
			return nil, fmt.Errorf("%w: header column %d is blank", ErrInvalidInput, i+1)
		}
	}
	if err := validation.ValidateUniqueNames(header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidInput, err)
	}

	table := &RawTable{Header: header}
	for {
		if len(table.Records)%ctxCheckInterval == 0 {
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
		fields := make(map[string]string, len(header))
		for i, h := range header {
			fields[h] = row[i]
		}
		table.Records = append(table.Records, models.RawRecord{Line: line, Fields: fields})
	}

	return table, nil
}
