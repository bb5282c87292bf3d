package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// Postgres accepts at most 65535 bind parameters per statement.
const (
	predictionColumns = 5
	maxBatchRows      = 65535 / predictionColumns
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type PredictionRepository struct {
	batchSize int
}

func NewPredictionRepository(batchSize int) *PredictionRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	if batchSize > maxBatchRows {
		batchSize = maxBatchRows
	}
	return &PredictionRepository{batchSize: batchSize}
}

func (r *PredictionRepository) BatchSize() int {
	return r.batchSize
}

func (r *PredictionRepository) InsertRun(ctx context.Context, db Execer, run *models.RunSummary) error {
	query := `
		INSERT INTO scoring_runs
			(run_id, stage, started_at, finished_at, rows_read, rows_scored, positives,
			 threshold, threshold_default, model_type, model_version, mean_probability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := db.ExecContext(ctx, query,
		run.RunID,
		string(run.Stage),
		run.StartedAt,
		run.FinishedAt,
		run.RowsRead,
		run.RowsScored,
		run.Positives,
		run.Threshold,
		run.ThresholdDefault,
		nullString(run.ModelType),
		nullString(run.ModelVersion),
		run.MeanProbability,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	return nil
}

// InsertPredictions writes predictions in multi-row batches. row_index
// keeps the submission order.
func (r *PredictionRepository) InsertPredictions(ctx context.Context, db Execer, runID string, predictions []models.Prediction) (int, error) {
	written := 0
	for start := 0; start < len(predictions); start += r.batchSize {
		end := start + r.batchSize
		if end > len(predictions) {
			end = len(predictions)
		}

		query, args := buildPredictionInsert(runID, start, predictions[start:end])
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return written, fmt.Errorf("failed to insert predictions %d-%d: %w", start, end-1, err)
		}
		written += end - start
	}
	return written, nil
}

func buildPredictionInsert(runID string, offset int, batch []models.Prediction) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO predictions (run_id, row_index, record_id, probability, label) VALUES ")

	args := make([]interface{}, 0, len(batch)*predictionColumns)
	for i, p := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, runID, offset+i, p.ID, p.Probability, p.Label)
	}
	return sb.String(), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
