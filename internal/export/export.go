// Package export copies a finished run and its predictions into Postgres
// when enabled. The submission files stay the source of truth.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/pkg/config"
	"github.com/OldStager01/mlops-scoring/pkg/database"
	"github.com/OldStager01/mlops-scoring/pkg/database/queries"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

type Exporter interface {
	Export(ctx context.Context, run *models.RunSummary, predictions []models.Prediction) error
	Close() error
}

// Nop is used when export is disabled.
type Nop struct{}

func (Nop) Export(context.Context, *models.RunSummary, []models.Prediction) error { return nil }
func (Nop) Close() error                                                          { return nil }

// Store runs fn inside a single transaction.
type Store interface {
	InTx(ctx context.Context, fn func(db queries.Execer) error) error
	Close() error
}

type dbStore struct {
	db *database.DB
}

func (s dbStore) InTx(ctx context.Context, fn func(db queries.Execer) error) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

func (s dbStore) Close() error {
	return s.db.Close()
}

type PostgresExporter struct {
	store Store
	repo  *queries.PredictionRepository
}

func NewPostgres(store Store, batchSize int) *PostgresExporter {
	return &PostgresExporter{
		store: store,
		repo:  queries.NewPredictionRepository(batchSize),
	}
}

// Export writes the run row and every prediction atomically: either the
// whole run lands or nothing does.
func (e *PostgresExporter) Export(ctx context.Context, run *models.RunSummary, predictions []models.Prediction) error {
	var written int
	err := e.store.InTx(ctx, func(db queries.Execer) error {
		if err := e.repo.InsertRun(ctx, db, run); err != nil {
			return err
		}
		n, err := e.repo.InsertPredictions(ctx, db, run.RunID, predictions)
		written = n
		return err
	})
	if err != nil {
		return fmt.Errorf("export run %s: %w", run.RunID, err)
	}

	logger.WithStage(ctx, "export").Infof("Exported %d predictions", written)
	return nil
}

func (e *PostgresExporter) Close() error {
	return e.store.Close()
}

// Open returns the exporter selected by cfg. With export disabled no
// connection is attempted.
func Open(ctx context.Context, cfg *config.Config) (Exporter, error) {
	if !cfg.Export.Enabled {
		return Nop{}, nil
	}

	db, err := database.New(ctx, cfg.Database.ToDBConfig())
	if err != nil {
		return nil, err
	}

	if err := prepareSchema(ctx, db, cfg); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infof("Prediction export enabled (%s:%d/%s)", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	return NewPostgres(dbStore{db: db}, cfg.Export.BatchSize), nil
}

// prepareSchema applies the embedded migrations, or with migrations off
// checks that the tables are already there.
func prepareSchema(ctx context.Context, db *database.DB, cfg *config.Config) error {
	timeout := cfg.Database.MigrationTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if cfg.Export.Migrate {
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	}

	missing, err := db.MissingTables(ctx, exportTables...)
	if err != nil {
		return err
	}
	return requireTables(missing)
}

var exportTables = []string{"scoring_runs", "predictions"}

func requireTables(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("tables %s do not exist and export.migrate is off", strings.Join(missing, ", "))
}
