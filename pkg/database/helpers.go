package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// InTx runs fn in one transaction. fn's error, or a panic inside it, rolls
// the transaction back; otherwise it is committed.
func (db *DB) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const missingTablesQuery = `
	SELECT name
	FROM unnest($1::text[]) AS name
	WHERE NOT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = name
	)
	ORDER BY name`

// MissingTables returns the names in tables that do not exist in the
// current schema, sorted.
func (db *DB) MissingTables(ctx context.Context, tables ...string) ([]string, error) {
	rows, err := db.QueryContext(ctx, missingTablesQuery, pq.Array(tables))
	if err != nil {
		return nil, fmt.Errorf("check tables: %w", err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("check tables: %w", err)
		}
		missing = append(missing, name)
	}
	return missing, rows.Err()
}
