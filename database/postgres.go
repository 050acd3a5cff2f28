package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type DB struct {
	*sql.DB
}

// NewPostgres connects with lib/pq and makes sure the kv_store table exists.
func NewPostgres(ctx context.Context, connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv_store table, %w", err)
	}

	zap.L().Info("Successfully connected to PostgreSQL")
	return &DB{db}, nil
}

func (db *DB) Load(ctx context.Context, key string) (json.RawMessage, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var value []byte
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return json.RawMessage(value), nil
}

func (db *DB) Save(ctx context.Context, key string, value json.RawMessage) error {
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
              ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	result, err := db.ExecContext(ctx, query, key, []byte(value))
	if err != nil {
		zap.L().Error("Failed to save key", zap.String("key", key), zap.Error(err))
		return err
	}

	rows, _ := result.RowsAffected()
	zap.L().Debug("Saved key", zap.String("key", key), zap.Int64("rows", rows))
	return nil
}
