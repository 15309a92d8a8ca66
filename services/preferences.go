package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferenceStore is per-user key/value persistence for profile fields.
type PreferenceStore interface {
	EnsureSchema(ctx context.Context) error
	// Get returns the stored values for keys; missing keys are absent from the map.
	Get(ctx context.Context, userID int64, keys ...string) (map[string]string, error)
	Set(ctx context.Context, userID int64, values map[string]string) error
	Remove(ctx context.Context, userID int64, keys ...string) error
}

// SQLitePreferenceStore

type SQLitePreferenceStore struct {
	db *sql.DB
}

func NewSQLitePreferenceStore(db *sql.DB) *SQLitePreferenceStore {
	return &SQLitePreferenceStore{db: db}
}

func (s *SQLitePreferenceStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_preferences (
			user_id INTEGER NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (user_id, key)
		)`)
	if err != nil {
		return fmt.Errorf("create preferences schema: %w", err)
	}
	return nil
}

func (s *SQLitePreferenceStore) Get(ctx context.Context, userID int64, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, userID)
	for _, k := range keys {
		args = append(args, k)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM user_preferences WHERE user_id = ? AND key IN (`+placeholders(len(keys))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *SQLitePreferenceStore) Set(ctx context.Context, userID int64, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preferences tx: %w", err)
	}
	for k, v := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_preferences (user_id, key, value) VALUES (?, ?, ?)
			ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value`,
			userID, k, v,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set preference %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preferences: %w", err)
	}
	return nil
}

func (s *SQLitePreferenceStore) Remove(ctx context.Context, userID int64, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, userID)
	for _, k := range keys {
		args = append(args, k)
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_preferences WHERE user_id = ? AND key IN (`+placeholders(len(keys))+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("remove preferences: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// PgPreferenceStore

type PgPreferenceStore struct {
	pool *pgxpool.Pool
}

func NewPgPreferenceStore(pool *pgxpool.Pool) *PgPreferenceStore {
	return &PgPreferenceStore{pool: pool}
}

func (s *PgPreferenceStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_preferences (
			user_id BIGINT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (user_id, key)
		)`)
	if err != nil {
		return fmt.Errorf("create preferences schema: %w", err)
	}
	return nil
}

func (s *PgPreferenceStore) Get(ctx context.Context, userID int64, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT key, value FROM user_preferences
		WHERE user_id = $1 AND key = ANY($2)`,
		userID, keys,
	)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *PgPreferenceStore) Set(ctx context.Context, userID int64, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(`
			INSERT INTO user_preferences (user_id, key, value) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value`,
			userID, k, v,
		)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("set preferences: %w", err)
		}
		return nil
	})
}

func (s *PgPreferenceStore) Remove(ctx context.Context, userID int64, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM user_preferences WHERE user_id = $1 AND key = ANY($2)`,
		userID, keys,
	)
	if err != nil {
		return fmt.Errorf("remove preferences: %w", err)
	}
	return nil
}
