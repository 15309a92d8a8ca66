package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"little-lemon/models"
)

const sqliteMenuSchema = `
CREATE TABLE IF NOT EXISTS menu (
	id INTEGER PRIMARY KEY NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	price REAL,
	image TEXT,
	category TEXT
);
CREATE TABLE IF NOT EXISTS menu_sync (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	synced_at INTEGER NOT NULL
);`

// SQLiteMenuStore keeps the menu in the on-device SQLite database.
type SQLiteMenuStore struct {
	db *sql.DB
}

func NewSQLiteMenuStore(db *sql.DB) *SQLiteMenuStore {
	return &SQLiteMenuStore{db: db}
}

func (s *SQLiteMenuStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMenuSchema); err != nil {
		return fmt.Errorf("create menu schema: %w", err)
	}
	return nil
}

func (s *SQLiteMenuStore) ReadAll(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+menuColumns+` FROM menu ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var (
			it                           models.MenuItem
			description, image, category sql.NullString
			price                        sql.NullFloat64
		)
		if err := rows.Scan(&it.ID, &it.Name, &description, &price, &image, &category); err != nil {
			return nil, fmt.Errorf("scan menu row: %w", err)
		}
		it.Description = description.String
		it.Price = price.Float64
		it.Image = image.String
		it.Category = category.String
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLiteMenuStore) WriteAll(ctx context.Context, items []models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu`).Scan(&count); err != nil {
			return fmt.Errorf("count menu: %w", err)
		}
		if count > 0 {
			return ErrMenuPopulated
		}
		return sqliteInsert(ctx, tx, items)
	})
}

func (s *SQLiteMenuStore) Replace(ctx context.Context, items []models.MenuItem) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM menu`); err != nil {
			return fmt.Errorf("clear menu: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		return sqliteInsert(ctx, tx, items)
	})
}

func (s *SQLiteMenuStore) SyncedAt(ctx context.Context) (time.Time, bool, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT synced_at FROM menu_sync WHERE id = 1`).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read menu sync: %w", err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *SQLiteMenuStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin menu tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit menu tx: %w", err)
	}
	return nil
}

// sqliteInsert writes all items with a single multi-row INSERT and stamps menu_sync.
func sqliteInsert(ctx context.Context, tx *sql.Tx, items []models.MenuItem) error {
	placeholders := make([]string, len(items))
	args := make([]any, 0, len(items)*6)
	for i, it := range items {
		placeholders[i] = "(?, ?, ?, ?, ?, ?)"
		args = append(args, it.ID, it.Name, it.Description, it.Price, it.Image, it.Category)
	}
	q := `INSERT INTO menu (` + menuColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert menu: %w", err)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO menu_sync (id, synced_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET synced_at = excluded.synced_at`,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("stamp menu sync: %w", err)
	}
	return nil
}
