package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"little-lemon/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgMenuSchema = `
CREATE TABLE IF NOT EXISTS menu (
	id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	price DOUBLE PRECISION,
	image TEXT,
	category TEXT
);
CREATE TABLE IF NOT EXISTS menu_sync (
	id INT PRIMARY KEY CHECK (id = 1),
	synced_at BIGINT NOT NULL
);`

// PgMenuStore keeps the menu in Postgres, shared by every bot instance.
type PgMenuStore struct {
	pool *pgxpool.Pool
}

func NewPgMenuStore(pool *pgxpool.Pool) *PgMenuStore {
	return &PgMenuStore{pool: pool}
}

func (s *PgMenuStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgMenuSchema); err != nil {
		return fmt.Errorf("create menu schema: %w", err)
	}
	return nil
}

func (s *PgMenuStore) ReadAll(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var (
			it                           models.MenuItem
			description, image, category *string
			price                        *float64
		)
		if err := rows.Scan(&it.ID, &it.Name, &description, &price, &image, &category); err != nil {
			return nil, fmt.Errorf("scan menu row: %w", err)
		}
		if description != nil {
			it.Description = *description
		}
		if price != nil {
			it.Price = *price
		}
		if image != nil {
			it.Image = *image
		}
		if category != nil {
			it.Category = *category
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// WriteAll locks the menu table for the whole transaction so two instances
// starting together cannot both see an empty table and both insert.
func (s *PgMenuStore) WriteAll(ctx context.Context, items []models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE menu IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock menu: %w", err)
		}
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM menu`).Scan(&count); err != nil {
			return fmt.Errorf("count menu: %w", err)
		}
		if count > 0 {
			return ErrMenuPopulated
		}
		return pgInsert(ctx, tx, items)
	})
}

func (s *PgMenuStore) Replace(ctx context.Context, items []models.MenuItem) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE menu IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock menu: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM menu`); err != nil {
			return fmt.Errorf("clear menu: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		return pgInsert(ctx, tx, items)
	})
}

func (s *PgMenuStore) SyncedAt(ctx context.Context) (time.Time, bool, error) {
	var ms int64
	err := s.pool.QueryRow(ctx, `SELECT synced_at FROM menu_sync WHERE id = 1`).Scan(&ms)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read menu sync: %w", err)
	}
	return time.UnixMilli(ms), true, nil
}

func pgInsert(ctx context.Context, tx pgx.Tx, items []models.MenuItem) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"menu"},
		[]string{"id", "name", "description", "price", "image", "category"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{it.ID, it.Name, it.Description, it.Price, it.Image, it.Category}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("insert menu: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO menu_sync (id, synced_at) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET synced_at = EXCLUDED.synced_at`,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("stamp menu sync: %w", err)
	}
	return nil
}
