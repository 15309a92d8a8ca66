package services

import (
	"context"
	"errors"
	"time"

	"little-lemon/models"
)

// ErrMenuPopulated is returned by WriteAll when the menu table already has rows.
var ErrMenuPopulated = errors.New("menu already populated")

// MenuStore is the local persistent copy of the menu.
type MenuStore interface {
	// EnsureSchema creates the menu tables if absent. Safe to call on every start.
	EnsureSchema(ctx context.Context) error
	// ReadAll returns all rows ordered by id; empty when never populated.
	ReadAll(ctx context.Context) ([]models.MenuItem, error)
	// WriteAll inserts items into an empty table in one transaction.
	WriteAll(ctx context.Context, items []models.MenuItem) error
	// Replace swaps the whole menu for items in one transaction.
	Replace(ctx context.Context, items []models.MenuItem) error
	// SyncedAt reports when the menu was last populated.
	SyncedAt(ctx context.Context) (time.Time, bool, error)
}

const menuColumns = "id, name, description, price, image, category"
