package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"little-lemon/db"
	"little-lemon/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "little_lemon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func newTestMenuStore(t *testing.T) *SQLiteMenuStore {
	t.Helper()
	s := NewSQLiteMenuStore(openTestDB(t))
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestSQLiteMenuStore_EnsureSchemaIdempotent(t *testing.T) {
	s := newTestMenuStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))
}

func TestSQLiteMenuStore_ReadAllEmpty(t *testing.T) {
	s := newTestMenuStore(t)
	items, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, ok, err := s.SyncedAt(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteMenuStore_WriteAllThenReadAll(t *testing.T) {
	s := newTestMenuStore(t)
	ctx := context.Background()
	items := []models.MenuItem{
		{ID: 1, Name: "Greek Salad", Description: "Crispy lettuce", Price: 12.99, Image: "greekSalad.jpg", Category: "starters"},
		{ID: 2, Name: "Lemon Dessert", Price: 6.5, Image: "lemonDessert.jpg", Category: "desserts"},
		{ID: 3, Name: "Pasta", Category: "mains"},
	}
	before := time.Now().Add(-time.Second)
	require.NoError(t, s.WriteAll(ctx, items))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)

	at, ok, err := s.SyncedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.After(before))
}

func TestSQLiteMenuStore_WriteAllRefusesSecondPopulate(t *testing.T) {
	s := newTestMenuStore(t)
	ctx := context.Background()
	first := []models.MenuItem{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	require.NoError(t, s.WriteAll(ctx, first))

	err := s.WriteAll(ctx, []models.MenuItem{{ID: 3, Name: "C"}})
	assert.ErrorIs(t, err, ErrMenuPopulated)

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestSQLiteMenuStore_WriteAllIsAllOrNothing(t *testing.T) {
	s := newTestMenuStore(t)
	ctx := context.Background()
	// Duplicate primary key fails the insert; nothing may be left behind.
	err := s.WriteAll(ctx, []models.MenuItem{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}})
	require.Error(t, err)

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, ok, err := s.SyncedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteMenuStore_WriteAllEmptyIsNoop(t *testing.T) {
	s := newTestMenuStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteAll(ctx, nil))
	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteMenuStore_Replace(t *testing.T) {
	s := newTestMenuStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteAll(ctx, []models.MenuItem{{ID: 1, Name: "Old"}, {ID: 2, Name: "Older"}}))

	fresh := []models.MenuItem{{ID: 1, Name: "New"}}
	require.NoError(t, s.Replace(ctx, fresh))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestSQLiteMenuStore_NullColumnsReadAsZero(t *testing.T) {
	sqlDB := openTestDB(t)
	s := NewSQLiteMenuStore(sqlDB)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))
	_, err := sqlDB.ExecContext(ctx, `INSERT INTO menu (id, name) VALUES (1, 'Bare')`)
	require.NoError(t, err)

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MenuItem{{ID: 1, Name: "Bare"}}, got)
}
