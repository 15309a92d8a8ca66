package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"little-lemon/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MenuLoader serves the menu from the local store, populating it from the
// remote source when it is empty (or stale, when a cache TTL is set).
type MenuLoader struct {
	store  MenuStore
	source MenuSource
	log    *zap.Logger
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group
}

type LoaderOption func(*MenuLoader)

// WithCacheTTL makes stored rows older than ttl stale. Zero keeps them forever.
func WithCacheTTL(ttl time.Duration) LoaderOption {
	return func(l *MenuLoader) { l.ttl = ttl }
}

func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *MenuLoader) {
		if log != nil {
			l.log = log
		}
	}
}

func withClock(now func() time.Time) LoaderOption {
	return func(l *MenuLoader) { l.now = now }
}

func NewMenuLoader(store MenuStore, source MenuSource, opts ...LoaderOption) *MenuLoader {
	l := &MenuLoader{
		store:  store,
		source: source,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the menu. Failures are logged and yield whatever the store
// could provide, possibly nothing; Load never fails.
func (l *MenuLoader) Load(ctx context.Context) []models.MenuItem {
	v, _, _ := l.group.Do("load", func() (any, error) {
		return l.load(ctx), nil
	})
	return v.([]models.MenuItem)
}

func (l *MenuLoader) load(ctx context.Context) []models.MenuItem {
	if err := l.store.EnsureSchema(ctx); err != nil {
		l.log.Error("menu schema", zap.Error(err))
		return []models.MenuItem{}
	}
	rows, err := l.store.ReadAll(ctx)
	if err != nil {
		l.log.Error("read menu", zap.Error(err))
		return []models.MenuItem{}
	}
	if len(rows) > 0 && !l.stale(ctx) {
		l.log.Debug("menu found in store", zap.Int("items", len(rows)))
		return rows
	}

	if len(rows) == 0 {
		l.log.Info("menu store empty, fetching from remote")
	} else {
		l.log.Info("menu stale, refetching from remote", zap.Duration("ttl", l.ttl))
	}
	items, err := l.fetch(ctx)
	if err != nil {
		l.log.Error("fetch menu", zap.Error(err))
		return rows
	}
	if len(items) == 0 {
		l.log.Warn("remote menu is empty")
		return rows
	}

	if len(rows) > 0 {
		if err := l.store.Replace(ctx, items); err != nil {
			l.log.Error("replace menu", zap.Error(err))
			return rows
		}
		return items
	}

	err = l.store.WriteAll(ctx, items)
	switch {
	case errors.Is(err, ErrMenuPopulated):
		// Someone else populated the store first; theirs is authoritative.
		stored, rerr := l.store.ReadAll(ctx)
		if rerr != nil {
			l.log.Error("re-read menu", zap.Error(rerr))
			return []models.MenuItem{}
		}
		return stored
	case err != nil:
		l.log.Error("write menu", zap.Error(err))
		return []models.MenuItem{}
	}
	l.log.Info("menu stored", zap.Int("items", len(items)))
	return items
}

// Refresh refetches the remote menu and replaces the stored one.
func (l *MenuLoader) Refresh(ctx context.Context) ([]models.MenuItem, error) {
	v, err, _ := l.group.Do("refresh", func() (any, error) {
		if err := l.store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		items, err := l.fetch(ctx)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, errors.New("remote menu is empty")
		}
		if err := l.store.Replace(ctx, items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("refresh menu: %w", err)
	}
	return v.([]models.MenuItem), nil
}

func (l *MenuLoader) fetch(ctx context.Context) ([]models.MenuItem, error) {
	raw, err := l.source.FetchMenu(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeMenu(raw), nil
}

func (l *MenuLoader) stale(ctx context.Context) bool {
	if l.ttl <= 0 {
		return false
	}
	syncedAt, ok, err := l.store.SyncedAt(ctx)
	if err != nil {
		l.log.Warn("read menu sync time", zap.Error(err))
		return false
	}
	if !ok {
		return true
	}
	return l.now().Sub(syncedAt) >= l.ttl
}

// NormalizeMenu numbers records 1..N in fetch order and strips every
// whitespace character from image names.
func NormalizeMenu(raw []RemoteMenuItem) []models.MenuItem {
	items := make([]models.MenuItem, len(raw))
	for i, r := range raw {
		items[i] = models.MenuItem{
			ID:          int64(i + 1),
			Name:        r.Name,
			Description: r.Description,
			Price:       float64(r.Price),
			Image:       stripSpace(r.Image),
			Category:    r.Category,
		}
	}
	return items
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
