package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "SQLITE_PATH", "DB_PORT", "MENU_URL", "MENU_CACHE_TTL", "MENU_FETCH_TIMEOUT", "SEARCH_DEBOUNCE", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "little_lemon.db", cfg.Store.SQLitePath)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, DefaultMenuURL, cfg.Menu.RemoteURL)
	assert.Equal(t, time.Duration(0), cfg.Menu.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.Menu.FetchTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Menu.SearchDebounce)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", StorePostgres)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("MENU_CACHE_TTL", "24h")
	t.Setenv("SEARCH_DEBOUNCE", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 24*time.Hour, cfg.Menu.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Menu.SearchDebounce)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORE_DRIVER", "mysql"},
		{"DB_PORT", "abc"},
		{"MENU_CACHE_TTL", "forever"},
		{"MENU_FETCH_TIMEOUT", "-5s"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
