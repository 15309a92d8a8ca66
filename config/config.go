package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	DefaultMenuURL      = "https://raw.githubusercontent.com/Meta-Mobile-Developer-PC/Working-With-Data-API/main/capstone.json"
	DefaultImageBaseURL = "https://github.com/Meta-Mobile-Developer-PC/Working-With-Data-API/blob/main/images"
)

type Config struct {
	Store    StoreConfig
	DB       DBConfig
	Menu     MenuConfig
	Telegram TelegramConfig
	Log      LogConfig
}

type StoreConfig struct {
	Driver     string // "sqlite" or "postgres"
	SQLitePath string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type MenuConfig struct {
	RemoteURL      string
	ImageBaseURL   string
	CacheTTL       time.Duration // 0 = never refetch once populated
	FetchTimeout   time.Duration
	SearchDebounce time.Duration
}

type TelegramConfig struct {
	Token string
}

type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}
	ttl, err := getDuration("MENU_CACHE_TTL", "0")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := getDuration("MENU_FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	debounce, err := getDuration("SEARCH_DEBOUNCE", "500ms")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", StoreSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "little_lemon.db"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "little_lemon"),
		},
		Menu: MenuConfig{
			RemoteURL:      getEnv("MENU_URL", DefaultMenuURL),
			ImageBaseURL:   getEnv("MENU_IMAGE_BASE_URL", DefaultImageBaseURL),
			CacheTTL:       ttl,
			FetchTimeout:   fetchTimeout,
			SearchDebounce: debounce,
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	if cfg.Store.Driver != StoreSQLite && cfg.Store.Driver != StorePostgres {
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.Store.Driver)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go durations ("90s", "24h") and a bare "0".
func getDuration(key, def string) (time.Duration, error) {
	v := getEnv(key, def)
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must be >= 0", key)
	}
	return d, nil
}
