package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"little-lemon/config"
	"little-lemon/db"
	"little-lemon/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "little-lemon",
	Short: "Little Lemon menu bot",
	Long: `Little Lemon serves the restaurant menu through a Telegram bot.

The menu is fetched from the remote JSON document once and cached in a
local store (SQLite by default, Postgres with STORE_DRIVER=postgres).
Run without a subcommand to start the bot.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err = newLogger(cfg.Log, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(lc config.LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// backend is the configured store pair plus its cleanup.
type backend struct {
	menu  services.MenuStore
	prefs services.PreferenceStore
	close func()
}

func openBackend(c *config.Config) (*backend, error) {
	switch c.Store.Driver {
	case config.StorePostgres:
		if err := db.Init(c.DB); err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		return &backend{
			menu:  services.NewPgMenuStore(db.Pool),
			prefs: services.NewPgPreferenceStore(db.Pool),
			close: db.Close,
		}, nil
	default:
		sqlDB, err := db.OpenSQLite(c.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		return &backend{
			menu:  services.NewSQLiteMenuStore(sqlDB),
			prefs: services.NewSQLitePreferenceStore(sqlDB),
			close: func() { sqlDB.Close() },
		}, nil
	}
}

func newLoader(c *config.Config, store services.MenuStore) *services.MenuLoader {
	return services.NewMenuLoader(store,
		services.NewHTTPMenuSource(c.Menu.RemoteURL, c.Menu.FetchTimeout),
		services.WithCacheTTL(c.Menu.CacheTTL),
		services.WithLogger(logger.Named("menu")),
	)
}
