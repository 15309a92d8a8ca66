package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"little-lemon/bot"
	"little-lemon/config"
	"little-lemon/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchText string
	categories []string
	menuJSON   bool
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot (default)",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the menu, optionally filtered",
	Long: `Loads the menu (fetching and caching it on first use) and prints the
dishes whose name contains --search and whose category is one of --category.

Example:
  little-lemon menu --search pasta --category mains --category starters`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer be.close()

		ctx, cancel := signalContext()
		defer cancel()
		items := newLoader(cfg, be.menu).Load(ctx)
		items = services.FilterMenu(items, searchText, services.NewCategorySet(categories...))

		if menuJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		fmt.Println(services.MenuListText(items, cfg.Menu.ImageBaseURL))
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refetch the remote menu and replace the cached copy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer be.close()

		ctx, cancel := signalContext()
		defer cancel()
		items, err := newLoader(cfg, be.menu).Refresh(ctx)
		if err != nil {
			return err
		}
		logger.Info("menu refreshed", zap.Int("items", len(items)))
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer be.close()

		ctx := context.Background()
		if cfg.Store.Driver == config.StorePostgres {
			return applyMigrations(ctx, true)
		}
		if err := be.menu.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := be.prefs.EnsureSchema(ctx); err != nil {
			return err
		}
		fmt.Println("Schema ready:", cfg.Store.SQLitePath)
		return nil
	},
}

func init() {
	menuCmd.Flags().StringVarP(&searchText, "search", "s", "", "Only dishes whose name contains this text")
	menuCmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Only dishes in these categories (repeatable)")
	menuCmd.Flags().BoolVar(&menuJSON, "json", false, "Output in JSON format")

	rootCmd.AddCommand(botCmd, menuCmd, refreshCmd, migrateCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TOKEN not set")
	}
	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.close()

	ctx, cancel := signalContext()
	defer cancel()

	profiles := services.NewProfileService(be.prefs)
	if err := profiles.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	b, err := bot.New(cfg, newLoader(cfg, be.menu), profiles, logger)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	b.Start(ctx)
	return nil
}
