package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/config"
	"github.com/pantryhub/groceryd/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "groceryd",
	Short: "Self-hosted grocery list backend with realtime push",
	Long: `groceryd serves a shared grocery list: a small REST API backed by
SQLite, with WebSocket broadcasts so every open page stays in sync.

Configuration comes from groceryd.toml (or --config), GROCERYD_*
environment variables, and command flags, in that order.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./groceryd.toml if present)")
}

// loadConfig reads configuration honoring the persistent --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// openStore opens the configured store with the schema applied.
// The caller must Close() it.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
