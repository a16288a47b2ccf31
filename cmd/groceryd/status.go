package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/backup"
	"github.com/pantryhub/groceryd/internal/logging"
	"github.com/pantryhub/groceryd/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and backup status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		info, err := os.Stat(cfg.DBPath)
		if os.IsNotExist(err) {
			fmt.Printf("\n%s Store not initialized at %s\n", ui.RenderWarn("⚠"), cfg.DBPath)
			fmt.Printf("   Run 'groceryd serve' or 'groceryd add' to create it\n\n")
			return nil
		}
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		count, err := st.Count(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s Store: %s\n", ui.RenderAccent("•"), cfg.DBPath)
		fmt.Printf("   Size:  %d bytes\n", info.Size())
		fmt.Printf("   Items: %d\n", count)

		b := backup.New(cfg.DBPath, cfg.Backup.Dir, cfg.Backup.Keep, logging.New("[backup] ", cfg.LogFile))
		snaps, err := b.Snapshots()
		if err != nil {
			fmt.Printf("%s Backups: none (%s)\n\n", ui.RenderAccent("•"), ui.RenderDim(cfg.Backup.Dir))
			return nil
		}
		fmt.Printf("%s Backups: %d in %s (keep %d)\n\n", ui.RenderAccent("•"), len(snaps), cfg.Backup.Dir, cfg.Backup.Keep)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
