package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/backup"
	"github.com/pantryhub/groceryd/internal/logging"
	"github.com/pantryhub/groceryd/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the store file and prune old backups",
	Long: `Copy the store file to the backups directory with a timestamped
name, then delete all but the most recent copies.

This is the same snapshot the server takes at startup; backups are
best-effort and skipped when the store file is missing or empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b := backup.New(cfg.DBPath, cfg.Backup.Dir, cfg.Backup.Keep, logging.New("[backup] ", cfg.LogFile))
		b.Run()

		snaps, err := b.Snapshots()
		if err != nil {
			fmt.Printf("%s No backups yet (%v)\n", ui.RenderWarn("⚠"), err)
			return nil
		}

		fmt.Printf("%s %d backup(s) in %s\n", ui.RenderPass("✓"), len(snaps), cfg.Backup.Dir)
		for _, s := range snaps {
			fmt.Printf("   %s\n", ui.RenderDim(s))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
