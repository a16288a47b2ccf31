package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/migrate"
	"github.com/pantryhub/groceryd/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create items from a JSONL file",
	Long: `Read a JSONL file (one item per line, as written by
'groceryd export') and create each record through the store.

Imported items get fresh ids: import is additive, not a restore.
Records without a name are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := migrate.Import(ctx, st, f, dryRun)
		if err != nil {
			return err
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %s %d item(s)\n", ui.RenderPass("✓"), verb, result.Created)
		if result.Skipped > 0 {
			fmt.Printf("%s Skipped %d record(s)\n", ui.RenderWarn("⚠"), result.Skipped)
		}
		for _, msg := range result.Errors {
			fmt.Printf("   %s\n", ui.RenderDim(msg))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Parse and report without writing")

	rootCmd.AddCommand(importCmd)
}
