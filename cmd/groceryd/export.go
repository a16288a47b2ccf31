package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/migrate"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the grocery list to stdout or a file",
	Long: `Export all items, newest first.

Formats:
  jsonl   one JSON object per line (importable with 'groceryd import')
  yaml    a single YAML document

Example usage:
  groceryd export                       # JSONL to stdout
  groceryd export --format yaml -o list.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		formatStr, _ := cmd.Flags().GetString("format")
		format, err := migrate.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer f.Close()
			out = f
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		return migrate.Export(ctx, st, out, format)
	},
}

func init() {
	exportCmd.Flags().String("format", "jsonl", "Export format (jsonl or yaml)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}
