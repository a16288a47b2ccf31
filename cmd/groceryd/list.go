package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the grocery list",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := st.List(ctx)
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println(ui.RenderDim("(empty list)"))
			return nil
		}

		for _, it := range items {
			line := fmt.Sprintf("#%-4d %s x%d", it.ID, it.Name, it.Quantity)
			if it.Checked != 0 {
				fmt.Printf("%s %s\n", ui.RenderPass("✓"), ui.RenderChecked(line))
			} else {
				fmt.Printf("  %s\n", line)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
