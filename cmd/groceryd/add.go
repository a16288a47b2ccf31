package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/ui"
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an item to the grocery list",
	Long: `Add an item directly to the store, without going through the HTTP
API. With no arguments an interactive prompt asks for the item.

Clients connected to a running server are not notified of direct
writes unless the server runs with --watch.

Example usage:
  groceryd add Milk
  groceryd add Eggs --quantity 12
  groceryd add                    # interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		quantity, _ := cmd.Flags().GetInt64("quantity")

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			var qtyStr string
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Item name").
						Value(&name).
						Validate(func(s string) error {
							if s == "" {
								return fmt.Errorf("name required")
							}
							return nil
						}),
					huh.NewInput().
						Title("Quantity").
						Placeholder("1").
						Value(&qtyStr).
						Validate(func(s string) error {
							if s == "" {
								return nil
							}
							_, err := strconv.ParseInt(s, 10, 64)
							return err
						}),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
			if qtyStr != "" {
				quantity, _ = strconv.ParseInt(qtyStr, 10, 64)
			}
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		item, err := st.Create(ctx, name, quantity)
		if err != nil {
			return err
		}

		fmt.Printf("%s Added #%d %s x%d\n", ui.RenderPass("✓"), item.ID, item.Name, item.Quantity)
		return nil
	},
}

func init() {
	addCmd.Flags().Int64P("quantity", "q", 0, "Quantity (default 1)")

	rootCmd.AddCommand(addCmd)
}
