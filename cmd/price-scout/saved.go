// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/price-scout/internal/favorites"
	"github.com/pdiddy/price-scout/internal/report"
	"github.com/pdiddy/price-scout/pkg/types"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved items (list, add, remove)",
	Long: `Saved manages items kept in the local SQLite database. Items are added
by ID from a result file written with "price-scout search --output".`,
}

// --- list subcommand ---

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved items, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openFavorites()
		if err != nil {
			return err
		}
		defer store.Close()

		saved, err := store.List(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(saved)
		}
		items := make([]types.DisplayItem, len(saved))
		for i, s := range saved {
			items[i] = s.DisplayItem
		}
		report.FormatSaved(items, cmd.OutOrStdout())
		return nil
	},
}

// --- add subcommand ---

var savedAddCmd = &cobra.Command{
	Use:   "add <id>...",
	Short: "Save items from a result file by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		if from == "" {
			return fmt.Errorf("--from is required")
		}
		rf, err := report.ReadResultFile(from)
		if err != nil {
			return err
		}

		byID := make(map[string]types.DisplayItem)
		for _, g := range rf.Groups {
			for _, it := range g.Items {
				byID[it.ID] = it
			}
		}

		store, err := openFavorites()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, id := range args {
			it, ok := byID[id]
			if !ok {
				return fmt.Errorf("item %s not found in %s", id, from)
			}
			if err := store.Save(context.Background(), it); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved  %s\n", id)
		}
		return nil
	},
}

// --- remove subcommand ---

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove saved items by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openFavorites()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, id := range args {
			removed, err := store.Remove(context.Background(), id)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed  %s\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "missing  %s\n", id)
			}
		}
		return nil
	},
}

func openFavorites() (*favorites.Store, error) {
	return favorites.NewStore(types.StoreConfig{DataDir: viper.GetString("store.data_dir")})
}

func init() {
	savedListCmd.Flags().Bool("json", false, "output saved items as JSON")
	savedAddCmd.Flags().String("from", "", "result file written by search --output")

	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedAddCmd)
	savedCmd.AddCommand(savedRemoveCmd)
	rootCmd.AddCommand(savedCmd)
}
