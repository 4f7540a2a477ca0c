// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/price-scout/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <result-file>",
	Short: "Render a saved search result without re-querying",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := report.ReadResultFile(args[0])
		if err != nil {
			return err
		}
		snap, err := rf.Snapshot()
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return report.FormatJSON(snap, cmd.OutOrStdout())
		}
		report.FormatTable(snap, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "output the stored snapshot as JSON")

	rootCmd.AddCommand(showCmd)
}
