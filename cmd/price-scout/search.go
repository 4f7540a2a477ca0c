// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/price-scout/internal/pipeline"
	"github.com/pdiddy/price-scout/internal/report"
	"github.com/pdiddy/price-scout/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [item]",
	Short: "Search nearby stores for an item and compare prices",
	Long: `Search resolves the location, finds nearby grocery stores, looks up the
item's price at each store and prints the results grouped by store, cheapest
first. Stores where no price could be found are left out.

Use --output to save the result to a YAML file that "price-scout show" can
render later.`,
	Example: `  price-scout search "organic bananas" --zip 19103 --radius 3
  price-scout search --query "whole milk" --lat 40.71 --lng -74.00 --json`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	req, err := searchRequestFromFlags(cmd, args)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet {
		a.orch.OnProgress = func(s pipeline.Snapshot) {
			if s.Progress != "" {
				fmt.Fprintln(os.Stderr, s.Progress)
			}
		}
	}

	snap, searchErr := a.orch.Search(context.Background(), req)

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := report.WriteResultFile(output, req, snap); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved results to %s\n", output)
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if err := report.FormatJSON(snap, out); err != nil {
			return err
		}
	} else if searchErr == nil || len(snap.Citations) > 0 {
		report.FormatTable(snap, out)
	}
	return searchErr
}

// searchRequestFromFlags builds a request from positional args and flags.
func searchRequestFromFlags(cmd *cobra.Command, args []string) (pipeline.Request, error) {
	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		query = strings.Join(args, " ")
	}
	zip, _ := cmd.Flags().GetString("zip")
	radius, _ := cmd.Flags().GetFloat64("radius")

	req := pipeline.Request{Query: query, PostalCode: zip, RadiusMiles: radius}

	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
			return req, fmt.Errorf("--lat and --lng must be given together")
		}
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		req.ExplicitPoint = &types.Coordinates{Lat: lat, Lng: lng}
	}

	if device, _ := cmd.Flags().GetString("device"); device != "" {
		p, err := parsePoint(device)
		if err != nil {
			return req, fmt.Errorf("invalid --device: %w", err)
		}
		req.DevicePoint = p
	}
	return req, nil
}

// parsePoint parses "lat,lng".
func parsePoint(s string) (*types.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates out of range: %s", s)
	}
	return &types.Coordinates{Lat: lat, Lng: lng}, nil
}

func init() {
	searchCmd.Flags().String("query", "", "item to search for (or pass it as arguments)")
	searchCmd.Flags().String("zip", "", "5-digit US ZIP code to search around")
	searchCmd.Flags().Float64("radius", 0, "search radius in miles (default from config, 5)")
	searchCmd.Flags().Float64("lat", 0, "latitude of a chosen search point")
	searchCmd.Flags().Float64("lng", 0, "longitude of a chosen search point")
	searchCmd.Flags().String("device", "", "device position as lat,lng")
	searchCmd.Flags().Bool("json", false, "output the result snapshot as JSON")
	searchCmd.Flags().StringP("output", "o", "", "save the result to a YAML file")
	searchCmd.Flags().BoolP("quiet", "q", false, "do not print progress")

	rootCmd.AddCommand(searchCmd)
}
