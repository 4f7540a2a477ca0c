// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders search results for people and machines and saves
// them to result files that can be shown again without re-querying.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/price-scout/internal/geo"
	"github.com/pdiddy/price-scout/internal/pipeline"
	"github.com/pdiddy/price-scout/pkg/types"
)

// FormatTable writes a snapshot as human-readable grouped tables to w.
func FormatTable(snap pipeline.Snapshot, w io.Writer) {
	if snap.Descriptor != "" {
		fmt.Fprintf(w, "Results for %s\n\n", snap.Descriptor)
	}

	switch snap.State {
	case pipeline.Failed:
		fmt.Fprintf(w, "Error: %s\n", snap.Error)
		formatCitations(snap.Citations, w)
		return
	case pipeline.Empty:
		fmt.Fprintln(w, snap.Info)
		formatCitations(snap.Citations, w)
		return
	}

	if len(snap.Groups) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	for _, g := range snap.Groups {
		fmt.Fprintln(w, g.LocationName)
		if g.RepresentativeAddress != "" {
			fmt.Fprintf(w, "  %s\n", g.RepresentativeAddress)
		}
		fmt.Fprintf(w, "  %-10s  %-44s  %-8s  %s\n", "Price", "Item", "Distance", "Updated")
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 80))
		for _, it := range g.Items {
			fmt.Fprintf(w, "  %-10s  %-44s  %-8s  %s\n",
				FormatPrice(it.Price, it.Currency),
				truncate(it.ItemName, 44),
				distance(snap.Center, it.Location),
				truncate(it.LastUpdated, 20))
			if it.ProductURL != "" {
				fmt.Fprintf(w, "  %-10s  %s\n", "", it.ProductURL)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d item(s) at %d location(s)\n", snap.ItemCount(), len(snap.Groups))
	formatCitations(snap.Citations, w)
}

func formatCitations(cites []types.Citation, w io.Writer) {
	if len(cites) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, c := range cites {
		if c.Title != "" && c.Title != c.URI {
			fmt.Fprintf(w, "  [%d] %s\n      %s\n", i+1, truncate(c.Title, 74), c.URI)
		} else {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, c.URI)
		}
	}
}

// FormatJSON writes the snapshot as indented JSON to w.
func FormatJSON(snap pipeline.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// FormatSaved lists saved items, one per line.
func FormatSaved(items []types.DisplayItem, w io.Writer) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No saved items.")
		return
	}
	fmt.Fprintf(w, "%-10s  %-36s  %-24s  %s\n", "Price", "Item", "Location", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, it := range items {
		fmt.Fprintf(w, "%-10s  %-36s  %-24s  %s\n",
			FormatPrice(it.Price, it.Currency),
			truncate(it.ItemName, 36),
			truncate(it.LocationName, 24),
			it.ID)
	}
}

// FormatPrice renders a price with its currency, using a $ sign for USD.
func FormatPrice(price float64, currency string) string {
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.2f", price)
	}
	return fmt.Sprintf("%.2f %s", price, currency)
}

func distance(center, loc *types.Coordinates) string {
	if center == nil || loc == nil {
		return ""
	}
	return fmt.Sprintf("%.1f mi", geo.DistanceMiles(*center, *loc))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
