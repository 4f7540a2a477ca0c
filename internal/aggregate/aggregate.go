// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate reduces the priced records of one search into display
// groups and a deduplicated citation list. Everything here is pure.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pdiddy/price-scout/pkg/types"
)

// ItemID builds the identity of the index-th record of a run. The token is
// the run's freshness token, so repeated identical records never collide.
func ItemID(rec types.EnrichedRecord, index int, token string) string {
	return strings.Join([]string{
		rec.LocationName,
		rec.ItemName,
		strconv.FormatFloat(rec.Price, 'f', -1, 64),
		strconv.Itoa(index),
		token,
	}, "-")
}

// Aggregate assigns IDs, groups records by location name and orders the
// result: groups by name, items by ascending price. Both sorts are stable.
// Each group's address is the longest non-empty address among its items.
func Aggregate(records []types.EnrichedRecord, token string) []types.LocationGroup {
	if len(records) == 0 {
		return nil
	}

	index := make(map[string]int)
	var groups []types.LocationGroup
	for i, rec := range records {
		item := types.DisplayItem{EnrichedRecord: rec, ID: ItemID(rec, i, token)}

		gi, ok := index[rec.LocationName]
		if !ok {
			gi = len(groups)
			index[rec.LocationName] = gi
			groups = append(groups, types.LocationGroup{LocationName: rec.LocationName})
		}
		g := &groups[gi]
		g.Items = append(g.Items, item)
		if len(rec.LocationAddress) > len(g.RepresentativeAddress) {
			g.RepresentativeAddress = rec.LocationAddress
		}
	}

	cl := collate.New(language.English)
	sort.SliceStable(groups, func(i, j int) bool {
		return compareNames(cl, groups[i].LocationName, groups[j].LocationName) < 0
	})
	for _, g := range groups {
		items := g.Items
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Price < items[j].Price
		})
	}
	return groups
}

// compareNames orders by locale collation, falling back to byte order when
// the collator considers two distinct names equal.
func compareNames(cl *collate.Collator, a, b string) int {
	if c := cl.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Dedupe drops citations without a URI and repeats of a URI already seen,
// keeping first-seen order.
func Dedupe(citations []types.Citation) []types.Citation {
	seen := make(map[string]bool, len(citations))
	out := make([]types.Citation, 0, len(citations))
	for _, c := range citations {
		if c.URI == "" || seen[c.URI] {
			continue
		}
		seen[c.URI] = true
		out = append(out, c)
	}
	return out
}
