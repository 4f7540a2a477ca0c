// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-scout/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func item(id, name string, price float64) types.DisplayItem {
	return types.DisplayItem{
		ID: id,
		EnrichedRecord: types.EnrichedRecord{
			PriceRecord: types.PriceRecord{
				ItemName:        name,
				LocationName:    "Acme Market",
				LocationAddress: "1 Main St",
				Price:           price,
				Currency:        "USD",
				Location:        &types.Coordinates{Lat: 40.7, Lng: -74},
			},
			GeneratedImage: "data:image/jpeg;base64,QUJD",
		},
	}
}

func TestNewStoreCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewStore(types.StoreConfig{DataDir: dir})
	require.NoError(t, err)
	defer s.Close()
	assert.FileExists(t, filepath.Join(dir, dbFile))
}

func TestSaveListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	bananas := item("a-1", "Organic Bananas", 3.49)
	require.NoError(t, s.Save(ctx, bananas))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bananas, got[0].DisplayItem)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC), got[0].SavedAt)
}

func TestListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, s.Save(ctx, item(id, id, 1)))
	}

	got, err := s.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"third", "second", "first"}, ids)
}

func TestSaveIsIdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, item("a-1", "Bananas", 3.49)))
	require.NoError(t, s.Save(ctx, item("b-1", "Milk", 2)))
	require.NoError(t, s.Save(ctx, item("a-1", "Bananas (2lb)", 3.29)))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b-1", got[0].ID, "upsert keeps the original save time")
	assert.Equal(t, "Bananas (2lb)", got[1].ItemName)
	assert.Equal(t, 3.29, got[1].Price)
}

func TestRemoveAndHas(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, item("a-1", "Bananas", 1)))

	has, err := s.Has(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := s.Remove(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, "a-1")
	require.NoError(t, err)
	assert.False(t, removed)

	has, err = s.Has(ctx, "a-1")
	require.NoError(t, err)
	assert.False(t, has)

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Save(context.Background(), item("", "Bananas", 1)))
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(types.StoreConfig{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, item("a-1", "Bananas", 1)))
	require.NoError(t, s.Close())

	s, err = NewStore(types.StoreConfig{DataDir: dir})
	require.NoError(t, err)
	defer s.Close()
	has, err := s.Has(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, has)
}
