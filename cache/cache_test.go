package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/cache"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func openTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_GetMissesOnEmpty(t *testing.T) {
	c := openTestCache(t)
	_, found, err := c.Get(context.Background(), cache.Key{Language: schema.Latin, Canonical: "lupus"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_PutThenGet(t *testing.T) {
	c := openTestCache(t)
	key := cache.Key{Language: schema.Latin, Canonical: "lupus"}
	entries := []schema.DictionaryEntry{{Headword: "lupus", Language: schema.Latin}}

	require.NoError(t, c.Put(context.Background(), key, entries))

	got, found, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, "lupus", got[0].Headword)
}

func TestCache_PutOverwrites(t *testing.T) {
	c := openTestCache(t)
	key := cache.Key{Language: schema.Latin, Canonical: "lupus"}

	require.NoError(t, c.Put(context.Background(), key, []schema.DictionaryEntry{{Headword: "first"}}))
	require.NoError(t, c.Put(context.Background(), key, []schema.DictionaryEntry{{Headword: "second"}}))

	got, found, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Headword)
}

func TestCache_ClearByLanguage(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, cache.Key{Language: schema.Latin, Canonical: "lupus"}, []schema.DictionaryEntry{{Headword: "lupus"}}))
	require.NoError(t, c.Put(ctx, cache.Key{Language: schema.Greek, Canonical: "logos"}, []schema.DictionaryEntry{{Headword: "logos"}}))

	n, err := c.ClearByLanguage(ctx, schema.Latin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, found, err := c.Get(ctx, cache.Key{Language: schema.Latin, Canonical: "lupus"})
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Get(ctx, cache.Key{Language: schema.Greek, Canonical: "logos"})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCache_Stats(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, cache.Key{Language: schema.Latin, Canonical: "lupus"}, []schema.DictionaryEntry{{Headword: "lupus"}}))
	require.NoError(t, c.Put(ctx, cache.Key{Language: schema.Latin, Canonical: "rosa"}, []schema.DictionaryEntry{{Headword: "rosa"}}))
	require.NoError(t, c.Put(ctx, cache.Key{Language: schema.Greek, Canonical: "logos"}, []schema.DictionaryEntry{{Headword: "logos"}}))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalEntries)
	assert.Len(t, stats.ByLanguage, 2)
}
