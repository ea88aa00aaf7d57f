package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/adapters"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/cache"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/engine"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/normalize"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

type fakeAdapter struct {
	source  schema.Source
	result  adapters.Result
	err     error
	delay   time.Duration
	queries []string
}

func (f *fakeAdapter) Source() schema.Source { return f.source }

func (f *fakeAdapter) Query(ctx context.Context, cq schema.CanonicalQuery) (adapters.Result, error) {
	f.queries = append(f.queries, cq.Canonical)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return adapters.Result{}, &schema.AdapterError{Source: f.source, Kind: schema.AdapterTimeout, Message: "timed out"}
		}
	}
	return f.result, f.err
}

func (f *fakeAdapter) ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error) {
	if raw == "" {
		return nil, nil
	}
	return []schema.Fact{{
		FactID: "fact:" + raw, Tool: f.source, FactType: schema.FactSense,
		Subject: raw, Predicate: schema.HasGloss,
		Payload:      map[string]any{"gloss": raw},
		ProvenanceID: provenance.ProvenanceID,
	}}, nil
}

func TestEngine_QueryUnsupportedLanguage(t *testing.T) {
	e := engine.New()
	_, err := e.Query(context.Background(), schema.Language("xyz"), "term", false)
	require.Error(t, err)
	var qerr *schema.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, schema.QueryUnsupportedLanguage, qerr.Kind)
}

func TestEngine_QueryEmptyInputFails(t *testing.T) {
	latin := &fakeAdapter{source: schema.SourceDiogenesLatin}
	e := engine.New(engine.WithRouting(schema.Latin, latin))
	_, err := e.Query(context.Background(), schema.Latin, "   ", false)
	require.Error(t, err)
	var normErr *schema.NormalizationError
	require.ErrorAs(t, err, &normErr)
}

func TestEngine_QueryLatinFanOut(t *testing.T) {
	latin := &fakeAdapter{
		source: schema.SourceDiogenesLatin,
		result: adapters.Result{Entries: []schema.DictionaryEntry{{Headword: "lupus", Source: schema.SourceDiogenesLatin}}, Raw: "lupus raw"},
	}
	e := engine.New(engine.WithRouting(schema.Latin, latin))

	res, err := e.Query(context.Background(), schema.Latin, "lupus", false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "lupus", res.Entries[0].Headword)
	assert.False(t, res.FromCache)
	assert.Empty(t, res.Errors)
}

func TestEngine_QueryGreekPassthrough(t *testing.T) {
	greek := &fakeAdapter{
		source: schema.SourceDiogenesGreek,
		result: adapters.Result{Entries: []schema.DictionaryEntry{{Headword: "λόγος", Source: schema.SourceDiogenesGreek}}},
	}
	e := engine.New(engine.WithRouting(schema.Greek, greek))

	res, err := e.Query(context.Background(), schema.Greek, "λόγος", false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "λόγος", res.Normalization.Canonical)
}

func TestEngine_QueryOneAdapterFailsOthersSucceed(t *testing.T) {
	ok := &fakeAdapter{
		source: schema.SourceWhitakers,
		result: adapters.Result{Entries: []schema.DictionaryEntry{{Headword: "lupus", Source: schema.SourceWhitakers}}},
	}
	failing := &fakeAdapter{source: schema.SourceDiogenesLatin, err: &schema.AdapterError{Source: schema.SourceDiogenesLatin, Kind: schema.AdapterTransport, Message: "unreachable"}}

	e := engine.New(engine.WithRouting(schema.Latin, failing, ok))
	res, err := e.Query(context.Background(), schema.Latin, "lupus", false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	require.Contains(t, res.Errors, schema.SourceDiogenesLatin)
	assert.Equal(t, string(schema.AdapterTransport), res.Errors[schema.SourceDiogenesLatin].Kind)
}

func TestEngine_QueryAllAdaptersFailYieldsEmptyEntriesWithErrors(t *testing.T) {
	failing := &fakeAdapter{source: schema.SourceDiogenesLatin, err: errors.New("boom")}
	e := engine.New(engine.WithRouting(schema.Latin, failing))

	res, err := e.Query(context.Background(), schema.Latin, "lupus", false)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Len(t, res.Errors, 1)
}

func TestEngine_QueryCacheHit(t *testing.T) {
	c, err := cache.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Put(context.Background(), cache.Key{Language: schema.Latin, Canonical: "lupus"},
		[]schema.DictionaryEntry{{Headword: "lupus", Source: schema.SourceDiogenesLatin}}))

	// An adapter that would fail if ever called, proving the cache path
	// short-circuits fan-out entirely.
	neverCalled := &fakeAdapter{source: schema.SourceDiogenesLatin, err: errors.New("must not be called")}
	e := engine.New(engine.WithCache(c), engine.WithRouting(schema.Latin, neverCalled))

	res, err := e.Query(context.Background(), schema.Latin, "lupus", false)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	require.Len(t, res.Entries, 1)
	assert.Empty(t, neverCalled.queries)
}

func TestEngine_QueryRefreshBypassesCache(t *testing.T) {
	c, err := cache.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Put(context.Background(), cache.Key{Language: schema.Latin, Canonical: "lupus"},
		[]schema.DictionaryEntry{{Headword: "stale", Source: schema.SourceDiogenesLatin}}))

	fresh := &fakeAdapter{
		source: schema.SourceDiogenesLatin,
		result: adapters.Result{Entries: []schema.DictionaryEntry{{Headword: "fresh", Source: schema.SourceDiogenesLatin}}},
	}
	e := engine.New(engine.WithCache(c), engine.WithRouting(schema.Latin, fresh))

	res, err := e.Query(context.Background(), schema.Latin, "lupus", true)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "fresh", res.Entries[0].Headword)
	assert.False(t, res.FromCache)
}

func TestEngine_SanskritFastPathSkipsProbe(t *testing.T) {
	sanskrit := &fakeAdapter{
		source: schema.SourceHeritage,
		result: adapters.Result{Entries: []schema.DictionaryEntry{{Headword: "agni", Source: schema.SourceHeritage}}},
	}
	e := engine.New(engine.WithRouting(schema.Sanskrit, sanskrit))

	res, err := e.Query(context.Background(), schema.Sanskrit, "agni", false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Contains(t, sanskrit.queries, "agni")
}

func TestEngine_CacheStatsAndClearNoopWhenDisabled(t *testing.T) {
	e := engine.New()
	stats, err := e.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEntries)

	n, err := e.CacheClear(context.Background(), schema.Latin)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEngine_Health(t *testing.T) {
	latin := &fakeAdapter{source: schema.SourceDiogenesLatin}
	e := engine.New(engine.WithRouting(schema.Latin, latin))

	statuses := e.Health(context.Background())
	names := make(map[string]string)
	for _, s := range statuses {
		names[s.Name] = s.Status
	}
	assert.Equal(t, engine.StatusUnavailable, names["cache"])
	assert.Equal(t, engine.StatusUnavailable, names["fact_index"])
	assert.Equal(t, engine.StatusHealthy, names[string(schema.SourceDiogenesLatin)])
}

func TestEngine_WithNormalizeConfigCustomProber(t *testing.T) {
	sanskrit := &fakeAdapter{source: schema.SourceHeritage}
	cfg := normalize.DefaultConfig()
	cfg.CanonicalProbeEnabled = true
	cfg.SanskritProber = normalize.NewHTTPProber("http://127.0.0.1:1", "MW", 1, time.Second)

	e := engine.New(engine.WithRouting(schema.Sanskrit, sanskrit), engine.WithNormalizeConfig(cfg))
	res, err := e.Query(context.Background(), schema.Sanskrit, "agni", false)
	require.NoError(t, err)
	assert.Equal(t, "agni", res.Normalization.Canonical)
}
