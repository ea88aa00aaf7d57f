package factindex_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/factindex"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func openTestIndex(t *testing.T) *factindex.Index {
	t.Helper()
	idx, err := factindex.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func sampleProvenance() schema.ProvenanceRecord {
	return schema.ProvenanceRecord{
		ProvenanceID: "prov:1",
		Source:       schema.SourceWhitakers,
		SourceRef:    "lupus",
		RawRef:       "raw:1",
		ExtractedAt:  time.Unix(0, 0).UTC(),
		ToolVersion:  "test",
	}
}

func TestFactIndex_WriteAndLookup(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	prov := sampleProvenance()
	fact := schema.Fact{
		FactID:       "fact:1",
		Tool:         schema.SourceWhitakers,
		FactType:     schema.FactSense,
		Subject:      "lupus",
		Predicate:    schema.HasGloss,
		Payload:      map[string]any{"gloss": "wolf"},
		ProvenanceID: prov.ProvenanceID,
	}

	require.NoError(t, idx.WriteFacts(ctx, []schema.Fact{fact}, []schema.ProvenanceRecord{prov}))

	got, err := idx.Lookup(ctx, "lupus", []schema.Predicate{schema.HasGloss})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fact:1", got[0].Fact.FactID)
	assert.Equal(t, "wolf", got[0].Fact.Payload["gloss"])
	assert.Equal(t, schema.SourceWhitakers, got[0].Provenance.Source)
}

func TestFactIndex_LookupFiltersByPredicate(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	prov := sampleProvenance()
	glossFact := schema.Fact{
		FactID: "fact:gloss", Tool: schema.SourceWhitakers, FactType: schema.FactSense,
		Subject: "lupus", Predicate: schema.HasGloss, Payload: map[string]any{"gloss": "wolf"},
		ProvenanceID: prov.ProvenanceID,
	}
	morphFact := schema.Fact{
		FactID: "fact:morph", Tool: schema.SourceWhitakers, FactType: schema.FactMorph,
		Subject: "lupus", Predicate: schema.HasMorphology, Payload: map[string]any{"pos": "noun"},
		ProvenanceID: prov.ProvenanceID,
	}

	require.NoError(t, idx.WriteFacts(ctx, []schema.Fact{glossFact, morphFact}, []schema.ProvenanceRecord{prov}))

	got, err := idx.Lookup(ctx, "lupus", []schema.Predicate{schema.HasGloss})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, schema.HasGloss, got[0].Fact.Predicate)
}

func TestFactIndex_WriteFactsUpserts(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	prov := sampleProvenance()
	fact := schema.Fact{
		FactID: "fact:1", Tool: schema.SourceWhitakers, FactType: schema.FactSense,
		Subject: "lupus", Predicate: schema.HasGloss, Payload: map[string]any{"gloss": "wolf"},
		ProvenanceID: prov.ProvenanceID,
	}
	require.NoError(t, idx.WriteFacts(ctx, []schema.Fact{fact}, []schema.ProvenanceRecord{prov}))

	fact.Payload = map[string]any{"gloss": "wolf (updated)"}
	require.NoError(t, idx.WriteFacts(ctx, []schema.Fact{fact}, []schema.ProvenanceRecord{prov}))

	got, err := idx.Lookup(ctx, "lupus", []schema.Predicate{schema.HasGloss})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "wolf (updated)", got[0].Fact.Payload["gloss"])
}

func TestFactIndex_LookupEmptyPredicatesReturnsNil(t *testing.T) {
	idx := openTestIndex(t)
	got, err := idx.Lookup(context.Background(), "lupus", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSyntheticFactID_Stable(t *testing.T) {
	a := factindex.SyntheticFactID(schema.SourceWhitakers, "lupus", schema.HasMorphology)
	b := factindex.SyntheticFactID(schema.SourceWhitakers, "lupus", schema.HasMorphology)
	assert.Equal(t, a, b)

	c := factindex.SyntheticFactID(schema.SourceWhitakers, "rosa", schema.HasMorphology)
	assert.NotEqual(t, a, c)
}
