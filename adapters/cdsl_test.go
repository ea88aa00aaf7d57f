package adapters_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/adapters"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

type fakeCDSLStore struct {
	rows []adapters.CDSLRow
	err  error
}

func (f fakeCDSLStore) Lookup(ctx context.Context, canonical string) ([]adapters.CDSLRow, error) {
	return f.rows, f.err
}

func TestCDSL_QueryConsolidatesSameHeadwordRows(t *testing.T) {
	store := fakeCDSLStore{rows: []adapters.CDSLRow{
		{Headword: "agni", SourceRef: "mw:1", RawBlock: "fire, the god of fire"},
		{Headword: "agni", SourceRef: "mw:2", RawBlock: "sacrificial fire"},
	}}
	a := adapters.NewCDSL(store)
	assert.Equal(t, schema.SourceCDSL, a.Source())

	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "agni"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "agni", res.Entries[0].Headword)
	assert.NotEmpty(t, res.Raw)
}

func TestCDSL_QueryNoRowsIsEmptyResult(t *testing.T) {
	a := adapters.NewCDSL(fakeCDSLStore{})
	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "xyz"})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestCDSL_QueryStoreErrorWraps(t *testing.T) {
	a := adapters.NewCDSL(fakeCDSLStore{err: errors.New("index corrupt")})
	_, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "agni"})
	require.Error(t, err)
	var adapterErr *schema.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, schema.SourceCDSL, adapterErr.Source)
}

func TestCDSL_ExtractFactsRoundTripsRaw(t *testing.T) {
	store := fakeCDSLStore{rows: []adapters.CDSLRow{
		{Headword: "agni", SourceRef: "mw:1", RawBlock: "fire"},
	}}
	a := adapters.NewCDSL(store)

	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "agni"})
	require.NoError(t, err)

	facts, err := a.ExtractFacts(context.Background(), res.Raw, schema.ProvenanceRecord{ProvenanceID: "prov:1"})
	require.NoError(t, err)
	assert.NotEmpty(t, facts)
	for _, f := range facts {
		assert.Equal(t, "prov:1", f.ProvenanceID)
	}
}
