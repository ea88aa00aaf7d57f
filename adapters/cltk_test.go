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

type fakeCLTKBackend struct {
	analysis adapters.CLTKAnalysis
	err      error
}

func (f fakeCLTKBackend) Analyze(ctx context.Context, lang schema.Language, token string) (adapters.CLTKAnalysis, error) {
	return f.analysis, f.err
}

func TestCLTK_QueryBuildsEntryFromAnalysis(t *testing.T) {
	backend := fakeCLTKBackend{analysis: adapters.CLTKAnalysis{
		Lemma: "lupus", POS: "noun", Features: map[string]string{"case": "nom"}, Glosses: []string{"wolf"},
	}}
	a := adapters.NewCLTKLatin(backend)
	assert.Equal(t, schema.SourceCLTKLatin, a.Source())

	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "lupus", Language: schema.Latin})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "lupus", res.Entries[0].Headword)
	require.NotEmpty(t, res.Entries[0].Definitions)
	assert.Equal(t, "wolf", res.Entries[0].Definitions[0].Definition)
	assert.NotEmpty(t, res.Raw)
}

func TestCLTK_QueryEmptyAnalysisIsEmptyResult(t *testing.T) {
	a := adapters.NewCLTKGreek(fakeCLTKBackend{})
	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "logos"})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestCLTK_QueryBackendErrorWrapsAdapterError(t *testing.T) {
	a := adapters.NewCLTKLatin(fakeCLTKBackend{err: errors.New("boom")})
	_, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "lupus"})
	require.Error(t, err)
	var adapterErr *schema.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, schema.SourceCLTKLatin, adapterErr.Source)
}

func TestCLTK_ExtractFactsRoundTripsRaw(t *testing.T) {
	backend := fakeCLTKBackend{analysis: adapters.CLTKAnalysis{
		Lemma: "lupus", POS: "noun", Glosses: []string{"wolf", "predator"},
	}}
	a := adapters.NewCLTKLatin(backend)

	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "lupus"})
	require.NoError(t, err)

	facts, err := a.ExtractFacts(context.Background(), res.Raw, schema.ProvenanceRecord{ProvenanceID: "prov:1"})
	require.NoError(t, err)
	require.Len(t, facts, 3) // one morphology + two glosses
	for _, f := range facts {
		assert.Equal(t, "prov:1", f.ProvenanceID)
		assert.Equal(t, "lupus", f.Subject)
	}
}

func TestCLTK_ExtractFactsInvalidRawIsNoOp(t *testing.T) {
	a := adapters.NewCLTKLatin(fakeCLTKBackend{})
	facts, err := a.ExtractFacts(context.Background(), "not json", schema.ProvenanceRecord{})
	require.NoError(t, err)
	assert.Nil(t, facts)
}

func TestUnavailableCLTKBackend_AlwaysFails(t *testing.T) {
	var backend adapters.UnavailableCLTKBackend
	_, err := backend.Analyze(context.Background(), schema.Latin, "lupus")
	require.Error(t, err)
}
