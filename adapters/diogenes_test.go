package adapters_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/adapters"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func TestDiogenesLatin_QueryParsesLewisShortBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lat", r.URL.Query().Get("lang"))
		assert.Equal(t, "lupus", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("lupus, i, m. a wolf."))
	}))
	defer srv.Close()

	a := adapters.NewDiogenesLatin(srv.URL, 2*time.Second)
	assert.Equal(t, schema.SourceDiogenesLatin, a.Source())

	cq := schema.CanonicalQuery{Canonical: "lupus", Language: schema.Latin}
	res, err := a.Query(context.Background(), cq)
	require.NoError(t, err)
	require.NotEmpty(t, res.Entries)
	assert.Equal(t, schema.SourceDiogenesLatin, res.Entries[0].Source)
}

func TestDiogenesLatin_QueryEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	a := adapters.NewDiogenesLatin(srv.URL, 2*time.Second)
	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "nihil"})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestDiogenesLatin_QueryUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := adapters.NewDiogenesLatin(srv.URL, 2*time.Second)
	_, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "lupus"})
	require.Error(t, err)
	var adapterErr *schema.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, schema.AdapterProtocol, adapterErr.Kind)
}

func TestDiogenesGreek_QueryAssignsQueriedHeadword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "grc", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte("word, a saying."))
	}))
	defer srv.Close()

	a := adapters.NewDiogenesGreek(srv.URL, 2*time.Second)
	assert.Equal(t, schema.SourceDiogenesGreek, a.Source())

	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "logos"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Entries)
	assert.Equal(t, "logos", res.Entries[0].Headword)
}

func TestDiogenesLatin_ExtractFactsFromStoredRaw(t *testing.T) {
	a := adapters.NewDiogenesLatin("http://unused.invalid", time.Second)
	prov := schema.ProvenanceRecord{ProvenanceID: "prov:1"}
	facts, err := a.ExtractFacts(context.Background(), "lupus, i, m. a wolf.", prov)
	require.NoError(t, err)
	assert.NotEmpty(t, facts)
	for _, f := range facts {
		assert.Equal(t, "prov:1", f.ProvenanceID)
	}
}
