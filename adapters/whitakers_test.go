package adapters_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/adapters"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func TestWhitakers_BinaryNotFound(t *testing.T) {
	a := adapters.NewWhitakers(adapters.WithWhitakersBinary("definitely-not-a-real-binary-xyz"))
	assert.Equal(t, schema.SourceWhitakers, a.Source())

	_, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "lupus"})
	require.Error(t, err)
	var adapterErr *schema.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, schema.AdapterTransport, adapterErr.Kind)
}

func TestWhitakers_QueryUsesStdinStdoutRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available on this system")
	}
	a := adapters.NewWhitakers(adapters.WithWhitakersBinary("cat"))
	res, err := a.Query(context.Background(), schema.CanonicalQuery{Canonical: "lupus", Language: schema.Latin})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "lupus", res.Entries[0].Headword)
}

func TestWhitakers_ExtractFactsFromStoredRaw(t *testing.T) {
	a := adapters.NewWhitakers()
	raw := "lupus [N]\n  wolf\n  predator\n"
	facts, err := a.ExtractFacts(context.Background(), raw, schema.ProvenanceRecord{ProvenanceID: "prov:1"})
	require.NoError(t, err)
	require.NotEmpty(t, facts)

	var sawGloss, sawMorph bool
	for _, f := range facts {
		assert.Equal(t, "prov:1", f.ProvenanceID)
		assert.Equal(t, "lupus", f.Subject)
		switch f.Predicate {
		case schema.HasGloss:
			sawGloss = true
		case schema.HasMorphology:
			sawMorph = true
		}
	}
	assert.True(t, sawGloss)
	assert.True(t, sawMorph)
}

func TestWhitakers_ExtractFactsEmptyRaw(t *testing.T) {
	a := adapters.NewWhitakers()
	facts, err := a.ExtractFacts(context.Background(), "", schema.ProvenanceRecord{})
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestWhitakers_QueryContextTimeout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available on this system")
	}

	// The adapter invokes its binary with no arguments, so a plain
	// "sleep" binary (which needs a duration argument) can't be reused
	// directly; a tiny script that sleeps on its own stands in for it.
	scriptPath := filepath.Join(t.TempDir(), "slow-words")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	a := adapters.NewWhitakers(adapters.WithWhitakersBinary(scriptPath))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Query(ctx, schema.CanonicalQuery{Canonical: "agni"})
	require.Error(t, err)
	var adapterErr *schema.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, schema.AdapterTimeout, adapterErr.Kind)
}
