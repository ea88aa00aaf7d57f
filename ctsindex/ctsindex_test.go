package ctsindex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/ctsindex"
)

const authorsCSV = `author_id,name,cts_namespace
tlg0012,Homer,urn:cts:greekLit
`

const worksCSV = `author_id,title,reference_abbrevs,cts_urn
tlg0012,Iliad,Il.;Il;Iliad,urn:cts:greekLit:tlg0012.tlg001
`

func buildTestIndex(t *testing.T) *ctsindex.Index {
	t.Helper()
	dir := t.TempDir()
	authorsPath := filepath.Join(dir, "authors.csv")
	worksPath := filepath.Join(dir, "works.csv")
	outPath := filepath.Join(dir, "cts_index.duckdb")

	require.NoError(t, os.WriteFile(authorsPath, []byte(authorsCSV), 0o644))
	require.NoError(t, os.WriteFile(worksPath, []byte(worksCSV), 0o644))
	require.NoError(t, ctsindex.Build(authorsPath, worksPath, outPath))

	idx, err := ctsindex.Open(outPath)
	require.NoError(t, err)
	require.NotNil(t, idx)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestCTSIndex_OpenAbsentFileIsNilSafe(t *testing.T) {
	idx, err := ctsindex.Open(filepath.Join(t.TempDir(), "missing.duckdb"))
	require.NoError(t, err)
	assert.Nil(t, idx)

	_, ok := idx.Resolve(context.Background(), "Il.")
	assert.False(t, ok)
	assert.NoError(t, idx.Close())
}

func TestCTSIndex_ResolveCaseAndPunctuationInsensitive(t *testing.T) {
	idx := buildTestIndex(t)

	urn, ok := idx.Resolve(context.Background(), "IL.")
	require.True(t, ok)
	assert.Equal(t, "urn:cts:greekLit:tlg0012.tlg001", urn)

	urn2, ok := idx.Resolve(context.Background(), "il")
	require.True(t, ok)
	assert.Equal(t, urn, urn2)
}

func TestCTSIndex_ResolveMiss(t *testing.T) {
	idx := buildTestIndex(t)
	_, ok := idx.Resolve(context.Background(), "Aen.")
	assert.False(t, ok)
}

func TestCTSIndex_ResolveWithLocus(t *testing.T) {
	idx := buildTestIndex(t)
	passage, ok := idx.ResolveWithLocus(context.Background(), "Il.", "1", "1", "")
	require.True(t, ok)
	assert.Equal(t, "urn:cts:greekLit:tlg0012.tlg001:1.1", passage.String())
}
