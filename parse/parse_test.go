package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/parse"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func TestParseCDSL_RootAndCitation(t *testing.T) {
	entry := parse.Parse(schema.SourceCDSL, schema.Sanskrit, "agni/ m. fire, (√ i, Uṇ.) the sacrificial fire, bile, L.")
	require.NoError(t, entry.Validate())
	assert.Equal(t, "i", entry.Root)
	require.Len(t, entry.Citations, 1)
	assert.Equal(t, "L.", entry.Citations[0].Text)
	assert.Equal(t, "citation_abbrev:L", entry.Citations[0].SourceRef)
	require.NotEmpty(t, entry.Senses)
	assert.NotContains(t, entry.Senses[0].Gloss, "√")
}

func TestParseCDSL_FallsBackOnMissingSeparator(t *testing.T) {
	entry := parse.Parse(schema.SourceCDSL, schema.Sanskrit, "agni no slash here")
	require.NoError(t, entry.Validate())
	assert.Equal(t, "agni no slash here", entry.Senses[0].Gloss)
	assert.Equal(t, "agni no slash here", entry.RawText)
}

func TestParseDiogenesLatin_TwoSpaceMarker(t *testing.T) {
	entry := parse.Parse(schema.SourceDiogenesLatin, schema.Latin, "I.  to go, depart; Verg. E. 2, 63")
	require.NoError(t, entry.Validate())
	require.Len(t, entry.Senses, 1)
	assert.Equal(t, "I", entry.Senses[0].SenseID)
	assert.Contains(t, entry.Senses[0].Gloss, "to go, depart")
	require.Len(t, entry.Citations, 1)
	assert.Contains(t, entry.Citations[0].Text, "Verg.")
}

func TestParseDiogenesLatin_SingleSpaceIsProse(t *testing.T) {
	entry := parse.Parse(schema.SourceDiogenesLatin, schema.Latin, "I. to go, not a marker here")
	require.NoError(t, entry.Validate())
	assert.Empty(t, entry.Senses[0].SenseID)
}

func TestParseLewisShort_PrincipalPartsAndWrappedGloss(t *testing.T) {
	raw := "sido\n  sedi, sessum, ere\nto sit down—\n  : to sink\nslake\n, Cic."
	entry := parse.Parse(schema.SourceLewisShort, schema.Latin, raw)
	require.NoError(t, entry.Validate())
	assert.Equal(t, "sido", entry.Headword)
	assert.Equal(t, []string{"sedi", "sessum", "ere"}, entry.PrincipalParts)
	require.Len(t, entry.Senses, 2)
	require.Len(t, entry.Senses[1].Examples, 1)
	assert.Equal(t, "slake", entry.Senses[1].Examples[0].Gloss)
	assert.Equal(t, "Cic", entry.Senses[1].Examples[0].Author)
}

func TestParseHeritage_ExpandsMorphCodes(t *testing.T) {
	entry := parse.Parse(schema.SourceHeritage, schema.Sanskrit, "[agnim]{m. sg. acc.}")
	require.NoError(t, entry.Validate())
	require.NotNil(t, entry.Morphology)
	assert.Equal(t, "masculine", entry.Morphology.Features["gender"])
	assert.Equal(t, "singular", entry.Morphology.Features["number"])
	assert.Equal(t, "accusative", entry.Morphology.Features["case"])
}

func TestParseHeritage_AmbiguousAbbreviationFlagged(t *testing.T) {
	entry := parse.Parse(schema.SourceHeritage, schema.Sanskrit, "[tam]{p. acc.}")
	require.NotNil(t, entry.Morphology)
	assert.Equal(t, "true", entry.Morphology.Features["ambiguous~0"])
}

func TestParseHeritage_FallsBackOnMalformedBlock(t *testing.T) {
	entry := parse.Parse(schema.SourceHeritage, schema.Sanskrit, "not a heritage block")
	require.NoError(t, entry.Validate())
	assert.Nil(t, entry.Morphology)
}
