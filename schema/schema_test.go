package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func TestNewCanonicalQuery_RejectsEmpty(t *testing.T) {
	_, err := schema.NewCanonicalQuery("", schema.Latin, "", schema.AsciiRoman, 0.5, nil)
	require.Error(t, err)
}

func TestNewCanonicalQuery_DedupesAlternatesAndExcludesCanonical(t *testing.T) {
	cq, err := schema.NewCanonicalQuery("Agni", schema.Sanskrit, "agni", schema.AsciiRoman, 0.8, nil,
		"agni", "aGni", "aGni", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"aGni"}, cq.Alternates)
}

func TestParsedEntry_ValidateRequiresSensesOrCitations(t *testing.T) {
	p := schema.ParsedEntry{Headword: "lupus"}
	require.Error(t, p.Validate())

	p.Senses = []schema.ParsedSense{{Gloss: "wolf"}}
	require.NoError(t, p.Validate())
}

func TestDictionaryEntry_ValidateRequiresSourceRefOrInherited(t *testing.T) {
	e := schema.DictionaryEntry{
		Headword:    "lupus",
		Source:      schema.SourceDiogenesLatin,
		Definitions: []schema.DictionaryDefinition{{Definition: "wolf"}},
	}
	require.Error(t, e.Validate())

	e.Definitions[0].SourceRef = "ls:lupus"
	require.NoError(t, e.Validate())

	e2 := schema.DictionaryEntry{
		Headword:  "lupus",
		Source:    schema.SourceDiogenesLatin,
		Citations: []schema.DictionaryCitation{{Text: "Verg. E. 2, 63"}},
	}
	require.NoError(t, e2.Validate())
}

func TestNewProvenanceID_StableForSameInputs(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := schema.NewProvenanceID(schema.SourceCDSL, "req1", "raw1", ts)
	b := schema.NewProvenanceID(schema.SourceCDSL, "req1", "raw1", ts)
	c := schema.NewProvenanceID(schema.SourceCDSL, "req2", "raw1", ts)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNormalizeHeadword(t *testing.T) {
	assert.Equal(t, "lupus", schema.NormalizeHeadword("  Lupus  "))
}
