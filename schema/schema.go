// Package schema holds the data model shared by every component of
// go-philolex: the canonicalized query, the per-backend parsed entry,
// the universal dictionary entry, and the fact/provenance pair the
// fact index persists.
package schema

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// Encoding is the closed tag set of textual encodings the kernel and
// detector understand.
type Encoding string

const (
	Devanagari Encoding = "devanagari"
	IAST       Encoding = "iast"
	SLP1       Encoding = "slp1"
	Velthuis   Encoding = "velthuis"
	HK         Encoding = "hk"
	AsciiRoman Encoding = "ascii_roman"
	Unicode    Encoding = "unicode"
	Betacode   Encoding = "betacode"
)

// Language is the closed set of languages the engine routes over.
type Language string

const (
	Latin     Language = "lat"
	Greek     Language = "grc"
	Sanskrit  Language = "san"
	Unrouted  Language = ""
)

// Source tags the backend an entry, definition, or fact came from.
type Source string

const (
	SourceCDSL          Source = "cdsl"
	SourceDiogenesLatin  Source = "diogenes-latin"
	SourceDiogenesGreek  Source = "diogenes-greek"
	SourceLewisShort     Source = "lewis-short"
	SourceHeritage       Source = "heritage"
	SourceWhitakers      Source = "whitakers"
	SourceCLTKLatin      Source = "cltk-latin"
	SourceCLTKGreek      Source = "cltk-greek"
)

// Predicate is the closed universal-predicate set a Fact may carry.
type Predicate string

const (
	HasGloss       Predicate = "has_gloss"
	HasMorphology  Predicate = "has_morphology"
	HasCitation    Predicate = "has_citation"
	HasEtymology   Predicate = "has_etymology"
	HasPOS         Predicate = "has_pos"
	HasGender      Predicate = "has_gender"
)

// CanonicalQuery is the normalized, language-tagged form of a user
// input. See spec §3.
type CanonicalQuery struct {
	Original         string
	Language         Language
	Canonical        string
	Alternates       []string
	DetectedEncoding Encoding
	Confidence       float64
	Notes            []string
}

// NewCanonicalQuery validates and constructs a CanonicalQuery,
// enforcing the invariants from spec §3: canonical is non-empty, SLP1
// well-formedness for Sanskrit is the caller's responsibility (the
// normalize package is what produces SLP1), and alternates contain no
// duplicates and exclude canonical.
func NewCanonicalQuery(original string, lang Language, canonical string, detected Encoding, confidence float64, notes []string, alternates ...string) (CanonicalQuery, error) {
	if canonical == "" {
		return CanonicalQuery{}, fmt.Errorf("schema: canonical query must be non-empty")
	}
	seen := map[string]bool{canonical: true}
	deduped := make([]string, 0, len(alternates))
	for _, a := range alternates {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		deduped = append(deduped, a)
	}
	return CanonicalQuery{
		Original:         original,
		Language:         lang,
		Canonical:        canonical,
		Alternates:       deduped,
		DetectedEncoding: detected,
		Confidence:       confidence,
		Notes:            append([]string(nil), notes...),
	}, nil
}

// ParsedExample is one citation-bearing usage example inside a sense.
type ParsedExample struct {
	Text   string
	Author string
	Gloss  string
}

// ParsedSense is one gloss-bearing sense within a ParsedEntry.
type ParsedSense struct {
	SenseID  string
	Gloss    string
	Domains  []string
	Register []string
	Examples []ParsedExample
}

// ParsedCitation is a scholarly reference extracted from a block.
type ParsedCitation struct {
	Text      string
	SourceRef string
	CTSURN    string
}

// ParsedEntry is the output of an entry parser (C4). See spec §3.
type ParsedEntry struct {
	Headword       string
	Source         Source
	Language       Language
	POS            string
	Gender         string
	Root           string
	Etymology      string
	PrincipalParts []string
	Senses         []ParsedSense
	Citations      []ParsedCitation
	RawText        string

	// Morphology is populated only by grammars that parse a
	// morphology table directly (Heritage); most grammars leave it nil
	// and let the adapter derive MorphologyInfo some other way.
	Morphology *MorphologyInfo
}

// Validate enforces the ParsedEntry invariant: at least one of Senses
// or Citations must be non-empty.
func (p ParsedEntry) Validate() error {
	if len(p.Senses) == 0 && len(p.Citations) == 0 {
		return fmt.Errorf("schema: parsed entry %q has neither senses nor citations", p.Headword)
	}
	return nil
}

// MorphologyInfo is the normalized morphological analysis of a
// headword, when a backend provides one.
type MorphologyInfo struct {
	Lemma      string
	POS        string
	Features   map[string]string
	Confidence float64
}

// DictionaryDefinition is one universal-schema sense.
type DictionaryDefinition struct {
	Definition      string
	POS             string
	Gender          string
	SourceRef       string
	Domains         []string
	Register        []string
	Confidence      float64
	InheritedFrom   string // set when SourceRef is absent, per spec §4.6
}

// DictionaryCitation is one universal-schema citation.
type DictionaryCitation struct {
	Text      string
	SourceRef string
	CTSURN    string
}

// DictionaryEntry is the universal-schema unit the engine returns. See
// spec §3.
type DictionaryEntry struct {
	Source      Source
	Headword    string
	Language    Language
	Definitions []DictionaryDefinition
	Citations   []DictionaryCitation
	Morphology  *MorphologyInfo
	Metadata    map[string]any
}

// Validate enforces the two DictionaryEntry invariants from spec §3:
// definitions+citations together non-empty, and every definition
// carries either a SourceRef or an InheritedFrom note.
func (e DictionaryEntry) Validate() error {
	if len(e.Definitions) == 0 && len(e.Citations) == 0 {
		return fmt.Errorf("schema: dictionary entry %q/%s has neither definitions nor citations", e.Headword, e.Source)
	}
	for i, d := range e.Definitions {
		if d.SourceRef == "" && d.InheritedFrom == "" {
			return fmt.Errorf("schema: dictionary entry %q/%s definition[%d] has no source_ref and no _inherited_from", e.Headword, e.Source, i)
		}
	}
	return nil
}

// ProvenanceRecord is attached to facts so they can be traced back to
// the raw response, request, and extraction time that produced them.
type ProvenanceRecord struct {
	ProvenanceID string
	Source       Source
	SourceRef    string
	RequestURL   string
	RawRef       string
	ExtractedAt  time.Time
	ToolVersion  string
	Metadata     map[string]any
}

// NewProvenanceID computes the stable hash described in spec §3: a
// hash of source + request + timestamp. FNV-1a is used rather than a
// cryptographic hash since the only requirement is stability and low
// collision probability within one fact index, not tamper-resistance.
func NewProvenanceID(source Source, requestURL, rawRef string, extractedAt time.Time) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d", source, requestURL, rawRef, extractedAt.UnixNano())
	return fmt.Sprintf("prov:%016x", h.Sum64())
}

// FactType enumerates the kinds of claims the fact layer projects.
type FactType string

const (
	FactSense     FactType = "sense"
	FactMorph     FactType = "morph"
	FactCitation  FactType = "citation"
	FactEtymology FactType = "etymology"
)

// Fact is one claim projected from a parsed entry, carrying a
// tool-specific payload and a link to its provenance row.
type Fact struct {
	FactID       string
	Tool         Source
	FactType     FactType
	Subject      string
	Predicate    Predicate
	Payload      map[string]any
	ProvenanceID string
}

// NewFactID derives a stable identifier from the fact's content so
// re-extraction (§4.9) of the same raw response is idempotent rather
// than accumulating duplicate rows.
func NewFactID(tool Source, subject string, predicate Predicate, payloadKey string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s", tool, subject, predicate, payloadKey)
	return fmt.Sprintf("fact:%016x", h.Sum64())
}

// NormalizeHeadword lowercases and trims a headword for join/dedup
// comparisons within a single source (spec §4.6's "consolidation").
func NormalizeHeadword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
