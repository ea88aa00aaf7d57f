// Package adapters implements the Backend Adapters (C6): one adapter
// per upstream lexical source, each translating a schema.CanonicalQuery
// into the upstream's expected encoding, invoking the relevant C4
// parser, and projecting the result into the universal schema
// (schema.DictionaryEntry). Every adapter also implements
// ExtractFacts, re-running the same parse step over a stored raw blob
// so re-extraction never needs a second fetch (spec §4.9).
package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// Result is what Query returns: the universal-schema entries plus the
// raw upstream payload the parse ran over, so the engine can store it
// (spec §6's store_raw_responses) and so ExtractFacts has something to
// re-run against later.
type Result struct {
	Entries []schema.DictionaryEntry
	Raw     string
}

// Adapter is the shared contract every backend implements (spec §4.6).
type Adapter interface {
	// Source identifies which backend this adapter talks to.
	Source() schema.Source

	// Query fetches and parses entries for the given canonical query.
	// An upstream that is reachable but has nothing for this query
	// returns an empty Result, not an error (spec §4.6).
	Query(ctx context.Context, cq schema.CanonicalQuery) (Result, error)

	// ExtractFacts re-runs the parsing step over a previously stored
	// raw response, producing the same facts the live query path would
	// have produced, without re-fetching (spec §4.9).
	ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error)
}

// toolVersion is stamped onto every ProvenanceRecord this package
// produces.
const toolVersion = "go-philolex/1"

// entriesFromParsed projects a set of schema.ParsedEntry into
// schema.DictionaryEntry, per spec §4.6's field-by-field mapping.
// When consolidate is true (CDSL only, per spec §4.6's "Sanskrit
// consolidation rule"), entries sharing the same headword are merged
// into one DictionaryEntry whose definitions are concatenated in
// stable order; otherwise each ParsedEntry becomes its own
// DictionaryEntry.
func entriesFromParsed(parsed []schema.ParsedEntry, source schema.Source, consolidate bool) []schema.DictionaryEntry {
	if !consolidate {
		out := make([]schema.DictionaryEntry, 0, len(parsed))
		for _, p := range parsed {
			out = append(out, dictionaryEntryFromParsed(p, source))
		}
		return out
	}

	order := make([]string, 0, len(parsed))
	byHeadword := make(map[string]*schema.DictionaryEntry)
	for _, p := range parsed {
		key := schema.NormalizeHeadword(p.Headword)
		entry, ok := byHeadword[key]
		if !ok {
			de := dictionaryEntryFromParsed(p, source)
			byHeadword[key] = &de
			order = append(order, key)
			continue
		}
		merged := dictionaryEntryFromParsed(p, source)
		entry.Definitions = append(entry.Definitions, merged.Definitions...)
		entry.Citations = append(entry.Citations, merged.Citations...)
	}
	out := make([]schema.DictionaryEntry, 0, len(order))
	for _, key := range order {
		out = append(out, *byHeadword[key])
	}
	return out
}

func dictionaryEntryFromParsed(p schema.ParsedEntry, source schema.Source) schema.DictionaryEntry {
	de := schema.DictionaryEntry{
		Source:     source,
		Headword:   p.Headword,
		Language:   p.Language,
		Morphology: p.Morphology,
		Metadata:   map[string]any{},
	}
	if p.Etymology != "" {
		de.Metadata["etymology"] = p.Etymology
	}
	if p.Root != "" {
		de.Metadata["root"] = p.Root
	}
	if len(p.PrincipalParts) > 0 {
		de.Metadata["principal_parts"] = p.PrincipalParts
	}

	for _, s := range p.Senses {
		def := schema.DictionaryDefinition{
			Definition: s.Gloss,
			POS:        p.POS,
			Gender:     p.Gender,
			Domains:    s.Domains,
			Register:   s.Register,
		}
		if s.SenseID != "" {
			def.SourceRef = string(source) + ":" + p.Headword + "#" + s.SenseID
		} else {
			def.InheritedFrom = string(source)
		}
		de.Definitions = append(de.Definitions, def)
	}

	for _, c := range p.Citations {
		de.Citations = append(de.Citations, schema.DictionaryCitation{
			Text:      c.Text,
			SourceRef: c.SourceRef,
			CTSURN:    c.CTSURN,
		})
	}

	return de
}

// factsFromParsed projects a schema.ParsedEntry into the universal
// facts spec §4.9 defines, attaching provenanceID to each.
func factsFromParsed(p schema.ParsedEntry, tool schema.Source, provenanceID string) []schema.Fact {
	var facts []schema.Fact

	for _, s := range p.Senses {
		facts = append(facts, schema.Fact{
			FactID:       schema.NewFactID(tool, p.Headword, schema.HasGloss, p.Headword+"|"+s.Gloss),
			Tool:         tool,
			FactType:     schema.FactSense,
			Subject:      p.Headword,
			Predicate:    schema.HasGloss,
			Payload:      map[string]any{"gloss": s.Gloss, "domains": s.Domains, "register": s.Register, "sense_id": s.SenseID},
			ProvenanceID: provenanceID,
		})
	}

	for _, c := range p.Citations {
		facts = append(facts, schema.Fact{
			FactID:       schema.NewFactID(tool, p.Headword, schema.HasCitation, c.SourceRef),
			Tool:         tool,
			FactType:     schema.FactCitation,
			Subject:      p.Headword,
			Predicate:    schema.HasCitation,
			Payload:      map[string]any{"text": c.Text, "source_ref": c.SourceRef, "cts_urn": c.CTSURN},
			ProvenanceID: provenanceID,
		})
	}

	if p.Morphology != nil {
		facts = append(facts, schema.Fact{
			FactID:       schema.NewFactID(tool, p.Headword, schema.HasMorphology, p.Headword),
			Tool:         tool,
			FactType:     schema.FactMorph,
			Subject:      p.Headword,
			Predicate:    schema.HasMorphology,
			Payload:      map[string]any{"lemma": p.Morphology.Lemma, "pos": p.Morphology.POS, "features": p.Morphology.Features},
			ProvenanceID: provenanceID,
		})
	}

	if p.Etymology != "" {
		facts = append(facts, schema.Fact{
			FactID:       schema.NewFactID(tool, p.Headword, schema.HasEtymology, p.Etymology),
			Tool:         tool,
			FactType:     schema.FactEtymology,
			Subject:      p.Headword,
			Predicate:    schema.HasEtymology,
			Payload:      map[string]any{"etymology": p.Etymology},
			ProvenanceID: provenanceID,
		})
	}

	if p.POS != "" {
		facts = append(facts, schema.Fact{
			FactID:       schema.NewFactID(tool, p.Headword, schema.HasPOS, p.POS),
			Tool:         tool,
			FactType:     schema.FactMorph,
			Subject:      p.Headword,
			Predicate:    schema.HasPOS,
			Payload:      map[string]any{"pos": p.POS},
			ProvenanceID: provenanceID,
		})
	}

	if p.Gender != "" {
		facts = append(facts, schema.Fact{
			FactID:       schema.NewFactID(tool, p.Headword, schema.HasGender, p.Gender),
			Tool:         tool,
			FactType:     schema.FactMorph,
			Subject:      p.Headword,
			Predicate:    schema.HasGender,
			Payload:      map[string]any{"gender": p.Gender},
			ProvenanceID: provenanceID,
		})
	}

	return facts
}

// newProvenance builds a ProvenanceRecord for one upstream call,
// stamped at extractedAt (passed in rather than taken via time.Now()
// internally only where the caller already has a timestamp to reuse
// for both the provenance row and the provenance_id hash).
func newProvenance(source schema.Source, requestURL, rawRef string, extractedAt time.Time) schema.ProvenanceRecord {
	return schema.ProvenanceRecord{
		ProvenanceID: schema.NewProvenanceID(source, requestURL, rawRef, extractedAt),
		Source:       source,
		RequestURL:   requestURL,
		RawRef:       rawRef,
		ExtractedAt:  extractedAt,
		ToolVersion:  toolVersion,
		Metadata:     map[string]any{},
	}
}
