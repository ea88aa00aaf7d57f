package engine

import (
	"context"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// factTransformKey is the (fact_type, source) tuple the Design Notes
// call for: "represent it as a lookup table keyed by the tuple, not
// as per-source subclasses." Every backend currently shapes its
// payloads identically per fact_type, so one default entry per type
// covers all sources; a source needing a divergent payload shape adds
// its own (FactType, Source) row here rather than a new code path.
type factTransformKey struct {
	factType schema.FactType
	source   schema.Source
}

// applyFact is one row of the transform table: it mutates the
// in-progress DictionaryEntry being assembled for a source.
type applyFact func(entry *schema.DictionaryEntry, f schema.Fact)

var factTransformTable = map[factTransformKey]applyFact{
	{factType: schema.FactSense, source: ""}:     applyGlossFact,
	{factType: schema.FactMorph, source: ""}:     applyMorphFact,
	{factType: schema.FactCitation, source: ""}:  applyCitationFact,
	{factType: schema.FactEtymology, source: ""}: applyEtymologyFact,
}

// lookupTransform resolves the transform for (f.FactType, f.Tool),
// falling back to the wildcard (blank-source) row shared by every
// backend.
func lookupTransform(f schema.Fact) (applyFact, bool) {
	if fn, ok := factTransformTable[factTransformKey{factType: f.FactType, source: f.Tool}]; ok {
		return fn, true
	}
	fn, ok := factTransformTable[factTransformKey{factType: f.FactType, source: ""}]
	return fn, ok
}

func applyGlossFact(entry *schema.DictionaryEntry, f schema.Fact) {
	def := schema.DictionaryDefinition{
		Definition: stringField(f.Payload, "gloss"),
		Register:   stringSliceField(f.Payload, "register"),
		Domains:    stringSliceField(f.Payload, "domains"),
		SourceRef:  string(f.Tool) + ":" + f.Subject,
	}
	entry.Definitions = append(entry.Definitions, def)
}

func applyMorphFact(entry *schema.DictionaryEntry, f schema.Fact) {
	if f.Predicate != schema.HasMorphology {
		return
	}
	entry.Morphology = &schema.MorphologyInfo{
		Lemma:      stringField(f.Payload, "lemma"),
		POS:        stringField(f.Payload, "pos"),
		Features:   stringMapField(f.Payload, "features"),
		Confidence: 1.0,
	}
}

func applyCitationFact(entry *schema.DictionaryEntry, f schema.Fact) {
	entry.Citations = append(entry.Citations, schema.DictionaryCitation{
		Text:      stringField(f.Payload, "text"),
		SourceRef: stringField(f.Payload, "source_ref"),
		CTSURN:    stringField(f.Payload, "cts_urn"),
	})
}

func applyEtymologyFact(entry *schema.DictionaryEntry, f schema.Fact) {
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	entry.Metadata["etymology"] = stringField(f.Payload, "etymology")
}

func stringField(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

func stringSliceField(payload map[string]any, key string) []string {
	if payload == nil {
		return nil
	}
	raw, ok := payload[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringMapField(payload map[string]any, key string) map[string]string {
	if payload == nil {
		return nil
	}
	raw, ok := payload[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

// entriesFromFacts implements spec §4.9's lookup-first read path: if
// C9 has any fact for subject, synthesize entries from facts instead
// of running the fan-out. Facts are grouped by tool into one
// DictionaryEntry per source, whereas a live fan-out may return
// several entries from one source.
func (e *Engine) entriesFromFacts(ctx context.Context, subject string) ([]schema.DictionaryEntry, bool) {
	facts, err := e.factIndex.Lookup(ctx, subject, lookupPredicates)
	if err != nil {
		Logger.Warn().Err(err).Str("subject", subject).Msg("fact index lookup failed")
		return nil, false
	}
	if len(facts) == 0 {
		return nil, false
	}

	order := make([]schema.Source, 0, 4)
	bySource := make(map[schema.Source]*schema.DictionaryEntry)
	for _, fwp := range facts {
		entry, ok := bySource[fwp.Fact.Tool]
		if !ok {
			fresh := schema.DictionaryEntry{Source: fwp.Fact.Tool, Headword: subject, Metadata: map[string]any{}}
			bySource[fwp.Fact.Tool] = &fresh
			entry = &fresh
			order = append(order, fwp.Fact.Tool)
		}
		if transform, ok := lookupTransform(fwp.Fact); ok {
			transform(entry, fwp.Fact)
		}
	}

	out := make([]schema.DictionaryEntry, 0, len(order))
	for _, s := range order {
		out = append(out, *bySource[s])
	}
	return out, true
}
