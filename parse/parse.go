// Package parse implements the entry parsers (C4): one grammar per
// upstream dictionary block format. Every parser is deterministic,
// produces byte-identical output for identical input, and never
// raises a grammar failure upward — it degrades to a fallback
// schema.ParsedEntry instead (spec §4.4.5's fail-soft policy).
package parse

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// grammar is the internal shape every per-source grammar implements.
// It may return an error; Parse always converts that into the
// fail-soft fallback entry and never lets it escape.
type grammar func(raw string) (schema.ParsedEntry, error)

var grammars = map[schema.Source]grammar{
	schema.SourceCDSL:          parseCDSL,
	schema.SourceDiogenesLatin: parseDiogenesLatin,
	schema.SourceDiogenesGreek: parseDiogenesGreek,
	schema.SourceLewisShort:    parseLewisShort,
	schema.SourceHeritage:      parseHeritage,
}

// Parse runs the grammar registered for source against raw and always
// returns a valid schema.ParsedEntry: on grammar failure it emits the
// fallback single-sense entry described in spec §4.4.5 and logs a
// *schema.ParseError rather than propagating it.
func Parse(source schema.Source, language schema.Language, raw string) schema.ParsedEntry {
	g, ok := grammars[source]
	if !ok {
		return fallbackEntry(source, language, raw, &schema.ParseError{Source: source, Reason: "no grammar registered for source"})
	}

	entry, err := g(raw)
	if err != nil {
		return fallbackEntry(source, language, raw, err)
	}
	entry.Source = source
	entry.Language = language
	entry.RawText = raw
	return entry
}

// fallbackEntry builds the spec §4.4.5 degradation: a single sense
// whose gloss is the trimmed raw text, with raw_text preserved.
func fallbackEntry(source schema.Source, language schema.Language, raw string, cause error) schema.ParsedEntry {
	if pe, ok := cause.(*schema.ParseError); ok {
		Logger.Warn().Str("source", string(source)).Int("offset", pe.Offset).Str("reason", pe.Reason).Msg("parse fell back to raw text")
	} else {
		Logger.Warn().Str("source", string(source)).Err(cause).Msg("parse fell back to raw text")
	}
	trimmed := strings.TrimSpace(raw)
	return schema.ParsedEntry{
		Source:   source,
		Language: language,
		RawText:  raw,
		Senses:   []schema.ParsedSense{{Gloss: trimmed}},
	}
}
