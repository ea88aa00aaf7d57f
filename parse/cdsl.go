package parse

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// cdslKnownAbbrevs are the citation abbreviations recognized by spec
// §4.4.1's "known citation abbreviation" clause. Not exhaustive of the
// real Monier-Williams bibliography, but covers the scriptures and
// grammarians most commonly cited as trailing sense markers.
var cdslKnownAbbrevs = map[string]bool{
	"L": true, "Uṇ": true, "RV": true, "MBh": true, "R": true,
	"Pāṇ": true, "Mn": true, "Ya": true, "BhP": true, "Ragh": true,
	"Hariv": true, "Kathās": true, "Pañcat": true, "ib": true,
}

var (
	cdslRootSpec    = regexp.MustCompile(`\(\s*√\s*([^,)]+?)\s*(?:,\s*([^)]+))?\)`)
	cdslGenderSpec  = regexp.MustCompile(`^(m|f|n)\.\s*`)
	cdslGrammarRef  = regexp.MustCompile(`^([\p{Lu}][\p{L}]*\.)\s*`)
	cdslTrailingCit = regexp.MustCompile(`,\s*([\p{Lu}][\p{L}]*)\.\s*$`)
)

// cdslSenseSplit splits a sense body on commas followed by a lowercase
// letter (spec §4.4.1): "commas separate senses when followed by
// lowercase". Lookahead is needed to test the character after the
// comma without consuming it, which Go's stdlib regexp (RE2) cannot
// express — hence regexp2 here.
var cdslSenseSplit = regexp2.MustCompile(`,\s*(?=\p{Ll})`, regexp2.None)

func parseCDSL(raw string) (schema.ParsedEntry, error) {
	idx := strings.Index(raw, "/")
	if idx < 0 {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceCDSL, Reason: "missing headword separator '/'", Offset: 0}
	}
	headword := strings.TrimSpace(raw[:idx])
	if headword == "" {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceCDSL, Reason: "empty headword", Offset: 0}
	}

	rest := raw[idx+1:]
	rest = strings.TrimLeft(rest, " \t")

	var root string
	if m := cdslRootSpec.FindStringSubmatchIndex(rest); m != nil {
		root = strings.TrimSpace(rest[m[2]:m[3]])
		rest = rest[:m[0]] + rest[m[1]:]
	}

	for {
		rest = strings.TrimLeft(rest, " \t")
		if loc := cdslGenderSpec.FindStringIndex(rest); loc != nil && loc[0] == 0 {
			rest = rest[loc[1]:]
			continue
		}
		if loc := cdslGrammarRef.FindStringIndex(rest); loc != nil && loc[0] == 0 {
			rest = rest[loc[1]:]
			continue
		}
		break
	}

	senseBody := strings.TrimSpace(rest)
	if senseBody == "" {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceCDSL, Reason: "empty sense body", Offset: idx}
	}

	var citations []schema.ParsedCitation
	if m := cdslTrailingCit.FindStringSubmatchIndex(senseBody); m != nil {
		abbr := senseBody[m[2]:m[3]]
		if cdslKnownAbbrevs[abbr] {
			citations = append(citations, schema.ParsedCitation{
				Text:      abbr + ".",
				SourceRef: "citation_abbrev:" + abbr,
			})
			senseBody = strings.TrimSpace(senseBody[:m[0]])
		}
	}

	senses, err := splitCDSLSenses(senseBody)
	if err != nil {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceCDSL, Reason: err.Error(), Offset: idx}
	}

	return schema.ParsedEntry{
		Headword:  headword,
		Root:      root,
		Senses:    senses,
		Citations: citations,
	}, nil
}

func splitCDSLSenses(body string) ([]schema.ParsedSense, error) {
	var senses []schema.ParsedSense
	pos := 0
	m, err := cdslSenseSplit.FindStringMatch(body)
	if err != nil {
		return nil, err
	}
	for m != nil {
		senses = append(senses, schema.ParsedSense{Gloss: strings.TrimSpace(body[pos:m.Index])})
		pos = m.Index + m.Length
		m, err = cdslSenseSplit.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}
	senses = append(senses, schema.ParsedSense{Gloss: strings.TrimSpace(body[pos:])})
	return senses, nil
}
