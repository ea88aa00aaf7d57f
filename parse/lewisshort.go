package parse

import (
	"regexp"
	"strings"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

var (
	lsPrincipalParts = regexp.MustCompile(`^\s+([\p{Ll}\p{M}]+(?:,\s*[\p{Ll}\p{M}]+)*)\s*$`)
	lsRootMarker     = regexp.MustCompile(`^([\p{Lu}]+)-,\s*$`)
	lsWrappedGloss   = regexp.MustCompile(`\n([^\n]+)\n`)
)

// lsKnownAuthors are the Lewis & Short author abbreviations recognized
// as terminating an example (spec §4.4.3). Not the full bibliography,
// but the authors most commonly cited in worked examples.
var lsKnownAuthors = map[string]bool{
	"Cic": true, "Verg": true, "Hor": true, "Liv": true, "Tac": true,
	"Ov": true, "Plin": true, "Caes": true, "Sen": true, "Quint": true,
	"Plaut": true, "Ter": true,
}

// parseLewisShort implements spec §4.4.3: headword line, optional
// principal_parts line, optional root_marker line, then an em-dash
// separated sense_list.
func parseLewisShort(raw string) (schema.ParsedEntry, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceLewisShort, Reason: "missing headword line"}
	}
	headword := strings.TrimSpace(lines[0])

	var principalParts []string
	var root string
	var bodyLines []string

	for _, line := range lines[1:] {
		if m := lsRootMarker.FindStringSubmatch(strings.TrimRight(line, " \t")); m != nil && root == "" {
			root = m[1]
			continue
		}
		if m := lsPrincipalParts.FindStringSubmatch(line); m != nil && principalParts == nil {
			for _, part := range strings.Split(m[1], ",") {
				principalParts = append(principalParts, strings.TrimSpace(part))
			}
			continue
		}
		bodyLines = append(bodyLines, line)
	}

	body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if body == "" {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceLewisShort, Reason: "empty sense list"}
	}

	senses := make([]schema.ParsedSense, 0, 4)
	for i, chunk := range strings.Split(body, "—") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		senses = append(senses, parseLSSense(chunk, i))
	}
	if len(senses) == 0 {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceLewisShort, Reason: "no senses in sense list"}
	}

	return schema.ParsedEntry{
		Headword:       headword,
		Root:           root,
		PrincipalParts: principalParts,
		Senses:         senses,
	}, nil
}

// parseLSSense splits one em-dash-delimited sense into its lead gloss
// and any ": "-introduced example, lifting a newline-wrapped gloss
// into ParsedExample.Gloss rather than concatenating it into the
// example text (spec §4.4.3's semantics).
func parseLSSense(chunk string, index int) schema.ParsedSense {
	gloss := chunk
	var examples []schema.ParsedExample

	if idx := strings.Index(chunk, ": "); idx >= 0 {
		gloss = strings.TrimSpace(chunk[:idx])
		exampleText := chunk[idx+2:]

		var wrappedGloss string
		if m := lsWrappedGloss.FindStringSubmatch(exampleText); m != nil {
			wrappedGloss = strings.TrimSpace(m[1])
			exampleText = lsWrappedGloss.ReplaceAllString(exampleText, "")
		}

		author := ""
		exampleText = strings.TrimSpace(exampleText)
		if a, rest, ok := trimTrailingAuthor(exampleText); ok {
			author = a
			exampleText = rest
		}

		examples = append(examples, schema.ParsedExample{
			Text:   strings.TrimSpace(exampleText),
			Author: author,
			Gloss:  wrappedGloss,
		})
	}

	return schema.ParsedSense{
		SenseID:  itoaSenseIndex(index),
		Gloss:    gloss,
		Examples: examples,
	}
}

// trimTrailingAuthor strips a trailing ", AUTHOR_ABBR." from text if
// AUTHOR_ABBR is a known Lewis & Short author abbreviation.
func trimTrailingAuthor(text string) (author, rest string, ok bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(text), ".")
	lastComma := strings.LastIndex(trimmed, ",")
	if lastComma < 0 {
		return "", text, false
	}
	candidate := strings.TrimSpace(trimmed[lastComma+1:])
	if !lsKnownAuthors[candidate] {
		return "", text, false
	}
	return candidate, strings.TrimSpace(trimmed[:lastComma]), true
}

func itoaSenseIndex(i int) string {
	digits := "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	// Senses rarely exceed single digits in practice; fall back to a
	// simple two-digit render for the rare long entry.
	return string(digits[i/10]) + string(digits[i%10])
}
