package parse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// diogenesMarker matches a candidate sense marker: a short token (no
// spaces or periods of its own) followed by a period and exactly two
// ASCII spaces — the TWO SPACES disambiguator of spec §4.4.2. A
// marker followed by a single space is ordinary prose, which this
// pattern simply fails to match (the required "  " literal is absent),
// so no lookahead is needed here; regexp2 is used anyway, while the
// other patterns in this file use stdlib regexp.
var diogenesMarker = regexp2.MustCompile(`^([^\s.]{1,6})\.  `, regexp2.None)

var romanNumeral = regexp.MustCompile(`^[IVX]+$`)
var allDigits = regexp.MustCompile(`^[0-9]+$`)

// etymologyPrefixes are the heuristic lead-in phrases spec §4.4.2
// names for an optional etymology note at the start of sense content.
var etymologyPrefixes = []string{"verbal noun of", "kindred with", "cf."}

// citationLikeLead matches a semicolon-delimited segment that *opens*
// like an embedded citation: a capitalized abbreviation, Perseus-style
// (e.g. "Verg. E. 2, 63", "IG 1(2).374.191"). Combined with a digit
// check, this is enough to separate citations from ordinary gloss
// text without needing a fully general reference-number grammar.
var citationLikeLead = regexp.MustCompile(`^\p{Lu}[\p{L}]*\.?`)

func isCitationLike(segment string) bool {
	return citationLikeLead.MatchString(segment) && strings.ContainsAny(segment, "0123456789")
}

func parseDiogenesLatin(raw string) (schema.ParsedEntry, error) {
	return parseDiogenesBlock(raw, schema.SourceDiogenesLatin)
}

func parseDiogenesGreek(raw string) (schema.ParsedEntry, error) {
	return parseDiogenesBlock(raw, schema.SourceDiogenesGreek)
}

func parseDiogenesBlock(raw string, source schema.Source) (schema.ParsedEntry, error) {
	senseID, content, err := splitDiogenesMarker(raw)
	if err != nil {
		return schema.ParsedEntry{}, &schema.ParseError{Source: source, Reason: err.Error()}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return schema.ParsedEntry{}, &schema.ParseError{Source: source, Reason: "empty sense content"}
	}

	var etymology string
	for _, prefix := range etymologyPrefixes {
		if strings.HasPrefix(strings.ToLower(content), prefix) {
			etymology = strings.TrimSpace(content[:len(prefix)])
			content = strings.TrimSpace(content[len(prefix):])
			content = strings.TrimPrefix(content, ",")
			content = strings.TrimSpace(content)
			break
		}
	}

	gloss, citations := splitEmbeddedCitations(content)

	entry := schema.ParsedEntry{
		Etymology: etymology,
		Senses: []schema.ParsedSense{{
			SenseID: senseID,
			Gloss:   gloss,
		}},
		Citations: citations,
	}
	return entry, nil
}

// splitDiogenesMarker returns the marker literal (or "" if none
// matched/validated) and the remaining sense content.
func splitDiogenesMarker(raw string) (string, string, error) {
	m, err := diogenesMarker.FindStringMatch(raw)
	if err != nil {
		return "", "", err
	}
	if m == nil {
		return "", raw, nil
	}
	token := m.GroupByNumber(1).String()
	if !isValidSenseMarker(token) {
		return "", raw, nil
	}
	return token, raw[m.Index+m.Length:], nil
}

// isValidSenseMarker implements spec §4.4.2's marker alphabet: Roman
// numerals, a single Greek lowercase letter, an Arabic numeral, or a
// single lowercase Latin letter.
func isValidSenseMarker(token string) bool {
	runes := []rune(token)
	if len(runes) == 1 {
		r := runes[0]
		if r >= 'α' && r <= 'ω' {
			return true
		}
		if unicode.IsLower(r) && r < unicode.MaxASCII {
			return true
		}
	}
	if allDigits.MatchString(token) {
		return true
	}
	if romanNumeral.MatchString(token) {
		return true
	}
	return false
}

// splitEmbeddedCitations implements spec §4.4.2's embedded_citations:
// semicolon-separated segments at the tail of sense_content that look
// like a citation are peeled off; everything before them is the gloss.
func splitEmbeddedCitations(content string) (string, []schema.ParsedCitation) {
	segments := strings.Split(content, ";")
	cut := len(segments)
	for i := len(segments) - 1; i >= 0; i-- {
		if isCitationLike(strings.TrimSpace(segments[i])) {
			cut = i
			continue
		}
		break
	}

	gloss := strings.TrimSpace(strings.Join(segments[:cut], ";"))
	var citations []schema.ParsedCitation
	for _, seg := range segments[cut:] {
		text := strings.TrimSpace(seg)
		if text == "" {
			continue
		}
		citations = append(citations, schema.ParsedCitation{
			Text:      text,
			SourceRef: "diogenes:" + citationAbbrevPrefix(text),
		})
	}
	return gloss, citations
}

// citationAbbrevPrefix extracts the leading non-digit token(s) of a
// citation text, e.g. "verg_e" from "Verg. E. 2, 63".
func citationAbbrevPrefix(text string) string {
	fields := strings.Fields(text)
	var prefix []string
	for _, f := range fields {
		if strings.ContainsAny(f, "0123456789") {
			break
		}
		prefix = append(prefix, strings.TrimSuffix(f, "."))
	}
	if len(prefix) == 0 {
		return strings.ToLower(fields[0])
	}
	return strings.ToLower(strings.Join(prefix, "_"))
}
