package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// heritageBlockPattern matches the synthetic `[headword]{morph_code+
// ("|" morph_code+)*}` block described by spec §4.4.4 (already
// extracted from the upstream HTML table by the adapter before it
// reaches this grammar).
var heritageBlockPattern = regexp.MustCompile(`^\[\s*([^\]]*)\s*\]\{\s*(.*)\s*\}$`)

// parseHeritage implements spec §4.4.4: expand each French
// morph_code token against heritageTable. A block may carry more than
// one "|"-separated alternate reading of the whole word; all
// alternates are kept, with readings after the first namespaced by
// alternate index so nothing is silently dropped.
func parseHeritage(raw string) (schema.ParsedEntry, error) {
	m := heritageBlockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceHeritage, Reason: "malformed heritage block"}
	}
	headword := strings.TrimSpace(m[1])
	if headword == "" {
		return schema.ParsedEntry{}, &schema.ParseError{Source: schema.SourceHeritage, Reason: "empty headword"}
	}

	altGroups := strings.Split(m[2], "|")
	features := make(map[string]string)
	var pos, gender string

	for altIdx, group := range altGroups {
		tokens := strings.Fields(strings.TrimSpace(group))
		if len(tokens) == 0 {
			continue
		}
		expandHeritageTokens(tokens, altIdx, features)
		if altIdx == 0 {
			pos, gender = primaryPOSAndGender(tokens)
		}
	}

	entry := schema.ParsedEntry{
		Headword: headword,
		POS:      pos,
		Gender:   gender,
		Senses: []schema.ParsedSense{{
			Gloss: headword + " (morphology)",
		}},
		Morphology: &schema.MorphologyInfo{
			Lemma:      headword,
			POS:        pos,
			Features:   features,
			Confidence: 1.0 / float64(len(altGroups)),
		},
	}
	return entry, nil
}

// expandHeritageTokens expands one alternate's morph_code sequence
// into features, namespacing keys for alternates after the first
// (altIdx > 0) and for token-level ambiguous abbreviations by their
// position in the sequence, per DESIGN.md's resolved Open Question on
// ambiguous French abbreviations.
func expandHeritageTokens(tokens []string, altIdx int, features map[string]string) {
	prefix := ""
	if altIdx > 0 {
		prefix = fmt.Sprintf("alt%d_", altIdx)
	}

	for i, tok := range tokens {
		if candidates, ambiguous := heritageAmbiguous[tok]; ambiguous {
			for _, c := range candidates {
				key := fmt.Sprintf("%s%s~%d", prefix, c.axis, i)
				features[key] = c.value
			}
			features[fmt.Sprintf("%sambiguous~%d", prefix, i)] = "true"
			continue
		}
		if feat, ok := heritageTable[tok]; ok {
			features[prefix+feat.axis] = feat.value
			continue
		}
		// Unknown abbreviation: preserved verbatim so nothing from the
		// upstream table silently disappears.
		features[fmt.Sprintf("%sunknown~%d", prefix, i)] = tok
	}
}

// primaryPOSAndGender pulls a coarse POS/gender summary off the
// primary alternate's tokens, for ParsedEntry.POS/Gender — the full
// detail still lives in Morphology.Features.
func primaryPOSAndGender(tokens []string) (pos, gender string) {
	for _, tok := range tokens {
		if feat, ok := heritageTable[tok]; ok {
			switch feat.axis {
			case "pos":
				if pos == "" {
					pos = feat.value
				}
			case "gender":
				if gender == "" {
					gender = feat.value
				}
			}
		}
	}
	return pos, gender
}
