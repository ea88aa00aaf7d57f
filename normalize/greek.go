package normalize

import (
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/encoding"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// normalizeGreek implements spec §4.3's Greek rule: Betacode input is
// converted to Unicode NFC via C1; Unicode input is NFC-normalized and
// final-sigma corrected; alternates always include Betacode.
func normalizeGreek(raw string) (schema.CanonicalQuery, error) {
	var notes []string

	det := encoding.Detect(raw)
	notes = append(notes, "detected:"+string(det.Encoding))

	var canonical string
	var betacode string

	switch det.Encoding {
	case schema.Betacode:
		uni, err := encoding.BetacodeToUnicode(raw)
		if err != nil {
			return schema.CanonicalQuery{}, &schema.NormalizationError{Kind: schema.NormalizationProbeFailed, Err: err}
		}
		canonical = uni
		betacode = raw
		notes = append(notes, "betacode_to_unicode")
	default:
		canonical = norm.NFC.String(raw)
		notes = append(notes, "nfc_normalized")
		runes := []rune(canonical)
		for i, r := range runes {
			if r != 'σ' {
				continue
			}
			if i+1 == len(runes) || (!unicode.IsLetter(runes[i+1]) && !unicode.Is(unicode.Mn, runes[i+1])) {
				runes[i] = 'ς'
			}
		}
		canonical = string(runes)
		bc, err := encoding.UnicodeToBetacode(canonical)
		if err != nil {
			// Non-Greek ASCII input detected as something other than
			// Betacode (e.g. plain Roman fallback on a malformed query)
			// simply has no Betacode alternate.
			betacode = ""
		} else {
			betacode = bc
		}
	}

	var alternates []string
	if betacode != "" {
		alternates = append(alternates, betacode)
	}

	return schema.NewCanonicalQuery(raw, schema.Greek, canonical, det.Encoding, det.Confidence, notes, alternates...)
}
