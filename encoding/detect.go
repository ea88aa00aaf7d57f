package encoding

import (
	"strings"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Detection is the result of running the priority-ordered rule chain
// over a raw input string.
type Detection struct {
	Encoding   schema.Encoding
	Confidence float64
	Rule       string
}

// slp1OnlyConsonants are the SLP1 capital/special consonant letters
// that have no ordinary meaning in plain ASCII Roman text, used by
// rule 3 as the SLP1 detection signal (spec §4.2 rule 3).
var slp1OnlyConsonants = "KGCJTDNPBSzfxMH"

// velthuisMarkers are grapheme sequences that only occur in Velthuis
// Sanskrit romanization (doubled vowels plus the quote-prefixed
// retroflex/nasal letters), used by rule 4.
var velthuisMarkers = []string{"aa", "ii", "uu", ".m", ".h", "\"n", "~n", "\"s"}

// hkMarkers are grapheme sequences distinctive of Harvard-Kyoto
// romanization (capitals for retroflex/nasal/sibilant consonants that
// don't collide with SLP1's own capital scheme), used by rule 5.
var hkMarkers = []string{"G", "J", "z"}

// Detect runs the eight ordered rules of spec §4.2 against raw input
// and returns the first rule that matches, with its fixed confidence.
// Rule order is significant: Devanagari and IAST are checked before
// any ASCII heuristic, and Greek is checked before Betacode so that
// plain Unicode Greek never gets misread as Latin transliteration.
func Detect(raw string) Detection {
	if containsDevanagari(raw) {
		return Detection{schema.Devanagari, 1.0, "devanagari-codepoint"}
	}
	if containsIASTDiacritic(raw) {
		return Detection{schema.IAST, 1.0, "iast-diacritic"}
	}
	if looksLikeSLP1(raw) {
		return Detection{schema.SLP1, 0.8, "slp1-consonants"}
	}
	if looksLikeVelthuis(raw) {
		return Detection{schema.Velthuis, 0.8, "velthuis-markers"}
	}
	if looksLikeHK(raw) {
		return Detection{schema.HK, 0.6, "harvard-kyoto-markers"}
	}
	if containsGreekCodepoint(raw) {
		return Detection{schema.Unicode, 1.0, "greek-codepoint"}
	}
	if looksLikeBetacode(raw) {
		return Detection{schema.Betacode, 1.0, "betacode-markers"}
	}
	return Detection{schema.AsciiRoman, 0.5, "fallback-ascii"}
}

func containsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

// iastDiacritics are the precomposed Unicode letters that only occur
// in IAST romanization, never in plain ASCII Roman or any other
// supported Sanskrit encoding.
var iastDiacritics = []rune{'ā', 'ī', 'ū', 'ṛ', 'ṝ', 'ḷ', 'ḹ', 'ṃ', 'ḥ', 'ṅ', 'ñ', 'ṭ', 'ḍ', 'ṇ', 'ś', 'ṣ'}

func containsIASTDiacritic(s string) bool {
	for _, r := range s {
		for _, d := range iastDiacritics {
			if r == d {
				return true
			}
		}
	}
	return false
}

// forbiddenSLP1Patterns are ASCII sequences that, if present, indicate
// the text is plain Roman prose or another romanization rather than
// SLP1 (spec §4.2 rule 3's "no forbidden pattern" clause).
var forbiddenSLP1Patterns = []string{"sh", "aa", "ii", "uu"}

func looksLikeSLP1(s string) bool {
	count := 0
	for _, r := range s {
		if strings.ContainsRune(slp1OnlyConsonants, r) {
			count++
		}
	}
	if count < 2 {
		return false
	}
	for _, forbidden := range forbiddenSLP1Patterns {
		if strings.Contains(s, forbidden) {
			return false
		}
	}
	return true
}

func looksLikeVelthuis(s string) bool {
	for _, m := range velthuisMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func looksLikeHK(s string) bool {
	for _, m := range hkMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func containsGreekCodepoint(s string) bool {
	for _, r := range s {
		if (r >= 0x0370 && r <= 0x03FF) || (r >= 0x1F00 && r <= 0x1FFF) {
			return true
		}
	}
	return false
}

// looksLikeBetacode matches a leading capital marker or any internal
// accent/breathing marker alongside ASCII Greek-alphabet letters
// (spec §4.2 rule 7).
func looksLikeBetacode(s string) bool {
	hasASCIIGreekLetter := false
	for i := 0; i < len(s); i++ {
		if _, ok := betacodeLetter[toLowerByte(s[i])]; ok {
			hasASCIIGreekLetter = true
			break
		}
	}
	if !hasASCIIGreekLetter {
		return false
	}
	if strings.HasPrefix(s, string(rune(betaCapitalMark))) {
		return true
	}
	return strings.ContainsAny(s, string([]rune{betaAcute, betaGrave, betaCircumflex, betaSmooth, betaRough, betaIotaSub}))
}
