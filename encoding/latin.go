package encoding

import "strings"

// macronBreve maps each Latin vowel carrying a macron or breve to its
// bare ASCII lowercase form. A macron/breve is one grapheme regardless
// of whether the input uses a precomposed codepoint (ā) or a base
// letter plus combining mark (a + U+0304) — both are folded here.
var macronBreve = map[rune]rune{
	'ā': 'a', 'Ā': 'a', 'ă': 'a', 'Ă': 'a',
	'ē': 'e', 'Ē': 'e', 'ĕ': 'e', 'Ĕ': 'e',
	'ī': 'i', 'Ī': 'i', 'ĭ': 'i', 'Ĭ': 'i',
	'ō': 'o', 'Ō': 'o', 'ŏ': 'o', 'Ŏ': 'o',
	'ū': 'u', 'Ū': 'u', 'ŭ': 'u', 'Ŭ': 'u',
	'ȳ': 'y', 'Ȳ': 'y',
}

// combiningMacronBreve are the combining-mark codepoints that can
// trail a bare vowel in decomposed (NFD) input.
const (
	combiningMacron = '̄'
	combiningBreve  = '̆'
)

// FoldMacrons folds Latin macrons/breves to plain ASCII and lowercases
// the result, satisfying the invariant in spec §8: fold_macrons(w) is
// ASCII, lowercase, and preserves len(w) in graphemes (one macron,
// precomposed or combining, collapses to exactly one letter).
func FoldMacrons(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if plain, ok := macronBreve[r]; ok {
			sb.WriteRune(plain)
			continue
		}
		if i+1 < len(runes) && (runes[i+1] == combiningMacron || runes[i+1] == combiningBreve) {
			sb.WriteRune(lowerASCII(r))
			i++ // consume the combining mark
			continue
		}
		sb.WriteRune(lowerASCII(r))
	}
	return sb.String()
}

func lowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r - 'A' + 'a'
	}
	return r
}

// OrthographicVariants generates the small closed set of i/j and u/v
// orthographic alternates for a folded Latin word, per spec §4.1:
// "replace only the first occurrence per generated variant". Variants
// that are identical to the input or to each other are omitted.
func OrthographicVariants(folded string) []string {
	seen := map[string]bool{folded: true}
	var variants []string

	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	if v, ok := replaceFirst(folded, 'i', 'j'); ok {
		add(v)
	}
	if v, ok := replaceFirst(folded, 'j', 'i'); ok {
		add(v)
	}
	if v, ok := replaceFirst(folded, 'u', 'v'); ok {
		add(v)
	}
	if v, ok := replaceFirst(folded, 'v', 'u'); ok {
		add(v)
	}
	return variants
}

// replaceFirst replaces the first occurrence of from with to, if any.
func replaceFirst(s string, from, to rune) (string, bool) {
	runes := []rune(s)
	for i, r := range runes {
		if r == from {
			out := make([]rune, len(runes))
			copy(out, runes)
			out[i] = to
			return string(out), true
		}
	}
	return "", false
}
