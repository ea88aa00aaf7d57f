package encoding

import (
	"strings"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// devanagariVowel holds both the independent glyph (word-initial or
// after another vowel) and the dependent matra (attached to a
// preceding consonant) for each SLP1 vowel/vocalic-liquid phoneme. The
// short "a" has no matra: it is the implicit vowel of a bare
// consonant glyph.
type devanagariVowel struct {
	independent string
	matra       string
}

var devanagariVowels = map[string]devanagariVowel{
	"a": {"अ", ""},
	"A": {"आ", "ा"},
	"i": {"इ", "ि"},
	"I": {"ई", "ी"},
	"u": {"उ", "ु"},
	"U": {"ऊ", "ू"},
	"f": {"ऋ", "ृ"},
	"F": {"ॠ", "ॄ"},
	"x": {"ऌ", "ॢ"},
	"X": {"ॡ", "ॣ"},
	"e": {"ए", "े"},
	"E": {"ऐ", "ै"},
	"o": {"ओ", "ो"},
	"O": {"औ", "ौ"},
}

var devanagariConsonants = map[string]string{
	"k": "क", "K": "ख", "g": "ग", "G": "घ", "N": "ङ",
	"c": "च", "C": "छ", "j": "ज", "J": "झ", "Y": "ञ",
	"w": "ट", "W": "ठ", "q": "ड", "Q": "ढ", "R": "ण",
	"t": "त", "T": "थ", "d": "द", "D": "ध", "n": "न",
	"p": "प", "P": "फ", "b": "ब", "B": "भ", "m": "म",
	"y": "य", "r": "र", "l": "ल", "v": "व",
	"S": "श", "z": "ष", "s": "स", "h": "ह",
}

const (
	virama   = "्"
	anusvara = "ं"
	visarga  = "ः"
)

var (
	devanagariToSLP1Consonant = invert(devanagariConsonants)
	devanagariToSLP1Vowel     = invertVowels(devanagariVowels)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func invertVowels(m map[string]devanagariVowel) map[string]string {
	out := make(map[string]string, len(m)*2)
	for slp1, v := range m {
		out[v.independent] = slp1
		if v.matra != "" {
			out[v.matra] = slp1
		}
	}
	return out
}

// SLP1ToDevanagari renders an SLP1 token as Devanagari, applying the
// implicit-vowel and virama rules: a bare consonant carries an
// implicit "a" unless followed immediately by another consonant or by
// end of string, in which case a virama suppresses it.
func SLP1ToDevanagari(s string) (string, error) {
	ph, err := tokenizeByTable(s, slp1Index)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	i := 0
	for i < len(ph) {
		p := ph[i]
		switch {
		case p.slp1 == "M":
			sb.WriteString(anusvara)
		case p.slp1 == "H":
			sb.WriteString(visarga)
		case p.vowel:
			// A vowel at the start of a syllable (not immediately
			// after a consonant) is written with its independent glyph.
			sb.WriteString(devanagariVowels[p.slp1].independent)
		default:
			glyph, ok := devanagariConsonants[p.slp1]
			if !ok {
				return "", &schema.EncodingError{Kind: schema.EncodingUnknown, Offset: i, Expected: "devanagari-representable consonant"}
			}
			sb.WriteString(glyph)

			// Look ahead: does an explicit vowel follow?
			if i+1 < len(ph) && ph[i+1].vowel {
				next := ph[i+1]
				if next.slp1 != "a" { // short a is implicit, contributes no matra
					sb.WriteString(devanagariVowels[next.slp1].matra)
				}
				i++ // consume the vowel along with its consonant
			} else if i+1 < len(ph) && !ph[i+1].vowel && ph[i+1].slp1 != "M" && ph[i+1].slp1 != "H" {
				// Followed by another consonant: suppress implicit "a".
				sb.WriteString(virama)
			} else if i+1 >= len(ph) {
				// Word-final consonant: suppress implicit "a".
				sb.WriteString(virama)
			}
			// else: followed by anusvara/visarga, implicit "a" stands.
		}
		i++
	}
	return sb.String(), nil
}

// DevanagariToSLP1 is the inverse of SLP1ToDevanagari. It walks glyph
// by glyph, expanding each bare consonant's implicit "a" unless a
// matra or virama immediately follows.
func DevanagariToSLP1(s string) (string, error) {
	runes := []rune(s)
	var sb strings.Builder
	i := 0
	for i < len(runes) {
		g := string(runes[i])
		switch {
		case g == anusvara:
			sb.WriteString("M")
			i++
		case g == visarga:
			sb.WriteString("H")
			i++
		case g == virama:
			// Virama only ever follows a consonant we already emitted
			// without its implicit "a"; nothing to add.
			i++
		default:
			if slp1, ok := devanagariToSLP1Vowel[g]; ok {
				sb.WriteString(slp1)
				i++
				continue
			}
			slp1Cons, ok := devanagariToSLP1Consonant[g]
			if !ok {
				return "", &schema.EncodingError{Kind: schema.EncodingMalformed, Offset: i, Expected: "devanagari grapheme"}
			}
			sb.WriteString(slp1Cons)
			i++
			switch {
			case i < len(runes) && string(runes[i]) == virama:
				i++ // consonant cluster: no implicit "a", virama consumed above on next loop anyway but skip here too
			case i < len(runes):
				if matraSLP1, ok := devanagariToSLP1Vowel[string(runes[i])]; ok && matraSLP1 != "a" {
					sb.WriteString(matraSLP1)
					i++
				} else {
					sb.WriteString("a")
				}
			default:
				sb.WriteString("a")
			}
		}
	}
	return sb.String(), nil
}
