package encoding

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// betacodeLetter maps a bare Betacode letter to its bare lowercase
// Greek Unicode letter. Accents/breathings/iota-subscript are markers
// layered on afterward per spec §4.1's serialization order
// (breathing, accent, iota-subscript).
var betacodeLetter = map[byte]rune{
	'a': 'α', 'b': 'β', 'g': 'γ', 'd': 'δ', 'e': 'ε', 'z': 'ζ',
	'h': 'η', 'q': 'θ', 'i': 'ι', 'k': 'κ', 'l': 'λ', 'm': 'μ',
	'n': 'ν', 'x': 'ξ', 'o': 'ο', 'p': 'π', 'r': 'ρ', 's': 'σ',
	't': 'τ', 'u': 'υ', 'f': 'φ', 'c': 'χ', 'y': 'ψ', 'w': 'ω',
}

var unicodeToBetacodeLetter = func() map[rune]byte {
	m := make(map[rune]byte, len(betacodeLetter))
	for b, r := range betacodeLetter {
		m[r] = b
	}
	return m
}()

// Betacode diacritic markers and their combining-mark equivalents.
// Order of application on decode: breathing, then accent, then iota
// subscript — matching the encode-side serialization order of §4.1 so
// round-tripping is order-stable.
const (
	betaSmooth      = ')'
	betaRough       = '('
	betaAcute       = '/'
	betaGrave       = '\\'
	betaCircumflex  = '='
	betaIotaSub     = '|'
	betaDiaeresis   = '+'
	betaCapitalMark = '*'
)

const (
	combSmooth     = '̓'
	combRough      = '̔'
	combAcute      = '́'
	combGrave      = '̀'
	combCircumflex = '͂'
	combIotaSub    = 'ͅ'
	combDiaeresis  = '̈'
)

// BetacodeToUnicode converts a Betacode string to Unicode NFC Greek,
// applying final-sigma normalization (a trailing/word-final σ becomes
// ς).
func BetacodeToUnicode(s string) (string, error) {
	var sb strings.Builder
	capitalNext := false
	i := 0
	for i < len(s) {
		c := s[i]
		if c == betaCapitalMark {
			capitalNext = true
			i++
			continue
		}
		letter, ok := betacodeLetter[toLowerByte(c)]
		if !ok {
			return "", &schema.EncodingError{Kind: schema.EncodingMalformed, Offset: i, Expected: "betacode Greek letter"}
		}
		i++

		// Collect trailing diacritic markers in any order; re-emit in
		// the canonical breathing/accent/iota-subscript order.
		var breathing, accent rune
		var iotaSub, diaeresis bool
		for i < len(s) {
			switch s[i] {
			case betaSmooth:
				breathing = combSmooth
			case betaRough:
				breathing = combRough
			case betaAcute:
				accent = combAcute
			case betaGrave:
				accent = combGrave
			case betaCircumflex:
				accent = combCircumflex
			case betaIotaSub:
				iotaSub = true
			case betaDiaeresis:
				diaeresis = true
			default:
				goto doneMarkers
			}
			i++
		}
	doneMarkers:
		out := string(letter)
		if capitalNext {
			out = strings.ToUpper(out)
			capitalNext = false
		}
		sb.WriteString(out)
		if breathing != 0 {
			sb.WriteRune(breathing)
		}
		if accent != 0 {
			sb.WriteRune(accent)
		}
		if iotaSub {
			sb.WriteRune(combIotaSub)
		}
		if diaeresis {
			sb.WriteRune(combDiaeresis)
		}
	}

	result := norm.NFC.String(sb.String())
	return applyFinalSigma(result), nil
}

func toLowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

// applyFinalSigma rewrites a word-final lowercase sigma (σ) as ς,
// matching the teacher-pack convention of normalizing before
// comparison/lookup (cf. normalize.go's lowercasing passes).
func applyFinalSigma(s string) string {
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != 'σ' {
			continue
		}
		atWordEnd := i+1 >= len(runes) || isGreekWordBoundary(runes[i+1])
		if atWordEnd {
			runes[i] = 'ς'
		}
	}
	return string(runes)
}

func isGreekWordBoundary(r rune) bool {
	switch {
	case unicode.IsLetter(r) && unicode.Is(unicode.Greek, r):
		return false
	case unicode.Is(unicode.Mn, r):
		return false
	default:
		return true
	}
}

// UnicodeToBetacode converts Unicode NFC Greek back to Betacode,
// decomposing combining marks first so each base letter's diacritics
// can be read off individually.
func UnicodeToBetacode(s string) (string, error) {
	decomposed := norm.NFD.String(s)
	runes := []rune(decomposed)

	var sb strings.Builder
	i := 0
	for i < len(runes) {
		r := runes[i]
		if r == 'ς' {
			r = 'σ'
		}
		lower := lowerGreek(r)
		b, ok := unicodeToBetacodeLetter[lower]
		if !ok {
			return "", &schema.EncodingError{Kind: schema.EncodingMalformed, Offset: i, Expected: "Greek letter"}
		}

		isCapital := lower != r
		i++

		var breathing, accent byte
		iotaSub, diaeresis := false, false
		for i < len(runes) {
			switch runes[i] {
			case combSmooth:
				breathing = betaSmooth
			case combRough:
				breathing = betaRough
			case combAcute:
				accent = betaAcute
			case combGrave:
				accent = betaGrave
			case combCircumflex:
				accent = betaCircumflex
			case combIotaSub:
				iotaSub = true
			case combDiaeresis:
				diaeresis = true
			default:
				goto doneDecomp
			}
			i++
		}
	doneDecomp:
		if isCapital {
			sb.WriteByte(betaCapitalMark)
		}
		sb.WriteByte(b)
		if breathing != 0 {
			sb.WriteByte(breathing)
		}
		if accent != 0 {
			sb.WriteByte(accent)
		}
		if iotaSub {
			sb.WriteByte(betaIotaSub)
		}
		if diaeresis {
			sb.WriteByte(betaDiaeresis)
		}
	}
	return sb.String(), nil
}

func lowerGreek(r rune) rune {
	if r >= 'Α' && r <= 'Ω' {
		return r + ('α' - 'Α')
	}
	return r
}
