package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/encoding"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func TestSanskritRoundTrip_IAST(t *testing.T) {
	for _, slp1 := range []string{"agni", "aGni", "kfzRa", "DarmakzetrE"} {
		iast, err := encoding.SLP1ToIAST(slp1)
		require.NoError(t, err)
		back, err := encoding.IASTToSLP1(iast)
		require.NoError(t, err)
		assert.Equal(t, slp1, back, "round trip via IAST for %q", slp1)
	}
}

func TestSanskritRoundTrip_Velthuis(t *testing.T) {
	for _, slp1 := range []string{"agni", "kfzRa", "Sakuntala"} {
		v, err := encoding.SLP1ToVelthuis(slp1)
		require.NoError(t, err)
		back, err := encoding.VelthuisToSLP1(v)
		require.NoError(t, err)
		assert.Equal(t, slp1, back)
	}
}

func TestSanskritRoundTrip_HK(t *testing.T) {
	for _, slp1 := range []string{"agni", "kfzRa", "Sakuntala"} {
		hk, err := encoding.SLP1ToHK(slp1)
		require.NoError(t, err)
		back, err := encoding.HKToSLP1(hk)
		require.NoError(t, err)
		assert.Equal(t, slp1, back)
	}
}

func TestSanskritRoundTrip_Devanagari(t *testing.T) {
	for _, slp1 := range []string{"agni", "rAma", "kfzRa", "Darma"} {
		dev, err := encoding.SLP1ToDevanagari(slp1)
		require.NoError(t, err)
		back, err := encoding.DevanagariToSLP1(dev)
		require.NoError(t, err)
		assert.Equal(t, slp1, back, "round trip via Devanagari for %q", slp1)
	}
}

func TestVelthuisToSLP1_StrayLeadingDot(t *testing.T) {
	got, err := encoding.VelthuisToSLP1(".agnii")
	require.NoError(t, err)
	assert.Equal(t, "agnI", got, "leading dot stripped, doubled ii greedily matches the long-ī grapheme")

	// Round trip back confirms "agnI" (not "agni") is the invariant-
	// preserving canonical form: SLP1 "I" only ever renders as Velthuis
	// "ii", so folding it to short "i" on the way in would break
	// SLP1->Velthuis->SLP1 identity.
	v, err := encoding.SLP1ToVelthuis(got)
	require.NoError(t, err)
	assert.Equal(t, "agnii", v)
}

func TestVelthuisToSLP1_DotDigraphsUnaffected(t *testing.T) {
	got, err := encoding.VelthuisToSLP1(".m")
	require.NoError(t, err)
	assert.Equal(t, "M", got)

	got, err = encoding.VelthuisToSLP1(".h")
	require.NoError(t, err)
	assert.Equal(t, "H", got)
}

func TestSanskritUnrecognizedGraphemeErrors(t *testing.T) {
	_, err := encoding.IASTToSLP1("agn9")
	require.Error(t, err)
	var encErr *schema.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, schema.EncodingMalformed, encErr.Kind)
}

func TestGreekBetacodeRoundTrip_UpToFinalSigma(t *testing.T) {
	for _, bc := range []string{"lo/gos", "a)/nqrwpos", "path/", "*)agaqo/s"} {
		uni, err := encoding.BetacodeToUnicode(bc)
		require.NoError(t, err)
		back, err := encoding.UnicodeToBetacode(uni)
		require.NoError(t, err)
		uni2, err := encoding.BetacodeToUnicode(back)
		require.NoError(t, err)
		assert.Equal(t, uni, uni2, "stable after one normalization pass for %q", bc)
	}
}

func TestGreekFinalSigma(t *testing.T) {
	uni, err := encoding.BetacodeToUnicode("lo/gos")
	require.NoError(t, err)
	assert.Equal(t, "ς", string([]rune(uni)[len([]rune(uni))-1]))
}

func TestLatinFoldMacrons(t *testing.T) {
	folded := encoding.FoldMacrons("Vīta Rōmāna")
	assert.Equal(t, "vita romana", folded)
	for _, r := range folded {
		assert.Less(t, r, rune(128), "fold_macrons output must be ASCII")
	}
}

func TestLatinOrthographicVariants(t *testing.T) {
	variants := encoding.OrthographicVariants("iulius")
	assert.Contains(t, variants, "julius")
}

func TestDetect_Devanagari(t *testing.T) {
	d := encoding.Detect("अग्नि")
	assert.Equal(t, schema.Devanagari, d.Encoding)
	assert.Equal(t, 1.0, d.Confidence)
}

func TestDetect_IAST(t *testing.T) {
	d := encoding.Detect("kṛṣṇa")
	assert.Equal(t, schema.IAST, d.Encoding)
}

func TestDetect_SLP1(t *testing.T) {
	d := encoding.Detect("kfzRa")
	assert.Equal(t, schema.SLP1, d.Encoding)
	assert.Equal(t, 0.8, d.Confidence)
}

func TestDetect_GreekCodepoint(t *testing.T) {
	d := encoding.Detect("λόγος")
	assert.Equal(t, schema.Unicode, d.Encoding)
}

func TestDetect_Betacode(t *testing.T) {
	d := encoding.Detect("lo/gos")
	assert.Equal(t, schema.Betacode, d.Encoding)
}

func TestDetect_FallbackAscii(t *testing.T) {
	d := encoding.Detect("lupus")
	assert.Equal(t, schema.AsciiRoman, d.Encoding)
	assert.Equal(t, 0.5, d.Confidence)
}
