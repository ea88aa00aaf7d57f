package normalize

import (
	"context"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/encoding"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// normalizeSanskrit implements spec §4.3's Sanskrit rule: NFC, detect,
// convert to SLP1, generate the four alternate encodings, and
// optionally enrich bare ASCII via the external canonical probe.
func normalizeSanskrit(ctx context.Context, raw string, cfg Config) (schema.CanonicalQuery, error) {
	var notes []string

	nfc := norm.NFC.String(raw)
	notes = append(notes, "nfc_normalized")

	det := encoding.Detect(nfc)
	notes = append(notes, "detected:"+string(det.Encoding))

	slp1, err := toSLP1(nfc, det.Encoding)
	if err != nil {
		return schema.CanonicalQuery{}, &schema.NormalizationError{Kind: schema.NormalizationProbeFailed, Err: err}
	}
	notes = append(notes, "converted_to_slp1")
	confidence := det.Confidence

	if det.Encoding == schema.AsciiRoman && plausibleSanskritShape(nfc) {
		if isFastPathSLP1(slp1) {
			notes = append(notes, "probe_skipped_fast_path")
		} else if cfg.CanonicalProbeEnabled && cfg.SanskritProber != nil {
			probed, err := cfg.SanskritProber.Probe(ctx, slp1)
			if err != nil {
				Logger.Debug().Err(err).Str("token", slp1).Msg("sanskrit canonical probe failed")
				notes = append(notes, "probe_failed")
				confidence -= 0.3
				if confidence < 0 {
					confidence = 0
				}
			} else {
				devSLP1, convErr := encoding.DevanagariToSLP1(probed)
				if convErr == nil && devSLP1 != "" {
					slp1 = devSLP1
					notes = append(notes, "enriched_via_external_probe")
				} else {
					notes = append(notes, "probe_failed")
					confidence -= 0.3
					if confidence < 0 {
						confidence = 0
					}
				}
			}
		}
	}

	alternates, err := sanskritAlternates(slp1)
	if err != nil {
		return schema.CanonicalQuery{}, &schema.NormalizationError{Kind: schema.NormalizationProbeFailed, Err: err}
	}

	return schema.NewCanonicalQuery(raw, schema.Sanskrit, slp1, det.Encoding, confidence, notes, alternates...)
}

// toSLP1 converts nfc to SLP1 from its detected source encoding.
func toSLP1(nfc string, enc schema.Encoding) (string, error) {
	switch enc {
	case schema.Devanagari:
		return encoding.DevanagariToSLP1(nfc)
	case schema.IAST:
		return encoding.IASTToSLP1(nfc)
	case schema.Velthuis:
		return encoding.VelthuisToSLP1(nfc)
	case schema.HK:
		return encoding.HKToSLP1(nfc)
	case schema.SLP1:
		return nfc, nil
	default:
		// AsciiRoman: treated as already-plausible SLP1 text, since
		// SLP1 deliberately overlaps with plain ASCII for the most
		// common phonemes (spec §4.2 rule 3 only distinguishes SLP1
		// from AsciiRoman by the presence of SLP1-only capitals).
		return nfc, nil
	}
}

// sanskritAlternates generates the four alternate encodings required
// by spec §4.3(d).
func sanskritAlternates(slp1 string) ([]string, error) {
	dev, err := encoding.SLP1ToDevanagari(slp1)
	if err != nil {
		return nil, err
	}
	iast, err := encoding.SLP1ToIAST(slp1)
	if err != nil {
		return nil, err
	}
	velthuis, err := encoding.SLP1ToVelthuis(slp1)
	if err != nil {
		return nil, err
	}
	hk, err := encoding.SLP1ToHK(slp1)
	if err != nil {
		return nil, err
	}
	return []string{dev, iast, velthuis, hk}, nil
}

// plausibleSanskritShape implements spec §4.3(e): length 2-24, all
// lowercase letters.
func plausibleSanskritShape(s string) bool {
	runes := []rune(s)
	if len(runes) < 2 || len(runes) > 24 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLower(r) || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isFastPathSLP1 implements spec §4.3(e)'s fast path: short, lowercase,
// already-plausible SLP1 tokens skip the probe entirely. The worked
// example in spec §8 treats the 4-letter "agni" as fast-pathed, so the
// threshold used here is len <= 4 rather than the stricter len <= 3
// read in isolation from §4.3(e)'s prose — see DESIGN.md's resolved
// Open Questions for the reasoning.
func isFastPathSLP1(slp1 string) bool {
	if len(slp1) > 4 {
		return false
	}
	for _, r := range slp1 {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
