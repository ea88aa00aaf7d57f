// Package normalize implements the per-language query normalizer (C3):
// it turns raw user input into a schema.CanonicalQuery, using the
// transliteration kernel (package encoding) for syntactic conversion
// and an optional external probe for Sanskrit enrichment.
package normalize

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Logger is the package-level logger, silent by default. Callers wire
// it up the same way the teacher package does: assign before use.
var Logger = zerolog.Nop()

// Prober is an external best-effort enrichment lookup. HTTPProber, the
// Sanskrit canonical probe, implements it over its own pooled HTTP
// client; the Heritage adapter does its morphology lookup separately
// and does not use this interface.
type Prober interface {
	// Probe attempts to recover a canonical/enriched form of token.
	// Implementations must respect ctx cancellation and must never
	// panic: callers treat any returned error as a soft failure.
	Probe(ctx context.Context, token string) (string, error)
}

// Config controls normalizer behavior, mirroring spec §6's
// configuration table.
type Config struct {
	// Enabled, when false, makes Normalize a passthrough: canonical
	// equals the lowercased raw input and no alternates are generated.
	Enabled bool

	// CanonicalProbeEnabled gates the Sanskrit external probe.
	CanonicalProbeEnabled bool

	// SanskritProber performs the external canonical-lookup. May be
	// nil; a nil prober is treated the same as CanonicalProbeEnabled
	// being false.
	SanskritProber Prober
}

// DefaultConfig returns a Config with normalization on and the probe
// disabled (no prober wired by default — callers supply one).
func DefaultConfig() Config {
	return Config{Enabled: true, CanonicalProbeEnabled: false}
}

// Normalize dispatches to the per-language normalizer. It is the
// single entry point the query engine (C7) calls.
func Normalize(ctx context.Context, raw string, lang schema.Language, cfg Config) (schema.CanonicalQuery, error) {
	if strings.TrimSpace(raw) == "" {
		return schema.CanonicalQuery{}, &schema.NormalizationError{Kind: schema.NormalizationEmpty}
	}

	if !cfg.Enabled {
		canonical := strings.ToLower(raw)
		return schema.NewCanonicalQuery(raw, lang, canonical, schema.AsciiRoman, 1.0,
			[]string{"normalization_disabled"})
	}

	switch lang {
	case schema.Sanskrit:
		return normalizeSanskrit(ctx, raw, cfg)
	case schema.Greek:
		return normalizeGreek(raw)
	case schema.Latin:
		return normalizeLatin(raw)
	default:
		return schema.CanonicalQuery{}, &schema.NormalizationError{Kind: schema.NormalizationUnsupportedLanguage}
	}
}
