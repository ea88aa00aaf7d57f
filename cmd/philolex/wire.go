package main

import (
	"fmt"
	"os"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/adapters"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/cache"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/config"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/ctsindex"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/engine"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/factindex"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/normalize"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// app bundles the engine with the storage handles it owns, so the CLI
// can close them on exit (Design Notes: "teardown flushes and closes
// them").
type app struct {
	engine *engine.Engine
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			fmt.Fprintln(os.Stderr, "philolex: cleanup error:", err)
		}
	}
}

// buildApp wires every storage layer and adapter named in SPEC_FULL's
// routing table, in the fixed priority order spec §4.7 requires.
func buildApp(cfg config.Config) (*app, error) {
	a := &app{}

	opts := []engine.Option{
		engine.WithAdapterTimeout(cfg.AdapterTimeout()),
		engine.WithStoreRawResponses(cfg.StoreRawResponses),
	}

	if cfg.CacheEnabled {
		c, err := cache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("philolex: failed to open cache: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		opts = append(opts, engine.WithCache(c))
	}

	if cfg.FactIndexEnabled {
		fi, err := factindex.Open(cfg.FactIndexPath)
		if err != nil {
			return nil, fmt.Errorf("philolex: failed to open fact index: %w", err)
		}
		a.closers = append(a.closers, fi.Close)
		opts = append(opts, engine.WithFactIndex(fi, true))
	}

	cts, err := ctsindex.Open(cfg.CTSIndexPath)
	if err != nil {
		return nil, fmt.Errorf("philolex: failed to open cts index: %w", err)
	}
	if cts != nil {
		a.closers = append(a.closers, cts.Close)
	}
	opts = append(opts, engine.WithCTSIndex(cts))

	normCfg := normalize.Config{
		Enabled:               cfg.NormalizationEnabled,
		CanonicalProbeEnabled: cfg.CanonicalProbeEnabled,
	}
	if cfg.Upstreams.CanonicalProbeBaseURL != "" {
		normCfg.SanskritProber = normalize.NewHTTPProber(
			cfg.Upstreams.CanonicalProbeBaseURL,
			cfg.Upstreams.CanonicalProbeLex,
			cfg.CanonicalProbePoolSize,
			cfg.AdapterTimeout(),
		)
	}
	opts = append(opts, engine.WithNormalizeConfig(normCfg))

	latinAdapters, err := buildLatinAdapters(cfg)
	if err != nil {
		return nil, err
	}
	greekAdapters := buildGreekAdapters(cfg)
	sanskritAdapters, closeCDSL, err := buildSanskritAdapters(cfg)
	if err != nil {
		return nil, err
	}
	if closeCDSL != nil {
		a.closers = append(a.closers, closeCDSL)
	}

	opts = append(opts,
		engine.WithRouting(schema.Latin, latinAdapters...),
		engine.WithRouting(schema.Greek, greekAdapters...),
		engine.WithRouting(schema.Sanskrit, sanskritAdapters...),
	)

	a.engine = engine.New(opts...)
	return a, nil
}

// buildLatinAdapters returns {Diogenes-Latin, Whitaker's, CLTK-Latin}
// in that priority order (spec §4.7).
func buildLatinAdapters(cfg config.Config) ([]adapters.Adapter, error) {
	var list []adapters.Adapter
	if cfg.Upstreams.DiogenesBaseURL != "" {
		list = append(list, adapters.NewDiogenesLatin(cfg.Upstreams.DiogenesBaseURL, cfg.AdapterTimeout()))
	}
	whitakersOpts := []adapters.WhitakersOption{}
	if cfg.Upstreams.WhitakersBinary != "" {
		whitakersOpts = append(whitakersOpts, adapters.WithWhitakersBinary(cfg.Upstreams.WhitakersBinary))
	}
	list = append(list, adapters.NewWhitakers(whitakersOpts...))
	list = append(list, adapters.NewCLTKLatin(adapters.UnavailableCLTKBackend{}))
	return list, nil
}

// buildGreekAdapters returns {Diogenes-Greek, CLTK-Greek}.
func buildGreekAdapters(cfg config.Config) []adapters.Adapter {
	var list []adapters.Adapter
	if cfg.Upstreams.DiogenesBaseURL != "" {
		list = append(list, adapters.NewDiogenesGreek(cfg.Upstreams.DiogenesBaseURL, cfg.AdapterTimeout()))
	}
	list = append(list, adapters.NewCLTKGreek(adapters.UnavailableCLTKBackend{}))
	return list
}

// buildSanskritAdapters returns {CDSL, Heritage}. CDSL is omitted when
// its index file is absent (spec §6 treats a missing CDSL index the
// same way it treats a missing CTS index: a degraded, not broken,
// deployment).
func buildSanskritAdapters(cfg config.Config) ([]adapters.Adapter, func() error, error) {
	var list []adapters.Adapter
	var closeFn func() error

	if cfg.CDSLIndexPath != "" {
		if _, err := os.Stat(cfg.CDSLIndexPath); err == nil {
			idx, err := adapters.OpenCDSLIndex(cfg.CDSLIndexPath)
			if err != nil {
				return nil, nil, fmt.Errorf("philolex: failed to open cdsl index: %w", err)
			}
			list = append(list, adapters.NewCDSL(idx))
			closeFn = idx.Close
		}
	}
	if cfg.Upstreams.HeritageBaseURL != "" {
		list = append(list, adapters.NewHeritage(cfg.Upstreams.HeritageBaseURL, cfg.AdapterTimeout()))
	}
	return list, closeFn, nil
}
