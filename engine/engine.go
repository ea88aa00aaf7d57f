// Package engine implements the Query Engine (C7): routing languages
// to backend adapters, concurrent fan-out with per-adapter timeouts,
// cache and fact-index integration, CTS URN enrichment, and
// deterministic response assembly (spec §4.7).
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/adapters"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/cache"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/ctsindex"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/factindex"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/normalize"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// lookupPredicates is the fixed predicate set C9 is consulted with
// before fan-out, per spec §4.9.
var lookupPredicates = []schema.Predicate{schema.HasGloss, schema.HasMorphology, schema.HasCitation}

// NormalizationMeta is the `_normalization` block of spec §6's
// response surface.
type NormalizationMeta struct {
	Original   string   `json:"original"`
	Canonical  string   `json:"canonical"`
	Confidence float64  `json:"confidence"`
	Notes      []string `json:"notes,omitempty"`
}

// AdapterErrorInfo is one `_errors` map value.
type AdapterErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the engine's response surface (spec §6).
type Result struct {
	Entries       []schema.DictionaryEntry          `json:"entries"`
	Normalization NormalizationMeta                 `json:"_normalization"`
	Errors        map[schema.Source]AdapterErrorInfo `json:"_errors,omitempty"`
	FromCache     bool                               `json:"_from_cache"`
}

// ComponentStatus is one row of Health's component list.
type ComponentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"` // healthy | degraded | unavailable
	Detail string `json:"detail,omitempty"`
}

const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// Engine wires together the storage layers (C5/C8/C9) and the
// per-language adapter routing table (C6), matching the Design
// Notes' instruction to pass an explicit wiring container into the
// engine at construction rather than relying on ambient singletons.
type Engine struct {
	cache      *cache.Cache
	factIndex  *factindex.Index
	ctsIndex   *ctsindex.Index
	routing    map[schema.Language][]adapters.Adapter
	normConfig normalize.Config

	adapterTimeout    time.Duration
	cacheEnabled      bool
	factIndexEnabled  bool
	storeRawResponses bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithCache wires the response cache (C5). Nil disables caching.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
		e.cacheEnabled = c != nil
	}
}

// WithFactIndex wires the fact index (C9) and enables lookup-first
// mode.
func WithFactIndex(idx *factindex.Index, enabled bool) Option {
	return func(e *Engine) {
		e.factIndex = idx
		e.factIndexEnabled = enabled && idx != nil
	}
}

// WithCTSIndex wires the CTS URN index (C8). Nil is valid: citations
// simply keep cts_urn empty (spec §4.8).
func WithCTSIndex(idx *ctsindex.Index) Option {
	return func(e *Engine) { e.ctsIndex = idx }
}

// WithRouting registers the adapters for one language, in priority
// order (spec §4.7's "fixed source priority per language").
func WithRouting(lang schema.Language, adapterList ...adapters.Adapter) Option {
	return func(e *Engine) {
		if e.routing == nil {
			e.routing = make(map[schema.Language][]adapters.Adapter)
		}
		e.routing[lang] = adapterList
	}
}

// WithNormalizeConfig sets the C3 configuration used for every
// request.
func WithNormalizeConfig(cfg normalize.Config) Option {
	return func(e *Engine) { e.normConfig = cfg }
}

// WithAdapterTimeout sets the per-adapter deadline (spec §4.7, default
// 5s).
func WithAdapterTimeout(d time.Duration) Option {
	return func(e *Engine) { e.adapterTimeout = d }
}

// WithStoreRawResponses gates whether raw adapter payloads are kept
// long enough for a later ExtractFacts call (spec §6).
func WithStoreRawResponses(enabled bool) Option {
	return func(e *Engine) { e.storeRawResponses = enabled }
}

// New constructs an Engine. Defaults: 5s adapter timeout, no cache, no
// fact index, no CTS index, normalization enabled.
func New(opts ...Option) *Engine {
	e := &Engine{
		routing:        make(map[schema.Language][]adapters.Adapter),
		normConfig:     normalize.DefaultConfig(),
		adapterTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query implements spec §4.7's request algorithm. refresh forces a
// fan-out even when the cache or fact index already has an answer.
func (e *Engine) Query(ctx context.Context, lang schema.Language, term string, refresh bool) (Result, error) {
	adapterList, ok := e.routing[lang]
	if !ok || len(adapterList) == 0 {
		return Result{}, &schema.QueryError{Kind: schema.QueryUnsupportedLanguage, Message: "no adapters registered for language"}
	}

	cq, err := normalize.Normalize(ctx, term, lang, e.normConfig)
	if err != nil {
		return Result{}, err
	}

	result, err := e.resolve(ctx, lang, cq, adapterList, refresh)
	if err != nil {
		return Result{}, err
	}

	if len(result.Entries) == 0 && !refresh && shouldRetryWithProbe(cq, lang) && e.normConfig.SanskritProber != nil {
		probedCfg := e.normConfig
		probedCfg.CanonicalProbeEnabled = true
		if probed, perr := normalize.Normalize(ctx, term, lang, probedCfg); perr == nil && probed.Canonical != cq.Canonical {
			Logger.Debug().Str("original", cq.Canonical).Str("probed", probed.Canonical).Msg("retrying sanskrit query with probed canonical form")
			retryResult, rerr := e.resolve(ctx, lang, probed, adapterList, true)
			if rerr == nil {
				return retryResult, nil
			}
		}
	}

	return result, nil
}

// shouldRetryWithProbe implements spec §4.7's normalization-fallback
// rule: only Sanskrit, only when the fast path produced an AsciiRoman
// guess, and only once per request (callers never call resolve() a
// third time).
func shouldRetryWithProbe(cq schema.CanonicalQuery, lang schema.Language) bool {
	return lang == schema.Sanskrit && cq.DetectedEncoding == schema.AsciiRoman
}

// resolve runs one full pass of the algorithm (cache/fact-index
// lookup, or fan-out) for an already-normalized query.
func (e *Engine) resolve(ctx context.Context, lang schema.Language, cq schema.CanonicalQuery, adapterList []adapters.Adapter, refresh bool) (Result, error) {
	key := cache.Key{Language: lang, Canonical: cq.Canonical}
	meta := NormalizationMeta{Original: cq.Original, Canonical: cq.Canonical, Confidence: cq.Confidence, Notes: cq.Notes}

	if e.cacheEnabled && !refresh {
		if entries, found, _ := e.cache.Get(ctx, key); found {
			return Result{Entries: entries, Normalization: meta, FromCache: true}, nil
		}
	}

	if e.factIndexEnabled && !refresh {
		if entries, ok := e.entriesFromFacts(ctx, cq.Canonical); ok {
			e.store(ctx, key, entries)
			return Result{Entries: entries, Normalization: meta}, nil
		}
	}

	entries, errs, provenances, raws := e.fanOut(ctx, adapterList, cq)
	e.enrichCitations(ctx, entries)

	if e.factIndexEnabled {
		e.writeFacts(ctx, adapterList, raws, provenances)
	}

	e.store(ctx, key, entries)

	return Result{Entries: entries, Normalization: meta, Errors: errs}, nil
}

// fanOut runs every adapter for the language concurrently, each under
// its own timeout, isolating failures into the _errors map (spec §5
// and §4.7 step 3-4). Ordering of entries follows the adapters'
// registration order (fixed source priority), then each adapter's own
// emission order.
func (e *Engine) fanOut(ctx context.Context, adapterList []adapters.Adapter, cq schema.CanonicalQuery) (
	entries []schema.DictionaryEntry,
	errs map[schema.Source]AdapterErrorInfo,
	provenances map[schema.Source]schema.ProvenanceRecord,
	raws map[schema.Source]string,
) {
	type slot struct {
		result adapters.Result
		err    error
	}
	slots := make([]slot, len(adapterList))

	grp, _ := errgroup.WithContext(ctx)
	for i, a := range adapterList {
		i, a := i, a
		grp.Go(func() error {
			adapterCtx, cancel := context.WithTimeout(ctx, e.adapterTimeout)
			defer cancel()
			res, err := a.Query(adapterCtx, cq)
			slots[i] = slot{result: res, err: err}
			return nil
		})
	}
	_ = grp.Wait()

	errs = make(map[schema.Source]AdapterErrorInfo)
	provenances = make(map[schema.Source]schema.ProvenanceRecord)
	raws = make(map[schema.Source]string)

	for i, a := range adapterList {
		s := slots[i]
		source := a.Source()
		if s.err != nil {
			errs[source] = adapterErrorInfo(s.err)
			continue
		}
		entries = append(entries, s.result.Entries...)
		if e.storeRawResponses || e.factIndexEnabled {
			raws[source] = s.result.Raw
			provenances[source] = newProvenance(source, cq.Canonical)
		}
	}

	// Entries are already in the order spec §4.7 requires: grouped by
	// adapter registration order (fixed source priority), then each
	// adapter's own emission order. A same-priority tie can only arise
	// between two entries from the very same adapter call, which the
	// adapter itself is responsible for ordering; no further sort is
	// applied here.

	if len(errs) == 0 {
		errs = nil
	}
	return entries, errs, provenances, raws
}

func adapterErrorInfo(err error) AdapterErrorInfo {
	if ae, ok := err.(*schema.AdapterError); ok {
		return AdapterErrorInfo{Kind: string(ae.Kind), Message: ae.Message}
	}
	return AdapterErrorInfo{Kind: string(schema.AdapterTransport), Message: err.Error()}
}

func newProvenance(source schema.Source, rawRef string) schema.ProvenanceRecord {
	now := time.Now()
	return schema.ProvenanceRecord{
		ProvenanceID: schema.NewProvenanceID(source, "", rawRef, now),
		Source:       source,
		RawRef:       rawRef,
		ExtractedAt:  now,
		Metadata:     map[string]any{},
	}
}

// writeFacts re-runs ExtractFacts over each adapter's raw response and
// writes the result plus its provenance into C9 in a single
// transaction (spec §4.9).
func (e *Engine) writeFacts(ctx context.Context, adapterList []adapters.Adapter, raws map[schema.Source]string, provenances map[schema.Source]schema.ProvenanceRecord) {
	var facts []schema.Fact
	var provenanceRows []schema.ProvenanceRecord

	for _, a := range adapterList {
		raw, ok := raws[a.Source()]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		prov := provenances[a.Source()]
		extracted, err := a.ExtractFacts(ctx, raw, prov)
		if err != nil {
			Logger.Warn().Err(err).Str("source", string(a.Source())).Msg("extract_facts failed")
			continue
		}
		if len(extracted) == 0 {
			continue
		}
		facts = append(facts, extracted...)
		provenanceRows = append(provenanceRows, prov)
	}

	if len(facts) == 0 {
		return
	}
	if err := e.factIndex.WriteFacts(ctx, facts, provenanceRows); err != nil {
		Logger.Warn().Err(err).Msg("failed to persist facts")
	}
}

// enrichCitations fills cts_urn on any citation whose source_ref names
// a resolvable author/work abbreviation (spec §4.7 step 6).
func (e *Engine) enrichCitations(ctx context.Context, entries []schema.DictionaryEntry) {
	if e.ctsIndex == nil {
		return
	}
	for i := range entries {
		for j := range entries[i].Citations {
			c := &entries[i].Citations[j]
			if c.CTSURN != "" {
				continue
			}
			abbrev := citationAbbrev(c.SourceRef)
			if abbrev == "" {
				continue
			}
			if urn, ok := e.ctsIndex.Resolve(ctx, abbrev); ok {
				c.CTSURN = urn
			}
		}
	}
}

// citationAbbrev extracts the author/work abbreviation prefix from a
// source_ref of the shape "abbrev 1.2.3" or "abbrev:1.2.3".
func citationAbbrev(sourceRef string) string {
	sourceRef = strings.TrimSpace(sourceRef)
	if sourceRef == "" {
		return ""
	}
	cut := strings.IndexAny(sourceRef, " :")
	if cut < 0 {
		return sourceRef
	}
	return sourceRef[:cut]
}

// store writes entries to the cache under key, best-effort.
func (e *Engine) store(ctx context.Context, key cache.Key, entries []schema.DictionaryEntry) {
	if !e.cacheEnabled {
		return
	}
	if err := e.cache.Put(ctx, key, entries); err != nil {
		Logger.Warn().Err(err).Msg("failed to write cache entry")
	}
}

// Health reports the reachability of every wired component (spec §6).
func (e *Engine) Health(ctx context.Context) []ComponentStatus {
	var statuses []ComponentStatus

	statuses = append(statuses, storageStatus("cache", e.cacheEnabled, func() error {
		_, err := e.cache.Stats(ctx)
		return err
	}))

	if e.factIndexEnabled {
		statuses = append(statuses, storageStatus("fact_index", true, func() error {
			_, err := e.factIndex.Lookup(ctx, "__health_probe__", lookupPredicates)
			return err
		}))
	} else {
		statuses = append(statuses, ComponentStatus{Name: "fact_index", Status: StatusUnavailable, Detail: "disabled"})
	}

	if e.ctsIndex != nil {
		statuses = append(statuses, ComponentStatus{Name: "cts_index", Status: StatusHealthy})
	} else {
		statuses = append(statuses, ComponentStatus{Name: "cts_index", Status: StatusUnavailable, Detail: "index not present"})
	}

	for lang, adapterList := range e.routing {
		for _, a := range adapterList {
			statuses = append(statuses, ComponentStatus{Name: string(a.Source()), Status: StatusHealthy, Detail: "registered for " + string(lang)})
		}
	}

	return statuses
}

func storageStatus(name string, enabled bool, probe func() error) ComponentStatus {
	if !enabled {
		return ComponentStatus{Name: name, Status: StatusUnavailable, Detail: "disabled"}
	}
	if err := probe(); err != nil {
		return ComponentStatus{Name: name, Status: StatusDegraded, Detail: err.Error()}
	}
	return ComponentStatus{Name: name, Status: StatusHealthy}
}

// CacheStats exposes C5's aggregate for the CLI/HTTP surface.
func (e *Engine) CacheStats(ctx context.Context) (cache.Stats, error) {
	if !e.cacheEnabled {
		return cache.Stats{}, nil
	}
	return e.cache.Stats(ctx)
}

// CacheClear clears the cache, optionally scoped to one language.
func (e *Engine) CacheClear(ctx context.Context, lang schema.Language) (int64, error) {
	if !e.cacheEnabled {
		return 0, nil
	}
	if lang != schema.Unrouted {
		return e.cache.ClearByLanguage(ctx, lang)
	}
	var total int64
	for l := range e.routing {
		n, err := e.cache.ClearByLanguage(ctx, l)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
