package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// CLTKBackend is the narrow surface a CLTK in-process wrapper must
// provide: lemmatize + POS-tag a single token for one language. The
// real implementation talks to the CLTK Python library through
// whatever binding the deployment provides (cgo, a gRPC sidecar, a
// subprocess pool); go-philolex never imports CLTK directly, matching
// SPEC_FULL's "invoked as an in-process library via a stable wrapper;
// no network" note — the wrapper is supplied by the caller.
type CLTKBackend interface {
	Analyze(ctx context.Context, lang schema.Language, token string) (CLTKAnalysis, error)
}

// UnavailableCLTKBackend is the default CLTKBackend when no real
// binding has been wired: Analyze always returns an error, which
// CLTK.Query reports as an AdapterProtocol failure, so the routing table can still list cltk-latin/cltk-greek (spec
// §4.7) without a deployment needing a working CLTK binding.
type UnavailableCLTKBackend struct{}

func (UnavailableCLTKBackend) Analyze(ctx context.Context, lang schema.Language, token string) (CLTKAnalysis, error) {
	return CLTKAnalysis{}, fmt.Errorf("cltk backend not configured")
}

// CLTKAnalysis is what a CLTKBackend returns for one token.
type CLTKAnalysis struct {
	Lemma    string
	POS      string
	Features map[string]string
	Glosses  []string
}

// CLTK is the C6 adapter wrapping a CLTKBackend for either Latin or
// Greek, selected at construction (spec lists cltk-latin and
// cltk-greek as distinct sources, both backed by the same library).
type CLTK struct {
	backend  CLTKBackend
	language schema.Language
	source   schema.Source
}

// NewCLTKLatin constructs the Latin-facing CLTK adapter.
func NewCLTKLatin(backend CLTKBackend) *CLTK {
	return &CLTK{backend: backend, language: schema.Latin, source: schema.SourceCLTKLatin}
}

// NewCLTKGreek constructs the Greek-facing CLTK adapter.
func NewCLTKGreek(backend CLTKBackend) *CLTK {
	return &CLTK{backend: backend, language: schema.Greek, source: schema.SourceCLTKGreek}
}

func (a *CLTK) Source() schema.Source { return a.source }

func (a *CLTK) Query(ctx context.Context, cq schema.CanonicalQuery) (Result, error) {
	analysis, err := a.backend.Analyze(ctx, a.language, cq.Canonical)
	if err != nil {
		return Result{}, &schema.AdapterError{Source: a.source, Kind: schema.AdapterProtocol, Message: "cltk analysis failed", Err: err}
	}
	if analysis.Lemma == "" {
		return Result{}, nil
	}

	entry := cltkDictionaryEntry(a.source, a.language, cq.Canonical, analysis)
	raw := cltkEncodeRaw(cq.Canonical, analysis)
	return Result{Entries: []schema.DictionaryEntry{entry}, Raw: raw}, nil
}

func (a *CLTK) ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error) {
	token, analysis, ok := cltkDecodeRaw(raw)
	if !ok {
		return nil, nil
	}

	var facts []schema.Fact
	facts = append(facts, schema.Fact{
		FactID:       schema.NewFactID(a.source, token, schema.HasMorphology, token),
		Tool:         a.source,
		FactType:     schema.FactMorph,
		Subject:      token,
		Predicate:    schema.HasMorphology,
		Payload:      map[string]any{"lemma": analysis.Lemma, "pos": analysis.POS, "features": analysis.Features},
		ProvenanceID: provenance.ProvenanceID,
	})
	for _, gloss := range analysis.Glosses {
		facts = append(facts, schema.Fact{
			FactID:       schema.NewFactID(a.source, token, schema.HasGloss, token+"|"+gloss),
			Tool:         a.source,
			FactType:     schema.FactSense,
			Subject:      token,
			Predicate:    schema.HasGloss,
			Payload:      map[string]any{"gloss": gloss},
			ProvenanceID: provenance.ProvenanceID,
		})
	}
	return facts, nil
}

func cltkDictionaryEntry(source schema.Source, lang schema.Language, token string, a CLTKAnalysis) schema.DictionaryEntry {
	de := schema.DictionaryEntry{
		Source:   source,
		Headword: analysisHeadword(token, a),
		Language: lang,
		Morphology: &schema.MorphologyInfo{
			Lemma:      a.Lemma,
			POS:        a.POS,
			Features:   a.Features,
			Confidence: 1.0,
		},
	}
	for _, gloss := range a.Glosses {
		de.Definitions = append(de.Definitions, schema.DictionaryDefinition{
			Definition:    gloss,
			POS:           a.POS,
			InheritedFrom: string(source),
		})
	}
	return de
}

func analysisHeadword(token string, a CLTKAnalysis) string {
	if a.Lemma != "" {
		return a.Lemma
	}
	return token
}

// cltkRawPayload is the JSON shape stored as Result.Raw, so
// ExtractFacts can recover the full analysis without ever calling
// back into the backend (spec §4.9: re-extraction must not re-invoke
// upstream).
type cltkRawPayload struct {
	Token    string       `json:"token"`
	Analysis CLTKAnalysis `json:"analysis"`
}

func cltkEncodeRaw(token string, a CLTKAnalysis) string {
	b, err := json.Marshal(cltkRawPayload{Token: token, Analysis: a})
	if err != nil {
		return ""
	}
	return string(b)
}

func cltkDecodeRaw(raw string) (string, CLTKAnalysis, bool) {
	var payload cltkRawPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", CLTKAnalysis{}, false
	}
	return payload.Token, payload.Analysis, true
}
