package adapters

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Whitakers is the C6 adapter for Whitaker's Words, invoked as a local
// subprocess with one query per invocation (spec §6): input via stdin,
// output via stdout. It carries no C4 grammar of its own — its output
// is already field-delimited — so it builds schema.DictionaryEntry
// directly, the same way CLTK's in-process wrapper does.
//
// Lifecycle is grounded on the teacher's docker.go pattern (functional
// options, mutex-guarded ready state) with os/exec in place of Docker,
// since both are "a local resource whose readiness must be polled
// before querying" — here readiness is just "the binary resolves via
// exec.LookPath", checked once lazily rather than polled over a
// network port.
type Whitakers struct {
	binary string
	mu     sync.Mutex
	ready  bool
}

// WhitakersOption configures a Whitakers adapter.
type WhitakersOption func(*Whitakers)

// WithWhitakersBinary overrides the default "words" binary name/path.
func WithWhitakersBinary(path string) WhitakersOption {
	return func(w *Whitakers) { w.binary = path }
}

// NewWhitakers constructs the adapter. binary defaults to "words" on
// PATH.
func NewWhitakers(opts ...WhitakersOption) *Whitakers {
	w := &Whitakers{binary: "words"}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (a *Whitakers) Source() schema.Source { return schema.SourceWhitakers }

// ensureReady verifies the binary is resolvable, exactly once,
// mirroring the teacher's mutex-guarded serviceReady flag.
func (a *Whitakers) ensureReady() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	if _, err := exec.LookPath(a.binary); err != nil {
		return fmt.Errorf("whitakers: binary %q not found: %w", a.binary, err)
	}
	a.ready = true
	return nil
}

func (a *Whitakers) Query(ctx context.Context, cq schema.CanonicalQuery) (Result, error) {
	if err := a.ensureReady(); err != nil {
		return Result{}, &schema.AdapterError{Source: schema.SourceWhitakers, Kind: schema.AdapterTransport, Message: "service not ready", Err: err}
	}

	cmd := exec.CommandContext(ctx, a.binary)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Result{}, &schema.AdapterError{Source: schema.SourceWhitakers, Kind: schema.AdapterProtocol, Message: "failed to open stdin", Err: err}
	}
	var stdout strings.Builder
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return Result{}, &schema.AdapterError{Source: schema.SourceWhitakers, Kind: schema.AdapterTransport, Message: "failed to start subprocess", Err: err}
	}

	fmt.Fprintln(stdin, cq.Canonical)
	stdin.Close()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		return Result{}, &schema.AdapterError{Source: schema.SourceWhitakers, Kind: schema.AdapterTimeout, Message: "subprocess timed out"}
	case err := <-done:
		if err != nil {
			return Result{}, &schema.AdapterError{Source: schema.SourceWhitakers, Kind: schema.AdapterProtocol, Message: "subprocess failed", Err: err}
		}
	}

	raw := stdout.String()
	entries := parseWhitakersOutput(raw, cq)
	return Result{Entries: entries, Raw: raw}, nil
}

func (a *Whitakers) ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error) {
	entries := parseWhitakersOutput(raw, schema.CanonicalQuery{Language: schema.Latin})
	var facts []schema.Fact
	for _, e := range entries {
		for _, d := range e.Definitions {
			facts = append(facts, schema.Fact{
				FactID:       schema.NewFactID(schema.SourceWhitakers, e.Headword, schema.HasGloss, e.Headword+"|"+d.Definition),
				Tool:         schema.SourceWhitakers,
				FactType:     schema.FactSense,
				Subject:      e.Headword,
				Predicate:    schema.HasGloss,
				Payload:      map[string]any{"gloss": d.Definition},
				ProvenanceID: provenance.ProvenanceID,
			})
		}
		if e.Morphology != nil {
			facts = append(facts, schema.Fact{
				FactID:       schema.NewFactID(schema.SourceWhitakers, e.Headword, schema.HasMorphology, e.Headword),
				Tool:         schema.SourceWhitakers,
				FactType:     schema.FactMorph,
				Subject:      e.Headword,
				Predicate:    schema.HasMorphology,
				Payload:      map[string]any{"lemma": e.Morphology.Lemma, "pos": e.Morphology.POS, "features": e.Morphology.Features},
				ProvenanceID: provenance.ProvenanceID,
			})
		}
	}
	return facts, nil
}

// parseWhitakersOutput parses Whitaker's Words' already
// field-delimited stdout: one headword line (word forms + part of
// speech in brackets), followed by indented gloss lines, entries
// separated by a blank line. This is a thin field-splitter, not a
// spec §4.4 grammar, since Whitaker's output needs no further grammar
// work (SPEC_FULL §4.4's "[EXPANSION]" on Whitaker's/CLTK).
func parseWhitakersOutput(raw string, cq schema.CanonicalQuery) []schema.DictionaryEntry {
	var entries []schema.DictionaryEntry
	scanner := bufio.NewScanner(strings.NewReader(raw))

	var headword, pos string
	var glosses []string

	flush := func() {
		if headword == "" {
			return
		}
		entries = append(entries, schema.DictionaryEntry{
			Source:   schema.SourceWhitakers,
			Headword: headword,
			Language: schema.Latin,
			Definitions: []schema.DictionaryDefinition{{
				Definition:    strings.Join(glosses, "; "),
				POS:           pos,
				InheritedFrom: string(schema.SourceWhitakers),
			}},
			Morphology: &schema.MorphologyInfo{
				Lemma:      headword,
				POS:        pos,
				Features:   map[string]string{},
				Confidence: 1.0,
			},
		})
		headword, pos = "", ""
		glosses = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			flush()
			fields := strings.Fields(trimmed)
			if len(fields) == 0 {
				continue
			}
			headword = fields[0]
			if idx := strings.Index(trimmed, "["); idx >= 0 {
				if end := strings.Index(trimmed[idx:], "]"); end >= 0 {
					pos = strings.Fields(trimmed[idx+1 : idx+end])[0]
				}
			}
			continue
		}
		glosses = append(glosses, trimmed)
	}
	flush()

	if len(entries) == 0 {
		return nil
	}
	return entries
}
