package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/parse"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// diogenesBlockBoundary splits a Diogenes response's concatenated
// dictionary blocks on one or more blank lines between entries, the
// way the upstream CGI service paragraph-breaks successive headword
// blocks.
var diogenesBlockBoundary = regexp.MustCompile(`\n{2,}`)

// DiogenesLatin talks to the local Diogenes service for the Latin
// dictionary-entry view, which renders Lewis & Short style blocks
// (spec §4.4.3); results are still tagged schema.SourceDiogenesLatin,
// per SPEC_FULL's "Lewis & Short's own grammar is selected when
// Diogenes is asked for the Latin dictionary-entry view."
type DiogenesLatin struct {
	client  *http.Client
	baseURL string
}

// NewDiogenesLatin constructs the Latin adapter against a local
// Diogenes service.
func NewDiogenesLatin(baseURL string, timeout time.Duration) *DiogenesLatin {
	return &DiogenesLatin{baseURL: baseURL, client: newUpstreamClient(timeout)}
}

func (a *DiogenesLatin) Source() schema.Source { return schema.SourceDiogenesLatin }

func (a *DiogenesLatin) Query(ctx context.Context, cq schema.CanonicalQuery) (Result, error) {
	raw, err := fetchDiogenes(ctx, a.client, a.baseURL, "lat", cq.Canonical)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return Result{Raw: raw}, nil
	}

	blocks := diogenesBlockBoundary.Split(strings.TrimSpace(raw), -1)
	parsed := make([]schema.ParsedEntry, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		entry := parse.Parse(schema.SourceLewisShort, schema.Latin, block)
		parsed = append(parsed, entry)
	}

	return Result{Entries: entriesFromParsed(parsed, schema.SourceDiogenesLatin, false), Raw: raw}, nil
}

func (a *DiogenesLatin) ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error) {
	return extractDiogenesFacts(raw, schema.SourceLewisShort, schema.SourceDiogenesLatin, schema.Latin, provenance.ProvenanceID)
}

// DiogenesGreek talks to the local Diogenes service for LSJ-style
// sense blocks (spec §4.4.2).
type DiogenesGreek struct {
	client  *http.Client
	baseURL string
}

// NewDiogenesGreek constructs the Greek adapter.
func NewDiogenesGreek(baseURL string, timeout time.Duration) *DiogenesGreek {
	return &DiogenesGreek{baseURL: baseURL, client: newUpstreamClient(timeout)}
}

func (a *DiogenesGreek) Source() schema.Source { return schema.SourceDiogenesGreek }

func (a *DiogenesGreek) Query(ctx context.Context, cq schema.CanonicalQuery) (Result, error) {
	raw, err := fetchDiogenes(ctx, a.client, a.baseURL, "grc", cq.Canonical)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return Result{Raw: raw}, nil
	}

	parsed := parseDiogenesSenseBlocks(raw, schema.SourceDiogenesGreek, schema.Greek, cq.Canonical)
	return Result{Entries: entriesFromParsed(parsed, schema.SourceDiogenesGreek, false), Raw: raw}, nil
}

func (a *DiogenesGreek) ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error) {
	return extractDiogenesFacts(raw, schema.SourceDiogenesGreek, schema.SourceDiogenesGreek, schema.Greek, provenance.ProvenanceID)
}

// parseDiogenesSenseBlocks splits a Greek Diogenes response into
// per-sense blocks and parses each one; since the §4.4.2 grammar
// carries no headword field of its own, the adapter assigns the
// queried headword to every resulting entry (the engine joins by
// headword+source, and every block here shares the same query).
func parseDiogenesSenseBlocks(raw string, source schema.Source, lang schema.Language, headword string) []schema.ParsedEntry {
	blocks := diogenesBlockBoundary.Split(strings.TrimSpace(raw), -1)
	parsed := make([]schema.ParsedEntry, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		entry := parse.Parse(source, lang, block)
		if entry.Headword == "" {
			entry.Headword = headword
		}
		parsed = append(parsed, entry)
	}
	return parsed
}

// extractDiogenesFacts re-runs the stored raw response through the
// given grammar, exactly as Query does, and projects the resulting
// parsed entries into facts (spec §4.9).
func extractDiogenesFacts(raw string, grammarSource, toolSource schema.Source, lang schema.Language, provenanceID string) ([]schema.Fact, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	blocks := diogenesBlockBoundary.Split(strings.TrimSpace(raw), -1)
	var facts []schema.Fact
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		entry := parse.Parse(grammarSource, lang, block)
		facts = append(facts, factsFromParsed(entry, toolSource, provenanceID)...)
	}
	return facts, nil
}

func fetchDiogenes(ctx context.Context, client *http.Client, baseURL, langCode, term string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", &schema.AdapterError{Source: sourceForLang(langCode), Kind: schema.AdapterProtocol, Message: "invalid base URL", Err: err}
	}
	q := u.Query()
	q.Set("lang", langCode)
	q.Set("q", term)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &schema.AdapterError{Source: sourceForLang(langCode), Kind: schema.AdapterProtocol, Message: "request build failed", Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		kind := schema.AdapterTransport
		if ctx.Err() != nil {
			kind = schema.AdapterTimeout
		}
		return "", &schema.AdapterError{Source: sourceForLang(langCode), Kind: kind, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &schema.AdapterError{Source: sourceForLang(langCode), Kind: schema.AdapterTransport, Message: "failed to read response", Err: err}
	}
	if resp.StatusCode >= 400 {
		return "", &schema.AdapterError{Source: sourceForLang(langCode), Kind: schema.AdapterProtocol, Message: fmt.Sprintf("upstream returned %d", resp.StatusCode)}
	}
	return string(body), nil
}

func sourceForLang(langCode string) schema.Source {
	if langCode == "grc" {
		return schema.SourceDiogenesGreek
	}
	return schema.SourceDiogenesLatin
}

func newUpstreamClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
