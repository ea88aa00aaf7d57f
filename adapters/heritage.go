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

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/encoding"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/parse"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// heritageCellPattern extracts the synthetic `[headword]{morph
// codes}` blocks the adapter builds from the upstream HTML table's
// cells (spec §4.4.4: "already extracted to a synthetic text block").
// Background cell color, when present as a `bgcolor="..."` attribute
// preceding a cell, is captured separately and kept out of the
// universal schema (spec §4.4.4's "tool-specific payload field only").
var heritageCellPattern = regexp.MustCompile(`(?s)<td(?:\s+bgcolor="([^"]*)")?[^>]*>\s*\[([^\]]*)\]\{([^}]*)\}\s*</td>`)

// Heritage is the C6 adapter for the Sanskrit Heritage site's
// morphological analyzer. It translates the canonical SLP1 query into
// Velthuis with long-vowel doubling, per spec §4.6/§6.
type Heritage struct {
	client  *http.Client
	baseURL string
}

// NewHeritage constructs the Heritage adapter.
func NewHeritage(baseURL string, timeout time.Duration) *Heritage {
	return &Heritage{baseURL: baseURL, client: newUpstreamClient(timeout)}
}

func (a *Heritage) Source() schema.Source { return schema.SourceHeritage }

func (a *Heritage) Query(ctx context.Context, cq schema.CanonicalQuery) (Result, error) {
	velthuis, err := slp1ToVelthuisDoubled(cq.Canonical)
	if err != nil {
		return Result{}, &schema.AdapterError{Source: schema.SourceHeritage, Kind: schema.AdapterProtocol, Message: "failed to convert query to velthuis", Err: err}
	}

	raw, err := fetchHeritage(ctx, a.client, a.baseURL, velthuis)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return Result{Raw: raw}, nil
	}

	blocks := extractHeritageBlocks(raw)
	parsed := make([]schema.ParsedEntry, 0, len(blocks))
	for _, b := range blocks {
		entry := parse.Parse(schema.SourceHeritage, schema.Sanskrit, b.synthetic)
		parsed = append(parsed, entry)
	}

	return Result{Entries: entriesFromParsed(parsed, schema.SourceHeritage, false), Raw: raw}, nil
}

func (a *Heritage) ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error) {
	blocks := extractHeritageBlocks(raw)
	var facts []schema.Fact
	for _, b := range blocks {
		entry := parse.Parse(schema.SourceHeritage, schema.Sanskrit, b.synthetic)
		entryFacts := factsFromParsed(entry, schema.SourceHeritage, provenance.ProvenanceID)
		if b.bgColor != "" && len(entryFacts) > 0 {
			// Background color is tool-specific and never promoted to a
			// universal predicate (spec §4.4.4); it is recorded only as a
			// "bg_color" field in the payload of the block's last fact.
			entryFacts[len(entryFacts)-1].Payload["bg_color"] = b.bgColor
		}
		facts = append(facts, entryFacts...)
	}
	return facts, nil
}

type heritageCell struct {
	synthetic string
	bgColor   string
}

// extractHeritageBlocks scrapes the upstream HTML table cells into the
// synthetic `[headword]{morph codes}` blocks parse.parseHeritage
// expects.
func extractHeritageBlocks(raw string) []heritageCell {
	matches := heritageCellPattern.FindAllStringSubmatch(raw, -1)
	out := make([]heritageCell, 0, len(matches))
	for _, m := range matches {
		out = append(out, heritageCell{
			bgColor:   m[1],
			synthetic: fmt.Sprintf("[%s]{%s}", strings.TrimSpace(m[2]), strings.TrimSpace(m[3])),
		})
	}
	return out
}

// slp1ToVelthuisDoubled converts an SLP1 query to Velthuis and, per
// spec §6, doubles a final long vowel. SLP1 marks a long vowel with an
// uppercase letter (A/I/U), so the check is made against the SLP1
// source rather than the already-converted Velthuis text.
func slp1ToVelthuisDoubled(slp1 string) (string, error) {
	velthuis, err := encoding.SLP1ToVelthuis(slp1)
	if err != nil {
		return "", err
	}
	if slp1 == "" {
		return velthuis, nil
	}
	switch slp1[len(slp1)-1] {
	case 'A':
		if !strings.HasSuffix(velthuis, "aa") {
			velthuis += "a"
		}
	case 'I':
		if !strings.HasSuffix(velthuis, "ii") {
			velthuis += "i"
		}
	case 'U':
		if !strings.HasSuffix(velthuis, "uu") {
			velthuis += "u"
		}
	}
	return velthuis, nil
}

func fetchHeritage(ctx context.Context, client *http.Client, baseURL, velthuisText string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", &schema.AdapterError{Source: schema.SourceHeritage, Kind: schema.AdapterProtocol, Message: "invalid base URL", Err: err}
	}
	// Semicolon-separated query parameters in the fixed order spec §6
	// requires: t;lex;font;cache;st;us;text. The leading "/" is forced
	// so the semicolon block always lands in the path, never gets
	// mistaken for part of the authority when baseURL carries no path
	// of its own.
	u.RawQuery = ""
	u.Path = strings.TrimSuffix(u.Path, "/") + "/;VH;MW;t;0;0;" + velthuisText
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &schema.AdapterError{Source: schema.SourceHeritage, Kind: schema.AdapterProtocol, Message: "request build failed", Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		kind := schema.AdapterTransport
		if ctx.Err() != nil {
			kind = schema.AdapterTimeout
		}
		return "", &schema.AdapterError{Source: schema.SourceHeritage, Kind: kind, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &schema.AdapterError{Source: schema.SourceHeritage, Kind: schema.AdapterTransport, Message: "failed to read response", Err: err}
	}
	if resp.StatusCode >= 400 {
		return "", &schema.AdapterError{Source: schema.SourceHeritage, Kind: schema.AdapterProtocol, Message: fmt.Sprintf("upstream returned %d", resp.StatusCode)}
	}
	return string(body), nil
}
