package normalize

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dlclark/regexp2"
)

// canonicalLinkPattern matches an anchor of the shape
// `/skt/<LEX>/...#H_<word>` and captures its text content, per
// spec §6's "Sanskrit canonical probe" upstream protocol. regexp2 is
// used here although this particular pattern needs no lookahead.
var canonicalLinkPattern = regexp2.MustCompile(`<a\s+href="/skt/[^"]*#H_[^"]*"[^>]*>([^<]+)</a>`, regexp2.None)

// HTTPProber implements Prober against the Sanskrit canonical-lookup
// CGI endpoint. Its connection pool is process-wide and bounded,
// matching spec §5's "pool is process-wide with a bounded size
// (configurable; default 16)", and is built the same way the
// teacher's Client pools connections in client.go.
type HTTPProber struct {
	baseURL string
	lex     string
	client  *http.Client
}

// NewHTTPProber constructs a prober against baseURL (the CGI
// endpoint), querying dictionary lex (e.g. "MW"), with the given pool
// size and per-request timeout.
func NewHTTPProber(baseURL, lex string, poolSize int, timeout time.Duration) *HTTPProber {
	if poolSize <= 0 {
		poolSize = 16
	}
	return &HTTPProber{
		baseURL: baseURL,
		lex:     lex,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        poolSize,
				MaxIdleConnsPerHost: poolSize,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Probe issues the GET request described by spec §6: query parameters
// {q, lex, t} with t=VH (Velthuis), and extracts the Devanagari form
// from the matching anchor in the HTML response.
func (p *HTTPProber) Probe(ctx context.Context, token string) (string, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid probe base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", token)
	q.Set("lex", p.lex)
	q.Set("t", "VH")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read probe response: %w", err)
	}

	m, err := canonicalLinkPattern.FindStringMatch(string(body))
	if err != nil {
		return "", fmt.Errorf("probe pattern match failed: %w", err)
	}
	if m == nil {
		return "", fmt.Errorf("no canonical link found in probe response")
	}
	return m.GroupByNumber(1).String(), nil
}
