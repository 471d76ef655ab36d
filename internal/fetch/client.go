// Package fetch retrieves article text for comparison extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the timeout for direct article fetches.
	DefaultTimeout = 15 * time.Second

	// JinaTimeout is the timeout for the Jina Reader fallback, which runs
	// a headless browser and needs more time.
	JinaTimeout = 30 * time.Second

	// JinaBaseURL is the Jina Reader endpoint prefix.
	JinaBaseURL = "https://r.jina.ai/"

	// UserAgent identifies the fetcher to news sites.
	UserAgent = "AnythingButMetric-Scraper/1.0"

	// RateLimit caps outbound article fetches per second so a long feed
	// run stays polite.
	RateLimit = 2.0

	// MinArticleChars is the minimum extracted length considered a real
	// article body rather than a paywall stub or error page.
	MinArticleChars = 200
)

// ErrNoText is returned when neither fetch strategy produced usable text.
var ErrNoText = fmt.Errorf("no usable article text")

// Client is a rate-limited article text fetcher. It tries a direct GET
// with local HTML-to-text extraction first, then falls back to the Jina
// Reader API for JS-rendered pages.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	jinaBase   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithJinaBaseURL sets a custom Jina Reader base URL (for testing).
func WithJinaBaseURL(base string) Option {
	return func(c *Client) {
		c.jinaBase = base
	}
}

// WithRateLimit overrides the default requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates an article fetcher.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: JinaTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		jinaBase:   JinaBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ArticleText fetches the plain text of an article. It returns ErrNoText
// when both the direct fetch and the Jina fallback fail or yield too
// little text; callers then fall back to the RSS summary.
func (c *Client) ArticleText(ctx context.Context, articleURL string) (string, error) {
	if text, err := c.direct(ctx, articleURL); err == nil {
		return text, nil
	}
	return c.jina(ctx, articleURL)
}

// direct fetches the raw page and extracts text locally.
func (c *Client) direct(ctx context.Context, articleURL string) (string, error) {
	body, err := c.get(ctx, articleURL, DefaultTimeout, nil)
	if err != nil {
		return "", err
	}
	text := HTMLToText(string(body))
	if len(text) < MinArticleChars {
		return "", ErrNoText
	}
	return text, nil
}

// jina fetches pre-extracted text through the Jina Reader API.
func (c *Client) jina(ctx context.Context, articleURL string) (string, error) {
	headers := map[string]string{"X-Return-Format": "text"}
	body, err := c.get(ctx, c.jinaBase+articleURL, JinaTimeout, headers)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(body))
	if len(text) < MinArticleChars {
		return "", ErrNoText
	}
	return text, nil
}

func (c *Client) get(ctx context.Context, url string, timeout time.Duration, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var (
	scriptPattern = regexp.MustCompile(`(?is)<(script|style|noscript)[\s>].*?</(script|style|noscript)>`)
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern  = regexp.MustCompile(`[ \t]+`)
	blankPattern  = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText strips markup from an HTML document, leaving readable plain
// text. It is deliberately crude: extraction quality only has to be good
// enough for keyword gating and LLM input, and the Jina fallback covers
// pages this mangles.
func HTMLToText(html string) string {
	s := scriptPattern.ReplaceAllString(html, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.NewReplacer(
		"&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">",
		"&quot;", `"`, "&#39;", "'", "&apos;", "'",
	).Replace(s)
	s = spacePattern.ReplaceAllString(s, " ")
	s = blankPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
