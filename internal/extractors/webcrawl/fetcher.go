// Package webcrawl fetches web pages for URL ingestion. Fetches are
// rate limited per fetcher, robots.txt is consulted per host when
// configured, and page text plus provenance metadata are extracted
// with goquery.
package webcrawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/extractors/html"
	"github.com/corpuslabs/corpusd/internal/logger"
)

const (
	defaultUserAgent = "corpusd-crawler/1.0"
	defaultTimeout   = 30 * time.Second
	maxRedirects     = 5
	maxBodyBytes     = 10 << 20
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithRespectRobots toggles robots.txt checks.
func WithRespectRobots(respect bool) Option {
	return func(f *Fetcher) { f.respectRobots = respect }
}

// WithRequestsPerSecond caps the fetch rate across all hosts.
func WithRequestsPerSecond(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// Fetcher downloads pages over HTTP.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	respectRobots bool
	limiter       *rate.Limiter

	mu     sync.Mutex
	robots map[string]*robotsRules // keyed by scheme://host
}

var _ driven.URLFetcher = (*Fetcher)(nil)

// New creates a Fetcher with sane defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent:     defaultUserAgent,
		respectRobots: true,
		limiter:       rate.NewLimiter(rate.Limit(1), 1),
		robots:        make(map[string]*robotsRules),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the page and returns its text plus page metadata.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*driven.Extraction, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid url %q", domain.ErrValidation, rawURL)
	}

	if f.respectRobots {
		allowed, err := f.allowed(ctx, u)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: disallowed by robots.txt: %s", domain.ErrTextExtraction, rawURL)
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, finalURL, err := f.get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrTextExtraction, rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrTextExtraction, rawURL, err)
	}

	text := html.ExtractDocument(doc)
	if text == "" {
		return nil, fmt.Errorf("%w: no textual content at %s", domain.ErrTextExtraction, rawURL)
	}

	return &driven.Extraction{
		Text:     text,
		Metadata: pageMetadata(doc, finalURL),
	}, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", err
	}
	return body, resp.Request.URL.String(), nil
}

// allowed consults the host's robots.txt. A robots.txt that cannot be
// fetched or parsed permits the crawl.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) (bool, error) {
	origin := u.Scheme + "://" + u.Host

	f.mu.Lock()
	rules, ok := f.robots[origin]
	f.mu.Unlock()

	if !ok {
		rules = f.fetchRobots(ctx, origin)
		f.mu.Lock()
		f.robots[origin] = rules
		f.mu.Unlock()
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return rules.allows(path), nil
}

func (f *Fetcher) fetchRobots(ctx context.Context, origin string) *robotsRules {
	body, _, err := f.get(ctx, origin+"/robots.txt")
	if err != nil {
		logger.Debug("robots.txt unavailable, crawling permitted",
			zap.String("origin", origin), zap.Error(err))
		return &robotsRules{}
	}
	return parseRobots(string(body), f.userAgent)
}

// robotsRules holds the Disallow prefixes applying to our user agent.
type robotsRules struct {
	disallow []string
}

func (r *robotsRules) allows(path string) bool {
	for _, prefix := range r.disallow {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// parseRobots reads the groups matching the given user agent, falling
// back to the wildcard group.
func parseRobots(body, userAgent string) *robotsRules {
	agent := strings.ToLower(userAgent)
	if i := strings.IndexByte(agent, '/'); i > 0 {
		agent = agent[:i]
	}

	var specific, wildcard []string
	inSpecific, inWildcard := false, false

	for _, line := range strings.Split(body, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			ua := strings.ToLower(value)
			inWildcard = ua == "*"
			inSpecific = ua != "*" && strings.Contains(agent, ua)
		case "disallow":
			if inSpecific {
				specific = append(specific, value)
			} else if inWildcard {
				wildcard = append(wildcard, value)
			}
		}
	}

	if len(specific) > 0 {
		return &robotsRules{disallow: specific}
	}
	return &robotsRules{disallow: wildcard}
}

// pageMetadata collects provenance from the parsed document.
func pageMetadata(doc *goquery.Document, finalURL string) map[string]any {
	meta := map[string]any{
		domain.MetaSourceURL: finalURL,
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta[domain.MetaPageTitle] = title
	}
	if canonical, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		if canonical = strings.TrimSpace(canonical); canonical != "" {
			meta[domain.MetaCanonicalURL] = canonical
		}
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if desc = strings.TrimSpace(desc); desc != "" {
			meta[domain.MetaDescription] = desc
		}
	}
	if kw, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		if kw = strings.TrimSpace(kw); kw != "" {
			meta[domain.MetaKeywords] = kw
		}
	}
	return meta
}
