// Package ingest fetches technology and AI headlines from news sources and
// normalizes them into HeadlineRecords.
package ingest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// ErrNoAPIKey is returned by sources that need a key when none is set.
var ErrNoAPIKey = errors.New("ingest: API key not configured")

// DefaultUserAgent is sent with every feed and API request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:109.0) Gecko/20100101 Firefox/115.0"

// Source fetches up to limit headlines. FetchedAt is left empty; it is
// stamped once per run when records are written.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]models.HeadlineRecord, error)
}

// httpOptions are shared by the HTTP-backed sources.
type httpOptions struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	baseURL   string
}

// Option configures an HTTP-backed source.
type Option func(*httpOptions)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *httpOptions) { o.client = c }
}

// WithLimiter shares a request limiter between sources.
func WithLimiter(l *rate.Limiter) Option {
	return func(o *httpOptions) { o.limiter = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *httpOptions) { o.userAgent = ua }
}

// WithBaseURL points a source at a different endpoint (feed URL or API root).
func WithBaseURL(u string) Option {
	return func(o *httpOptions) { o.baseURL = u }
}

func newHTTPOptions(baseURL string, opts []Option) httpOptions {
	o := httpOptions{
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		userAgent: DefaultUserAgent,
		baseURL:   baseURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLimiter builds a limiter allowing rps requests per second. A
// non-positive rate disables limiting.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func (o httpOptions) get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", o.userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return o.client.Do(req)
}

// cleanText strips HTML tags and entities and collapses whitespace.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
		if err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
