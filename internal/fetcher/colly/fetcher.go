// Package collyfetcher implements scrape.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/xpath-scraper/internal/scrape"
)

const defaultTimeout = 10 * time.Second

var (
	errNoResponse   = errors.New("no response received")
	// ErrBodyTooLarge is returned when a response exceeds Config.MaxBodyBytes.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL   = errors.New("invalid url")
)

// Config controls collector behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	LogTraffic   bool
	// MaxBodyBytes rejects larger responses. Zero reads bodies in full.
	MaxBodyBytes int
	Logger       *zap.Logger
}

// Fetcher implements scrape.Fetcher using the Colly collector. A base
// collector owns the shared HTTP client; every Fetch works on a clone so
// callbacks never leak between concurrent requests.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher. Non-2xx responses are delivered as responses rather
// than errors, the same URL may be fetched any number of times, and cookies
// are never stored.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.WithTransport(buildTransport(cfg))
	c.SetRequestTimeout(cfg.Timeout)
	c.DisableCookies()
	// colly truncates at MaxBodySize; one extra byte lets Fetch tell a body
	// that fits from one that was cut.
	c.MaxBodySize = 0
	if cfg.MaxBodyBytes > 0 {
		c.MaxBodySize = cfg.MaxBodyBytes + 1
	}

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly.
func (f *Fetcher) Fetch(ctx context.Context, request scrape.FetchRequest) (scrape.FetchResponse, error) {
	var (
		result   scrape.FetchResponse
		received bool
		fetchErr error
	)
	if err := validateURL(request.URL); err != nil {
		return scrape.FetchResponse{}, &scrape.TransportError{URL: request.URL, Err: err}
	}
	start := time.Now()
	collector := f.buildCollector(ctx)
	f.configureCollectorHooks(collector, request, start, &result, &received, &fetchErr)

	if err := collector.Visit(request.URL); err != nil {
		return scrape.FetchResponse{}, &scrape.TransportError{URL: request.URL, Err: err}
	}
	if fetchErr != nil {
		return scrape.FetchResponse{}, &scrape.TransportError{URL: request.URL, Err: fetchErr}
	}
	if !received {
		return scrape.FetchResponse{}, &scrape.TransportError{URL: request.URL, Err: errNoResponse}
	}
	if limit := f.cfg.MaxBodyBytes; limit > 0 && len(result.Body) > limit {
		return scrape.FetchResponse{}, &scrape.TransportError{
			URL: request.URL,
			Err: fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit),
		}
	}
	return result, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q: missing host", ErrInvalidURL, raw)
	}
	return nil
}

func (f *Fetcher) buildCollector(ctx context.Context) *colly.Collector {
	collector := f.baseCollector.Clone()
	if ctx != nil {
		collector.Context = ctx
	}
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	request scrape.FetchRequest,
	start time.Time,
	result *scrape.FetchResponse,
	received *bool,
	fetchErr *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		f.copyHeaders(request, r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		*received = true
		*result = scrape.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func (f *Fetcher) copyHeaders(request scrape.FetchRequest, r *colly.Request) {
	if request.Headers == nil {
		return
	}
	for key, values := range request.Headers {
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}
