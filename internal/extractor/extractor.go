// Package extractor derives a title, description and preview image for a URL
// from the page's Open Graph, Twitter Card and standard HTML metadata.
package extractor

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/Adda-Baaj/link-meta/internal/domain"
	"github.com/Adda-Baaj/link-meta/pkg/httpclient"
)

const (
	// DefaultTimeout bounds every extraction, even when the caller sets no deadline.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is the desktop browser identity sent on every fetch.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Extractor fetches pages and summarizes their metadata. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	client  httpclient.Client
	timeout time.Duration
	headers map[string]string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithUserAgent overrides the browser identity sent upstream.
func WithUserAgent(ua string) Option {
	return WithHeader("User-Agent", ua)
}

// WithHeader sets an outbound request header. Blank values are ignored.
func WithHeader(key, value string) Option {
	return func(e *Extractor) {
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key != "" && value != "" {
			e.headers[key] = value
		}
	}
}

// New builds an Extractor on top of client (or a default resty client).
func New(client httpclient.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:  client,
		timeout: DefaultTimeout,
		headers: map[string]string{
			"User-Agent": DefaultUserAgent,
			"Accept":     defaultAccept,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = httpclient.NewRestyClient(e.timeout)
	}
	return e
}

// Extract fetches url once and returns its best-effort summary. A page
// without metadata yields an empty result and a nil error; any failure
// yields a zero result and an *Error.
func (e *Extractor) Extract(ctx context.Context, url string) (domain.ExtractionResult, error) {
	target := strings.TrimSpace(url)
	if target == "" {
		return domain.ExtractionResult{}, &Error{Kind: KindValidation, Err: ErrURLRequired}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Get(ctx, target, e.headers)
	if err != nil {
		return domain.ExtractionResult{}, classify(ctx, target, err)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return domain.ExtractionResult{}, &Error{
			Kind:       KindFetch,
			URL:        target,
			StatusCode: code,
			Status:     resp.Status(),
		}
	}

	doc, err := parseDocument(resp.Body(), resp.ContentType())
	if err != nil {
		return domain.ExtractionResult{}, &Error{Kind: KindParse, URL: target, Err: err}
	}

	return summarize(doc), nil
}

// classify maps a transport error onto a timeout or fetch failure.
func classify(ctx context.Context, url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) || isNetTimeout(err) {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	return &Error{Kind: KindFetch, URL: url, Err: err}
}

func isNetTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
