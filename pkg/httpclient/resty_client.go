package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultMaxBodyBytes caps how much of a response body Get will buffer.
	DefaultMaxBodyBytes int64 = 1 << 20 // 1 MiB
	defaultMaxRedirects       = 10
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client       *resty.Client
	maxBodyBytes int64
}

// Option configures a RestyClient.
type Option func(*RestyClient)

// WithMaxBodyBytes limits the buffered response body; anything past n bytes is dropped.
func WithMaxBodyBytes(n int64) Option {
	return func(r *RestyClient) {
		if n > 0 {
			r.maxBodyBytes = n
		}
	}
}

// WithLogger routes resty's internal warnings and errors to l.
func WithLogger(l resty.Logger) Option {
	return func(r *RestyClient) {
		if l != nil {
			r.client.SetLogger(l)
		}
	}
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration, opts ...Option) *RestyClient {
	r := &RestyClient{
		client:       newRestyBaseClient(timeout),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	r.client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(defaultMaxRedirects))
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
// The raw body is always closed before Get returns.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		return nil, err
	}

	out := &bufferedResponse{
		statusCode:  resp.StatusCode(),
		status:      resp.Status(),
		contentType: resp.Header().Get("Content-Type"),
	}
	if out.status == "" {
		out.status = fmt.Sprintf("%d %s", out.statusCode, http.StatusText(out.statusCode))
	}

	if !isSuccess(out.statusCode) || resp.RawBody() == nil {
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.RawBody(), r.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	out.body = body
	return out, nil
}

func isSuccess(code int) bool { return code >= 200 && code < 300 }

// bufferedResponse holds a fully read (and possibly truncated) response.
type bufferedResponse struct {
	body        []byte
	statusCode  int
	status      string
	contentType string
}

func (b *bufferedResponse) Body() []byte        { return b.body }
func (b *bufferedResponse) StatusCode() int     { return b.statusCode }
func (b *bufferedResponse) Status() string      { return strings.TrimSpace(b.status) }
func (b *bufferedResponse) ContentType() string { return b.contentType }
