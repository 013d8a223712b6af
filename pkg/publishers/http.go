package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/link-meta/internal/logger"
	"github.com/Adda-Baaj/link-meta/pkg/httpclient"

	"github.com/go-resty/resty/v2"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	maxErrorSnippet      = 512
)

// httpPublisher posts events to a webhook. The url hash travels as the
// Idempotency-Key header so receivers can drop redeliveries.
type httpPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyHTTPClient(timeout),
		log:     logger.Ensure(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeaders(h.headers).
		SetHeader("Content-Type", "application/json").
		SetHeader(headerIdempotencyKey, evt.URLHash).
		SetBody(evt).
		Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("%s %s: %w", h.method, h.url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s %s: %s %s", h.method, h.url, resp.Status(), snippet(resp.Body()))
	}

	h.log.DebugObj("event delivered to webhook", "http_delivery", map[string]any{
		"publisher_id": h.id,
		"status":       resp.StatusCode(),
		"url_hash":     evt.URLHash,
	})
	return nil
}

// snippet trims an error response body for inclusion in an error message.
func snippet(body []byte) string {
	if len(body) > maxErrorSnippet {
		body = body[:maxErrorSnippet]
	}
	return strings.TrimSpace(string(body))
}
