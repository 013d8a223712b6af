// Package notify queues extraction events and publishes them downstream
// off the request path.
package notify

import (
	"context"
	"time"

	"github.com/Adda-Baaj/link-meta/internal/domain"
	"github.com/Adda-Baaj/link-meta/internal/logger"
	"github.com/Adda-Baaj/link-meta/internal/metrics"
	"github.com/Adda-Baaj/link-meta/pkg/publishers"
)

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 10 * time.Second

	statusPublished = "published"
	statusFailed    = "failed"
	statusDropped   = "dropped"
	statusDuplicate = "duplicate"
)

// EventPublisher publishes events downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper tracks URL hashes that were already published.
type Deduper interface {
	Seen(key string) (bool, error)
	Mark(key string) error
}

// Notifier buffers events on a bounded queue drained by Run.
type Notifier struct {
	queue          chan publishers.Event
	pub            EventPublisher
	dedup          Deduper
	log            logger.Logger
	metrics        *metrics.Metrics
	publishTimeout time.Duration
}

// New wires a notifier. dedup, log and m may be nil.
func New(pub EventPublisher, dedup Deduper, log logger.Logger, m *metrics.Metrics, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Notifier{
		queue:          make(chan publishers.Event, queueSize),
		pub:            pub,
		dedup:          dedup,
		log:            logger.Ensure(log),
		metrics:        m,
		publishTimeout: defaultPublishTimeout,
	}
}

// Notify enqueues an event for url without blocking. It reports false when
// the notifier is disabled or the queue is full.
func (n *Notifier) Notify(url string, result domain.ExtractionResult) bool {
	if n == nil || n.pub == nil {
		return false
	}

	evt := publishers.NewEvent(url, result)
	select {
	case n.queue <- evt:
		return true
	default:
		n.metrics.RecordEvent(statusDropped)
		n.log.WarnObj("extraction event dropped; queue full", "event_meta", map[string]any{
			"url":      evt.URL,
			"url_hash": evt.URLHash,
		})
		return false
	}
}

// Run publishes queued events until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	if n == nil || n.pub == nil {
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if pending := len(n.queue); pending > 0 {
				n.log.WarnObj("notifier exiting with pending events", "event_meta", map[string]any{
					"pending": pending,
				})
			}
			return nil
		case evt := <-n.queue:
			n.handle(ctx, evt)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, evt publishers.Event) {
	if n.dedup != nil {
		seen, err := n.dedup.Seen(evt.URLHash)
		if err != nil {
			// Publish anyway; a duplicate beats a lost event.
			n.log.WarnObj("event dedup lookup failed", "event_error", map[string]any{
				"url_hash": evt.URLHash,
				"error":    err.Error(),
			})
		} else if seen {
			n.metrics.RecordEvent(statusDuplicate)
			n.log.DebugObj("skipping duplicate extraction event", "event_meta", map[string]any{
				"url_hash": evt.URLHash,
			})
			return
		}
	}

	pubCtx, cancel := context.WithTimeout(ctx, n.publishTimeout)
	defer cancel()

	delivered, err := n.pub.Publish(pubCtx, evt)
	if err != nil {
		n.metrics.RecordEvent(statusFailed)
		n.log.ErrorObj("extraction event publish failed", "event_error", map[string]any{
			"url":       evt.URL,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
	if delivered == 0 {
		return
	}

	n.metrics.RecordEvent(statusPublished)
	if n.dedup != nil {
		if err := n.dedup.Mark(evt.URLHash); err != nil {
			n.log.WarnObj("event dedup mark failed", "event_error", map[string]any{
				"url_hash": evt.URLHash,
				"error":    err.Error(),
			})
		}
	}
}
