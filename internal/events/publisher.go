package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Transport appends one serialized event to a stream. Implementations must be
// safe for use from a single goroutine; the publisher never calls it
// concurrently, which is what preserves per-key send order.
type Transport interface {
	Append(ctx context.Context, stream, key string, payload []byte) error
}

// StreamTransport appends events to a Redis stream via XADD.
type StreamTransport struct {
	client *goredis.Client
}

func NewStreamTransport(client *goredis.Client) *StreamTransport {
	return &StreamTransport{client: client}
}

func (t *StreamTransport) Append(ctx context.Context, stream, key string, payload []byte) error {
	args := &goredis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"key":   key,
			"event": payload,
		},
	}
	if _, err := t.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// PublisherConfig tunes the publisher. Zero values get defaults.
type PublisherConfig struct {
	Stream      string
	BufferSize  int
	MaxAttempts int
	RetryDelay  time.Duration
}

// Publisher delivers ChangeEvents to the transport asynchronously. Publish
// enqueues and returns immediately; a single worker goroutine drains the
// queue in order and retries each append a bounded number of times. Permanent
// failures are logged, never surfaced to the caller; the store write has
// already committed by the time an event is published.
type Publisher struct {
	transport   Transport
	stream      string
	queue       chan ChangeEvent
	maxAttempts int
	retryDelay  time.Duration
}

func NewPublisher(transport Transport, config PublisherConfig) *Publisher {
	if config.Stream == "" {
		config.Stream = EntryEventsStream
	}
	if config.BufferSize == 0 {
		config.BufferSize = 256
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 200 * time.Millisecond
	}

	return &Publisher{
		transport:   transport,
		stream:      config.Stream,
		queue:       make(chan ChangeEvent, config.BufferSize),
		maxAttempts: config.MaxAttempts,
		retryDelay:  config.RetryDelay,
	}
}

// Publish enqueues event and returns immediately. When the queue is full the
// event is dropped and logged; downstream consumers tolerate missed
// notifications (bounded by the daily cache sweep and reconciliation).
func (p *Publisher) Publish(event ChangeEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	select {
	case p.queue <- event:
	default:
		log.Printf("publisher: queue full, dropping event %s kind=%s entry=%s", event.EventID, event.Kind, event.EntryID)
	}
}

// Run drains the queue until ctx is cancelled. Run from a single goroutine.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.queue:
			p.deliver(ctx, event)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("publisher: marshal error for event %s: %v", event.EventID, err)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if lastErr = p.transport.Append(ctx, p.stream, event.EntryID, payload); lastErr == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		log.Printf("publisher: attempt %d/%d failed for event %s: %v", attempt, p.maxAttempts, event.EventID, lastErr)
		if attempt < p.maxAttempts {
			time.Sleep(p.retryDelay)
		}
	}
	log.Printf("publisher: giving up on event %s kind=%s entry=%s: %v", event.EventID, event.Kind, event.EntryID, lastErr)
}
