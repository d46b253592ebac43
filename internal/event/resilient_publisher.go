package event

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/ashveil/progression-engine/internal/logger"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	DeadLetterPath string
}

func (c ResilientConfig) withDefaults() ResilientConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = RetryMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = RetryBaseDelay
	}
	return c
}

// ResilientPublisher wraps a Bus to add retry logic and dead-letter
// queueing. Publish never returns an error and never blocks beyond the
// first attempt, so a slow or failed transport cannot stall or fail the
// award path that emits through it.
type ResilientPublisher struct {
	inner    Bus
	config   ResilientConfig
	deadMu   sync.Mutex // serializes dead-letter file writes
	inflight sync.WaitGroup
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) *ResilientPublisher {
	return &ResilientPublisher{inner: inner, config: config.withDefaults()}
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Wait blocks until all in-flight retry loops finish (shutdown/testing)
func (p *ResilientPublisher) Wait() {
	p.inflight.Wait()
}

// Publish attempts to publish an event. On failure it hands the event to
// a background retry loop and reports success to the caller anyway.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	if err := p.inner.Publish(ctx, event); err != nil {
		logger.Warn(LogMsgEventPublishFailed,
			"event_type", event.Type,
			"error", err,
			"retries", p.config.MaxRetries)

		// The request context may already be cancelled by the time
		// retries run, so the loop detaches from it
		p.inflight.Add(1)
		go p.redeliver(event)
	}
	return nil
}

// redeliver retries with linearly growing backoff until delivery
// succeeds or the attempt budget runs out, then dead-letters the event
func (p *ResilientPublisher) redeliver(event Event) {
	defer p.inflight.Done()

	for attempt := 1; ; attempt++ {
		if attempt > p.config.MaxRetries {
			logger.Warn(LogMsgEventRetryExhausted, "event_type", event.Type)
			p.deadLetter(event)
			return
		}

		time.Sleep(p.config.RetryDelay * time.Duration(attempt))
		err := p.inner.Publish(context.Background(), event)
		if err == nil {
			logger.Info(LogMsgEventRetrySucceeded,
				"event_type", event.Type,
				"attempt", attempt)
			return
		}
		logger.Warn(LogMsgEventRetryFailed,
			"event_type", event.Type,
			"attempt", attempt,
			"error", err)
	}
}

// DeadLetterEntry is the on-disk shape of an undeliverable event
type DeadLetterEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Event     Event     `json:"event"`
}

// deadLetter appends the event as one JSON line to the dead-letter file
func (p *ResilientPublisher) deadLetter(event Event) {
	p.deadMu.Lock()
	defer p.deadMu.Unlock()

	f, err := os.OpenFile(p.config.DeadLetterPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		logger.Error(LogMsgDeadLetterWriteFailed, "error", err, "path", p.config.DeadLetterPath)
		return
	}
	defer f.Close()

	entry := DeadLetterEntry{Timestamp: time.Now(), Event: event}
	if err := json.NewEncoder(f).Encode(entry); err != nil {
		logger.Error(LogMsgDeadLetterWriteFailed, "error", err)
		return
	}
	logger.Info(LogMsgDeadLetterWritten, "event_type", event.Type)
}
