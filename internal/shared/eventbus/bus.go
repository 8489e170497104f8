package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rta-sync/internal/shared/logger"

	"github.com/cenkalti/backoff/v5"
)

// Job lifecycle event types published by the runner
const (
	EventTypeJobDispatched = "job.dispatched"
	EventTypeJobSucceeded  = "job.succeeded"
	EventTypeJobFailed     = "job.failed"
)

// JobEventTypes lists every job lifecycle event type
var JobEventTypes = []string{EventTypeJobDispatched, EventTypeJobSucceeded, EventTypeJobFailed}

// Event is what travels over the bus
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler reacts to one event
type Handler func(ctx context.Context, event Event) error

// EventBusInterface defines the contract for event bus implementations
type EventBusInterface interface {
	Subscribe(eventType string, handler Handler)
	SubscribeAll(eventTypes []string, handler Handler)
	Publish(ctx context.Context, event Event) error
	Unsubscribe(eventType string)
	GetSubscriberCount(eventType string) int
}

// BusConfig controls how often a failing handler is retried
type BusConfig struct {
	MaxRetries uint
	RetryDelay time.Duration
}

func DefaultBusConfig() BusConfig {
	return BusConfig{MaxRetries: 1, RetryDelay: 50 * time.Millisecond}
}

// EventBus fans events out synchronously on the publisher's goroutine.
// Handlers must not block for long.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
	config   BusConfig
}

func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log.WithComponent("eventbus"),
		config:   config,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.mu.Unlock()
	eb.logger.Debugf("Subscribed handler for event type: %s", eventType)
}

// SubscribeAll registers the same handler for several event types
func (eb *EventBus) SubscribeAll(eventTypes []string, handler Handler) {
	for _, t := range eventTypes {
		eb.Subscribe(t, handler)
	}
}

// Publish runs every handler for the event type, even after one fails, and
// returns the first failure.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.Type()]...)
	eb.mu.RUnlock()

	var firstErr error
	for i, h := range handlers {
		if err := eb.deliver(ctx, event, h, i); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (eb *EventBus) deliver(ctx context.Context, event Event, h Handler, idx int) error {
	tries := eb.config.MaxRetries + 1
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, h(ctx, event)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(eb.config.RetryDelay)),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(func(err error, _ time.Duration) {
			eb.logger.Warnf("Handler %d failed for event %s (attempt %d/%d): %v", idx, event.Type(), attempt, tries, err)
		}),
	)
	if err != nil {
		return fmt.Errorf("handler %d for %s failed after %d attempt(s): %w", idx, event.Type(), attempt, err)
	}
	return nil
}

// Unsubscribe drops every handler for the event type
func (eb *EventBus) Unsubscribe(eventType string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.handlers, eventType)
}

func (eb *EventBus) GetSubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// BasicEvent is the only Event implementation in use
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewBasicEventWithSource stamps the event with the current time
func NewBasicEventWithSource(eventType string, data interface{}, source string) Event {
	return &BasicEvent{eventType: eventType, data: data, timestamp: time.Now(), source: source}
}

func (e *BasicEvent) Type() string         { return e.eventType }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.timestamp }
func (e *BasicEvent) Source() string       { return e.source }
