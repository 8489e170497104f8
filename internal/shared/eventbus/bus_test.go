package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)
	var called bool
	bus.Subscribe(EventTypeJobSucceeded, func(ctx context.Context, event Event) error {
		called = true
		assert.Equal(t, EventTypeJobSucceeded, event.Type())
		assert.Equal(t, "runner", event.Source())
		return nil
	})
	err := bus.Publish(context.Background(), NewBasicEventWithSource(EventTypeJobSucceeded, "payload", "runner"))
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), NewBasicEventWithSource("nobody", nil, "test")))
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(nil)
	var seen []string
	bus.SubscribeAll(JobEventTypes, func(ctx context.Context, event Event) error {
		seen = append(seen, event.Type())
		return nil
	})
	for _, et := range JobEventTypes {
		assert.Equal(t, 1, bus.GetSubscriberCount(et))
		_ = bus.Publish(context.Background(), NewBasicEventWithSource(et, nil, "test"))
	}
	assert.Equal(t, JobEventTypes, seen)
}

func TestEventBus_RetriesThenReportsFailure(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	attempts := 0
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		attempts++
		return errors.New("down")
	})

	later := false
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		later = true
		return nil
	})

	err := bus.Publish(context.Background(), NewBasicEventWithSource("flaky", nil, "test"))
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, later, "a failing handler does not starve the next one")
}

func TestEventBus_RetrySucceeds(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	attempts := 0
	bus.Subscribe("once", func(ctx context.Context, event Event) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, bus.Publish(context.Background(), NewBasicEventWithSource("once", nil, "test")))
	assert.Equal(t, 2, attempts)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("ev", func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount("ev"))
	bus.Unsubscribe("ev")
	assert.Equal(t, 0, bus.GetSubscriberCount("ev"))
}
