package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutbox "github.com/revcart/fulfillment/internal/domain/outbox"
	"github.com/revcart/fulfillment/internal/infrastructure/outbox"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := outbox.NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	got := make(chan domoutbox.Event, 1)
	bus.Subscribe("thing.happened", func(ctx context.Context, e domoutbox.Event) error {
		got <- e
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "thing.happened"}))

	select {
	case e := <-got:
		assert.Equal(t, "thing.happened", e.EventName())
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestBusFansOutToAllSubscribers(t *testing.T) {
	bus := outbox.NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	first := make(chan struct{}, 1)
	second := make(chan struct{}, 1)
	bus.Subscribe("thing.happened", func(ctx context.Context, e domoutbox.Event) error {
		first <- struct{}{}
		return nil
	})
	bus.Subscribe("thing.happened", func(ctx context.Context, e domoutbox.Event) error {
		second <- struct{}{}
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "thing.happened"}))

	for _, ch := range []chan struct{}{first, second} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("a subscriber was not invoked")
		}
	}
}

// A panicking handler must not take down the dispatch loop.
func TestBusSurvivesHandlerPanic(t *testing.T) {
	bus := outbox.NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	bus.Subscribe("boom", func(ctx context.Context, e domoutbox.Event) error {
		panic("handler exploded")
	})

	got := make(chan struct{}, 1)
	bus.Subscribe("fine", func(ctx context.Context, e domoutbox.Event) error {
		got <- struct{}{}
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "boom"}))
	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "fine"}))

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("bus stopped dispatching after a panic")
	}
}

func TestBusPublishNilEvent(t *testing.T) {
	bus := outbox.NewBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), nil))
}
