package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"repaircrm_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	var seen []string

	for _, id := range []string{"a", "b"} {
		id := id
		bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
			mu.Lock()
			seen = append(seen, id)
			mu.Unlock()
			wg.Done()
			return nil
		}))
	}

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handlers did not run within 1s")
	}

	if len(seen) != 2 {
		t.Errorf("handlers invoked = %d, want 2", len(seen))
	}
}

// TestPublishOutlivesCaller: async handlers must keep running after the
// publisher's context is cancelled.
func TestPublishOutlivesCaller(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	done := make(chan error, 1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, _ Event) error {
		done <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("handler context err = %v, want nil after publisher cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler did not run within 1s")
	}
}

func TestPublishSyncReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	first := errors.New("first failure")
	ran := 0
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		ran++
		return first
	}))
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, _ Event) error {
		ran++
		return errors.New("second failure")
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	if !errors.Is(err, first) {
		t.Errorf("err = %v, want the first handler error", err)
	}
	if ran != 2 {
		t.Errorf("handlers invoked = %d, want all despite the failure", ran)
	}
}

func TestPublishIgnoresUnrelatedEvents(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	called := false
	bus.Subscribe("other.event", HandlerFunc(func(_ context.Context, _ Event) error {
		called = true
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"}); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if called {
		t.Error("handler for a different event name must not run")
	}
}
