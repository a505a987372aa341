package eventbus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	t.Parallel()
	b := New()
	defer b.Close()

	got := make(chan DomainEvent, 1)
	b.Subscribe(EventNavigated, func(e DomainEvent) { got <- e })

	b.Publish(NavigatedEvent{Ref: "https://blog.clexp.net/about/", URL: "/about/"})

	select {
	case e := <-got:
		ev, ok := e.(NavigatedEvent)
		require.True(t, ok)
		require.Equal(t, "/about/", ev.URL)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()
	b := New()
	defer b.Close()

	var calls atomic.Int32
	unsubscribe := b.Subscribe(EventSearchInitialized, func(DomainEvent) { calls.Add(1) })
	done := make(chan struct{}, 1)
	b.Subscribe(EventSearchInitialized, func(DomainEvent) { done <- struct{}{} })

	unsubscribe()
	b.Publish(SearchInitializedEvent{Documents: 3})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber was not called")
	}
	// Give any stray handler goroutine a chance to run
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(0), calls.Load())
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	t.Parallel()
	b := New()
	defer b.Close()

	done := make(chan struct{}, 1)
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, func(DomainEvent) { done <- struct{}{} })

	b.Publish(ErrorEvent{Message: "x"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber was not called")
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	t.Parallel()
	b := New()
	b.Close()
	require.NotPanics(t, func() { b.Publish(ConfigSavedEvent{}) })
	require.NotPanics(t, b.Close)
}
