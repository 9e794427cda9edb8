package broker_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksapp/stacks-server/internal/broker"
)

func newTestBroker(t *testing.T) *broker.Broker {
	t.Helper()
	b := broker.New(slog.New(slog.DiscardHandler))
	t.Cleanup(b.Close)
	return b
}

func TestBroker_FanOut(t *testing.T) {
	b := newTestBroker(t)

	sub1, err := b.Subscribe("book.added")
	require.NoError(t, err)
	sub2, err := b.Subscribe("book.added")
	require.NoError(t, err)

	b.Publish("book.added", "event-payload")

	assert.Equal(t, "event-payload", <-sub1.Events)
	assert.Equal(t, "event-payload", <-sub2.Events)
}

func TestBroker_TopicsAreIsolated(t *testing.T) {
	b := newTestBroker(t)

	bookSub, err := b.Subscribe("book.added")
	require.NoError(t, err)
	otherSub, err := b.Subscribe("author.updated")
	require.NoError(t, err)

	b.Publish("book.added", "payload")

	assert.Equal(t, "payload", <-bookSub.Events)
	assert.Empty(t, otherSub.Events)
}

func TestBroker_LateSubscriberMissesEarlierEvents(t *testing.T) {
	b := newTestBroker(t)

	b.Publish("book.added", "before-anyone-listened")

	sub, err := b.Subscribe("book.added")
	require.NoError(t, err)
	assert.Empty(t, sub.Events)

	b.Publish("book.added", "after")
	assert.Equal(t, "after", <-sub.Events)
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := newTestBroker(t)

	sub, err := b.Subscribe("book.added")
	require.NoError(t, err)
	assert.Equal(t, 1, b.SubscriberCount("book.added"))

	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount("book.added"))

	select {
	case <-sub.Done:
	default:
		t.Fatal("Done channel should be closed after unsubscribe")
	}

	// Idempotent.
	assert.NotPanics(t, func() { b.Unsubscribe(sub) })
}

func TestBroker_DropsWhenSubscriberBufferFull(t *testing.T) {
	b := newTestBroker(t)

	sub, err := b.Subscribe("book.added")
	require.NoError(t, err)

	// Overfill the buffer without consuming; publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := range 150 {
			b.Publish("book.added", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	assert.Len(t, sub.Events, 100)
}

func TestBroker_ConcurrentPublishAndSubscribe(t *testing.T) {
	b := newTestBroker(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			sub, err := b.Subscribe("book.added")
			if err != nil {
				t.Error(err)
				return
			}
			b.Unsubscribe(sub)
		}(i)
		go func(n int) {
			defer wg.Done()
			b.Publish("book.added", fmt.Sprintf("event-%d", n))
		}(i)
	}
	wg.Wait()
}

func TestBroker_PublishAfterCloseDoesNotPanic(t *testing.T) {
	b := broker.New(slog.New(slog.DiscardHandler))

	_, err := b.Subscribe("book.added")
	require.NoError(t, err)

	b.Close()
	assert.NotPanics(t, func() { b.Publish("book.added", "late") })
	assert.NotPanics(t, b.Close)
}

func TestSubscriber_Stream_StopsOnContextCancel(t *testing.T) {
	b := newTestBroker(t)

	sub, err := b.Subscribe("book.added")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.Publish("book.added", "one")
	b.Publish("book.added", "two")

	received := make([]any, 0)
	for event := range sub.Stream(ctx) {
		received = append(received, event)
		if len(received) == 2 {
			cancel()
		}
	}

	assert.Equal(t, []any{"one", "two"}, received)
}

func TestSubscriber_Stream_StopsOnUnsubscribe(t *testing.T) {
	b := newTestBroker(t)

	sub, err := b.Subscribe("book.added")
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		b.Unsubscribe(sub)
	}()

	finished := make(chan struct{})
	go func() {
		for range sub.Stream(context.Background()) {
			t.Error("unexpected event")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not terminate after unsubscribe")
	}
}
