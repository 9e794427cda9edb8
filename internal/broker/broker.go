// Package broker provides topic-based publish/subscribe fan-out for catalog
// change events. Each subscriber gets a buffered channel; slow consumers have
// events dropped rather than blocking publishers.
package broker

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/stacksapp/stacks-server/internal/id"
)

// subscriberBuffer is the per-subscriber event channel capacity.
const subscriberBuffer = 100

// Subscriber represents a single subscription to a topic.
type Subscriber struct {
	ConnectedAt time.Time
	Events      chan any
	Done        chan struct{}
	ID          string
	Topic       string
}

// Stream returns an iterator over the subscriber's events. The iterator
// terminates when the context is canceled or the subscription is closed.
func (s *Subscriber) Stream(ctx context.Context) iter.Seq[any] {
	return func(yield func(any) bool) {
		for {
			select {
			case event, ok := <-s.Events:
				if !ok {
					return
				}
				if !yield(event) {
					return
				}
			case <-s.Done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// Broker manages subscriptions and delivers published events.
type Broker struct {
	logger *slog.Logger

	mu     sync.RWMutex
	topics map[string]map[string]*Subscriber

	// Shutdown state - protected by closedMu
	closedMu sync.RWMutex
	closed   bool
}

// New creates a new Broker.
func New(logger *slog.Logger) *Broker {
	return &Broker{
		logger: logger,
		topics: make(map[string]map[string]*Subscriber),
	}
}

// Subscribe registers a new subscriber on the given topic.
func (b *Broker) Subscribe(topic string) (*Subscriber, error) {
	subID, err := id.Generate("sub")
	if err != nil {
		return nil, err
	}

	sub := &Subscriber{
		ID:          subID,
		Topic:       topic,
		Events:      make(chan any, subscriberBuffer),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]*Subscriber)
	}
	b.topics[topic][sub.ID] = sub
	total := len(b.topics[topic])
	b.mu.Unlock()

	b.logger.Info("subscriber connected",
		slog.String("subscriber_id", subID),
		slog.String("topic", topic),
		slog.Int("topic_subscribers", total))
	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channels.
// This operation is idempotent.
func (b *Broker) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	subs, ok := b.topics[sub.Topic]
	if !ok {
		b.mu.Unlock()
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		b.mu.Unlock()
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(b.topics, sub.Topic)
	}
	b.mu.Unlock()

	close(sub.Done)
	close(sub.Events)

	b.logger.Info("subscriber disconnected",
		slog.String("subscriber_id", sub.ID),
		slog.String("topic", sub.Topic),
		slog.Duration("duration", time.Since(sub.ConnectedAt)))
}

// Publish delivers an event to every subscriber of the topic.
// The read lock is held through the sends so channels cannot be closed
// underneath a send. Slow subscribers have the event dropped.
func (b *Broker) Publish(topic string, event any) {
	b.closedMu.RLock()
	defer b.closedMu.RUnlock()

	if b.closed {
		// Silently drop events after shutdown - this is expected during shutdown
		return
	}

	var delivered, dropped int

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.topics[topic] {
		select {
		case sub.Events <- event:
			delivered++
		default:
			dropped++
			b.logger.Warn("dropped event for slow subscriber",
				slog.String("subscriber_id", sub.ID),
				slog.String("topic", topic))
		}
	}

	b.logger.Debug("event published",
		slog.String("topic", topic),
		slog.Group("stats",
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped)))
}

// SubscriberCount returns the number of subscribers on a topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close shuts the broker down and disconnects all subscribers.
func (b *Broker) Close() {
	// Mark closed first so no Publish can race with the channel closes below.
	b.closedMu.Lock()
	if b.closed {
		b.closedMu.Unlock()
		return
	}
	b.closed = true
	b.closedMu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subs := range b.topics {
		for _, sub := range subs {
			close(sub.Done)
			close(sub.Events)
		}
	}
	b.topics = make(map[string]map[string]*Subscriber)

	b.logger.Info("broker closed, all subscribers disconnected")
}
