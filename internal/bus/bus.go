package bus

import (
	"log/slog"
	"sync"

	"github.com/geotrack/asset-tracker/internal/domain"
)

// subscriptionBuffer is the per-subscriber channel capacity. A subscriber
// that falls further behind than this starts losing events rather than
// stalling publishers.
const subscriptionBuffer = 256

// Bus is a process-local topic-keyed fan-out router for asset events.
// Publish delivers to every subscription currently registered under the
// topic; with no subscribers the event is dropped. There is no buffering
// beyond each subscriber's channel and no replay.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	logger *slog.Logger
}

// Subscription is a handle to one subscriber channel on one topic.
type Subscription struct {
	bus   *Bus
	topic string
	ch    chan domain.AssetEvent
	once  sync.Once
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		topics: make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new channel under topic. The returned subscription
// receives every event published to the topic after this call, in publish
// order, until Cancel is called.
func (b *Bus) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		bus:   b,
		topic: topic,
		ch:    make(chan domain.AssetEvent, subscriptionBuffer),
	}

	b.mu.Lock()
	set, ok := b.topics[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.topics[topic] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// Publish delivers evt to all current subscribers of topic. It never blocks
// on a slow consumer: a full subscriber channel drops the event for that
// subscriber only.
func (b *Bus) Publish(topic string, evt domain.AssetEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.topics[topic] {
		select {
		case sub.ch <- evt:
		default:
			b.logger.Warn("subscriber buffer full, dropping event",
				"topic", topic, "event_type", evt.Type, "asset_id", evt.AssetID)
		}
	}
}

// SubscriberCount returns the number of active subscriptions on topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// TopicCount returns the number of topics with at least one subscriber.
func (b *Bus) TopicCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics)
}

// Events is the subscriber's receive channel. It is closed by Cancel.
func (s *Subscription) Events() <-chan domain.AssetEvent {
	return s.ch
}

// Topic returns the topic this subscription is registered under.
func (s *Subscription) Topic() string {
	return s.topic
}

// Cancel removes the subscription and closes its channel. Safe to call
// more than once. The close happens under the bus write lock, so it cannot
// race an in-flight Publish.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		b := s.bus
		b.mu.Lock()
		if set, ok := b.topics[s.topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.topics, s.topic)
			}
		}
		close(s.ch)
		b.mu.Unlock()
	})
}
