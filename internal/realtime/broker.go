package realtime

import (
	"context"
	"sync"

	"housie/internal/metrics"

	"github.com/google/uuid"
)

// Deliver hands a change to a subscriber. It must not block; returning
// false records a drop.
type Deliver func(sub *Subscription, ch Change) bool

type Subscription struct {
	ID      string
	UserID  int64
	Topic   Topic
	deliver Deliver
}

// Broker fans changes out to the subscribers of this process.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]*Subscription)}
}

func (b *Broker) Subscribe(userID int64, topic Topic, deliver Deliver) *Subscription {
	sub := &Subscription{
		ID:      uuid.NewString(),
		UserID:  userID,
		Topic:   topic,
		deliver: deliver,
	}
	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()
	return sub
}

func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Publish delivers locally. Use RedisBridge when several instances run.
func (b *Broker) Publish(_ context.Context, ch Change) error {
	metrics.RealtimeEvents.WithLabelValues(ch.Table, string(ch.Type)).Inc()
	b.Dispatch(ch)
	return nil
}

// Dispatch sends ch to every matching subscriber allowed to see it.
func (b *Broker) Dispatch(ch Change) int {
	b.mu.RLock()
	matched := make([]*Subscription, 0, 4)
	for _, sub := range b.subs {
		if sub.Topic.Matches(ch) && ch.VisibleTo(sub.UserID) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	out := ch.forClient()
	delivered := 0
	for _, sub := range matched {
		if sub.deliver(sub, out) {
			delivered++
			continue
		}
		metrics.RealtimeDropped.Inc()
	}
	return delivered
}

func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
