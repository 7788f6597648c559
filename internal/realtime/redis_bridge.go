package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"housie/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const defaultChannel = "housie:changes"

// RedisBridge publishes changes on a Redis channel and dispatches every
// message it receives to the local broker, so all instances see all changes.
type RedisBridge struct {
	client  *redis.Client
	broker  *Broker
	channel string
}

func NewRedisBridge(client *redis.Client, broker *Broker) *RedisBridge {
	return &RedisBridge{client: client, broker: broker, channel: defaultChannel}
}

func (r *RedisBridge) Publish(ctx context.Context, ch Change) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	metrics.RealtimeEvents.WithLabelValues(ch.Table, string(ch.Type)).Inc()
	return nil
}

// Run blocks until ctx is cancelled.
func (r *RedisBridge) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	log.Printf("realtime: redis bridge subscribed channel=%s", r.channel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ch Change
			if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
				log.Printf("realtime: drop malformed change err=%v", err)
				continue
			}
			r.broker.Dispatch(ch)
		}
	}
}
