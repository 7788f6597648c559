package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBridge_FansOutAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newInstance := func() (*Broker, *RedisBridge) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		broker := NewBroker()
		bridge := NewRedisBridge(client, broker)
		go bridge.Run(ctx)
		return broker, bridge
	}

	brokerA, bridgeA := newInstance()
	brokerB, _ := newInstance()

	topic, _ := ParseTopic("notifications", "INSERT", "")
	dA, chA := collect(2)
	dB, chB := collect(2)
	brokerA.Subscribe(7, topic, dA)
	brokerB.Subscribe(7, topic, dB)

	// Wait for both bridges to be subscribed before publishing.
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(defaultChannel)[defaultChannel] == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bridgeA.Publish(ctx, NewChange("notifications", EventInsert, map[string]any{"id": 1}, 7)))

	assert.Eventually(t, func() bool { return len(chA) == 1 && len(chB) == 1 }, 2*time.Second, 10*time.Millisecond)
}
