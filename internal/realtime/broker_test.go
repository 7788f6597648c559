package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(buf int) (Deliver, chan Change) {
	out := make(chan Change, buf)
	return func(_ *Subscription, ch Change) bool {
		select {
		case out <- ch:
			return true
		default:
			return false
		}
	}, out
}

func TestBroker_RespectsAudienceAndTopic(t *testing.T) {
	b := NewBroker()
	topic, err := ParseTopic("chat_messages", "INSERT", "")
	require.NoError(t, err)

	d1, ch1 := collect(4)
	d2, ch2 := collect(4)
	b.Subscribe(1, topic, d1)
	b.Subscribe(2, topic, d2)

	require.NoError(t, b.Publish(context.Background(), NewChange("chat_messages", EventInsert, map[string]any{"id": "m1"}, 1)))

	require.Len(t, ch1, 1)
	assert.Len(t, ch2, 0)
	got := <-ch1
	assert.Nil(t, got.Audience, "audience must not leak to clients")
	assert.Equal(t, "m1", got.Record["id"])
}

func TestBroker_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	b := NewBroker()
	topic, _ := ParseTopic("conversations", "*", "")
	d, ch := collect(1)
	b.Subscribe(1, topic, d)

	assert.Equal(t, 1, b.Dispatch(NewChange("conversations", EventUpdate, nil)))
	assert.Equal(t, 0, b.Dispatch(NewChange("conversations", EventUpdate, nil)))
	assert.Len(t, ch, 1)
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker()
	topic, _ := ParseTopic("bookings", "*", "")
	d, ch := collect(1)
	sub := b.Subscribe(1, topic, d)
	require.Equal(t, 1, b.Len())

	b.Unsubscribe(sub.ID)
	b.Dispatch(NewChange("bookings", EventInsert, nil))

	assert.Equal(t, 0, b.Len())
	assert.Len(t, ch, 0)
}
