package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("conversation_id=eq.abc-123")
	require.NoError(t, err)
	assert.Equal(t, Filter{Column: "conversation_id", Value: "abc-123"}, f)

	for _, bad := range []string{"", "conversation_id", "conversation_id=abc", "=eq.x", "id=eq."} {
		_, err := ParseFilter(bad)
		assert.ErrorIs(t, err, ErrInvalidFilter, bad)
	}
}

func TestFilter_MatchesNumbersAndStrings(t *testing.T) {
	rec := toRecord(struct {
		UserID   int64  `json:"user_id"`
		IsOnline bool   `json:"is_online"`
		Name     string `json:"name"`
	}{UserID: 42, IsOnline: true, Name: "x"})

	assert.True(t, Filter{Column: "user_id", Value: "42"}.Match(rec))
	assert.True(t, Filter{Column: "is_online", Value: "true"}.Match(rec))
	assert.False(t, Filter{Column: "user_id", Value: "4"}.Match(rec))
	assert.False(t, Filter{Column: "missing", Value: "x"}.Match(rec))
}

func TestParseTopic(t *testing.T) {
	topic, err := ParseTopic("chat_messages", "insert", "conversation_id=eq.c1")
	require.NoError(t, err)
	assert.Equal(t, EventInsert, topic.Event)

	topic, err = ParseTopic("conversations", "", "")
	require.NoError(t, err)
	assert.Equal(t, EventAll, topic.Event)
	assert.Nil(t, topic.Filter)

	_, err = ParseTopic("users", "*", "")
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = ParseTopic("bookings", "TRUNCATE", "")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestTopic_Matches(t *testing.T) {
	topic, _ := ParseTopic("chat_messages", "INSERT", "conversation_id=eq.c1")

	assert.True(t, topic.Matches(NewChange("chat_messages", EventInsert, map[string]any{"conversation_id": "c1"})))
	assert.False(t, topic.Matches(NewChange("chat_messages", EventUpdate, map[string]any{"conversation_id": "c1"})))
	assert.False(t, topic.Matches(NewChange("chat_messages", EventInsert, map[string]any{"conversation_id": "c2"})))
	assert.False(t, topic.Matches(NewChange("conversations", EventInsert, map[string]any{"conversation_id": "c1"})))

	del, _ := ParseTopic("chat_messages", "DELETE", "conversation_id=eq.c1")
	assert.True(t, del.Matches(Change{Table: "chat_messages", Type: EventDelete, OldRecord: map[string]any{"conversation_id": "c1"}}))
}

func TestChange_VisibleTo(t *testing.T) {
	private := NewChange("notifications", EventInsert, nil, 1, 2)
	assert.True(t, private.VisibleTo(1))
	assert.False(t, private.VisibleTo(3))

	public := NewChange("user_presence", EventUpdate, nil)
	assert.True(t, public.VisibleTo(99))
}
