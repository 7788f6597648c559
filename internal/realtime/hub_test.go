package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housie/internal/pkg/jwt"
)

type fakePresence struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePresence) record(e string) {
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
}

func (f *fakePresence) Connect(context.Context, int64) error    { f.record("connect"); return nil }
func (f *fakePresence) Heartbeat(context.Context, int64) error  { f.record("heartbeat"); return nil }
func (f *fakePresence) Disconnect(context.Context, int64) error { f.record("disconnect"); return nil }

func (f *fakePresence) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

type testEnv struct {
	server   *httptest.Server
	broker   *Broker
	hub      *Hub
	presence *fakePresence
	jwt      *jwt.Service
}

func setupHub(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{broker: NewBroker(), presence: &fakePresence{}, jwt: jwt.New("secret", time.Hour)}
	env.hub = NewHub(env.broker, env.presence)

	r := gin.New()
	NewHandler(env.hub, env.jwt, nil).RegisterRoutes(r.Group("/api/v1"))
	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) dial(t *testing.T, userID int64) *websocket.Conn {
	t.Helper()
	token, err := e.jwt.GenerateToken(userID, "customer")
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/api/v1/realtime?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_SubscribeAndReceiveChange(t *testing.T) {
	env := setupHub(t)
	conn := env.dial(t, 1)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgSubscribe, Ref: "msgs", Table: "chat_messages", Event: "INSERT", Filter: "conversation_id=eq.c1"}))
	ack := readMsg(t, conn)
	assert.Equal(t, MsgSubscribed, ack.Type)
	assert.Equal(t, "msgs", ack.Ref)

	env.broker.Dispatch(NewChange("chat_messages", EventInsert, map[string]any{"conversation_id": "c2"}, 1))
	env.broker.Dispatch(NewChange("chat_messages", EventInsert, map[string]any{"conversation_id": "c1", "content": "salut"}, 1))

	msg := readMsg(t, conn)
	assert.Equal(t, MsgChange, msg.Type)
	require.NotNil(t, msg.Payload)
	assert.Equal(t, "salut", msg.Payload.Record["content"])
}

func TestHub_InvalidSubscriptionReportsError(t *testing.T) {
	env := setupHub(t)
	conn := env.dial(t, 1)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgSubscribe, Ref: "x", Table: "users"}))
	msg := readMsg(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, "INVALID_SUBSCRIPTION", msg.Code)
	assert.Equal(t, 0, env.broker.Len())
}

func TestHub_HeartbeatAndPresenceLifecycle(t *testing.T) {
	env := setupHub(t)

	first := env.dial(t, 5)
	second := env.dial(t, 5)

	require.NoError(t, first.WriteJSON(ClientMessage{Type: MsgHeartbeat}))
	assert.Equal(t, MsgPong, readMsg(t, first).Type)

	require.Eventually(t, func() bool { return env.hub.IsConnected(5) }, time.Second, 10*time.Millisecond)

	first.Close()
	time.Sleep(50 * time.Millisecond)
	assert.NotContains(t, env.presence.snapshot(), "disconnect", "one socket still open")

	second.Close()
	assert.Eventually(t, func() bool {
		return !env.hub.IsConnected(5) && assert.ObjectsAreEqual([]string{"connect", "heartbeat", "disconnect"}, env.presence.snapshot())
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_UnsubscribeAndCloseReleaseSubscriptions(t *testing.T) {
	env := setupHub(t)
	conn := env.dial(t, 3)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgSubscribe, Ref: "a", Table: "notifications"}))
	readMsg(t, conn)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgSubscribe, Ref: "b", Table: "bookings"}))
	readMsg(t, conn)
	require.Equal(t, 2, env.broker.Len())

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgUnsubscribe, Ref: "a"}))
	assert.Eventually(t, func() bool { return env.broker.Len() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return env.broker.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsMissingToken(t *testing.T) {
	env := setupHub(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/v1/realtime"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
