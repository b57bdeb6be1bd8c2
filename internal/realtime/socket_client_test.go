package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

type testFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// echoServer answers get-online-users with an online-users count and records
// the token query parameter of the handshake.
func newEchoServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var gotToken string
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotToken = r.URL.Query().Get("token")
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var f testFrame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if f.Event == "get-online-users" {
				conn.WriteJSON(map[string]interface{}{
					"event": "online-users",
					"data":  map[string]int{"count": 3},
				})
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &gotToken
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, ch <-chan interface{}) interface{} {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSocketClientConnectAndEmit(t *testing.T) {
	srv, gotToken := newEchoServer(t)
	client := NewSocketClient(wsURL(srv))

	received := make(chan interface{}, 1)
	off := client.On(EventOnlineUsers, func(payload interface{}) {
		received <- payload
	})
	defer off()

	require.NoError(t, client.Connect(context.Background(), "tok-abc"))
	defer client.Disconnect()
	assert.True(t, client.Connected())

	require.NoError(t, client.Emit(EventGetOnlineUsers, nil))

	payload := waitFor(t, received)
	data, ok := payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["count"])
	assert.Equal(t, "tok-abc", *gotToken)
}

func TestSocketClientConnectIdempotent(t *testing.T) {
	srv, _ := newEchoServer(t)
	client := NewSocketClient(wsURL(srv))

	require.NoError(t, client.Connect(context.Background(), ""))
	defer client.Disconnect()

	assert.NoError(t, client.Connect(context.Background(), ""))
}

func TestSocketClientOff(t *testing.T) {
	srv, _ := newEchoServer(t)
	client := NewSocketClient(wsURL(srv))

	received := make(chan interface{}, 2)
	off := client.On(EventOnlineUsers, func(payload interface{}) {
		received <- payload
	})

	require.NoError(t, client.Connect(context.Background(), ""))
	defer client.Disconnect()

	require.NoError(t, client.Emit(EventGetOnlineUsers, nil))
	waitFor(t, received)

	off()
	require.NoError(t, client.Emit(EventGetOnlineUsers, nil))

	select {
	case <-received:
		t.Fatal("handler fired after unsubscribe")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSocketClientEmitWhileDisconnected(t *testing.T) {
	client := NewSocketClient("ws://127.0.0.1:0")
	assert.Error(t, client.Emit(EventGetOnlineUsers, nil))
	assert.False(t, client.Connected())
}

type staticTokenSource struct {
	token string
	err   error
	calls int
}

func (s *staticTokenSource) AuthToken(_ context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

func TestSessionEnsureConnected(t *testing.T) {
	srv, gotToken := newEchoServer(t)
	client := NewSocketClient(wsURL(srv))
	tokens := &staticTokenSource{token: "tok-1"}
	session := NewSession(client, tokens)

	hookFired := make(chan interface{}, 1)
	offHook := session.OnConnect(func() { hookFired <- struct{}{} })
	defer offHook()

	require.NoError(t, session.EnsureConnected(context.Background()))
	defer session.Close()

	waitFor(t, hookFired)
	assert.Equal(t, "tok-1", *gotToken)
	assert.True(t, session.Connected())

	// Already connected: no second token fetch, no second hook invocation.
	require.NoError(t, session.EnsureConnected(context.Background()))
	assert.Equal(t, 1, tokens.calls)
}
