package broadcast

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/callsys/callboard/internal/metrics"
	"github.com/callsys/callboard/internal/repository/connection/inmemory"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) *Broadcaster {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := New(rc, inmemory.NewRepo[*Client](logger), metrics.New(), logger, &Config{SendBuffer: 8})
	require.NoError(t, b.Start(ctx))

	return b
}

// serve upgrades every request and registers it; ?admin=1 marks an admin client.
func serve(t *testing.T, b *Broadcaster) (*httptest.Server, <-chan *Client) {
	t.Helper()

	registered := make(chan *Client, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client, err := b.Register(conn, r.URL.Query().Get("admin") == "1")
		if err != nil {
			conn.Close()
			return
		}
		defer b.Unregister(conn)
		if err := client.Ready(); err != nil {
			return
		}
		registered <- client

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv, registered
}

func dial(t *testing.T, srv *httptest.Server, query string, registered <-chan *Client) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client was not registered")
	}

	return conn
}

func readOutput(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&out))

	return out.Type, out.Payload
}

func TestPublishReachesEveryClient(t *testing.T) {
	b := newTestBroadcaster(t)
	srv, registered := serve(t, b)

	display := dial(t, srv, "", registered)
	admin := dial(t, srv, "admin=1", registered)

	require.NoError(t, b.Publish(context.Background(), Event{Type: "update", Payload: 7}))

	for _, conn := range []*websocket.Conn{display, admin} {
		eventType, payload := readOutput(t, conn)
		assert.Equal(t, "update", eventType)
		assert.JSONEq(t, "7", string(payload))
	}
}

func TestAdminEventsSkipDisplayClients(t *testing.T) {
	b := newTestBroadcaster(t)
	srv, registered := serve(t, b)

	display := dial(t, srv, "", registered)
	admin := dial(t, srv, "admin=1", registered)

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, Event{Type: "newAdminLog", Payload: "[10:00:00] (root) next", Audience: AudienceAdmins}))
	require.NoError(t, b.Publish(ctx, Event{Type: "update", Payload: 8}))

	eventType, _ := readOutput(t, admin)
	assert.Equal(t, "newAdminLog", eventType)
	eventType, _ = readOutput(t, admin)
	assert.Equal(t, "update", eventType)

	eventType, payload := readOutput(t, display)
	assert.Equal(t, "update", eventType)
	assert.JSONEq(t, "8", string(payload))
}

func TestEventsArriveInPublishOrder(t *testing.T) {
	b := newTestBroadcaster(t)
	srv, registered := serve(t, b)
	conn := dial(t, srv, "", registered)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, b.Publish(ctx, Event{Type: "update", Payload: i}))
	}

	for i := 1; i <= 5; i++ {
		_, payload := readOutput(t, conn)
		var n int
		require.NoError(t, json.Unmarshal(payload, &n))
		assert.Equal(t, i, n)
	}
}

func TestClientSend(t *testing.T) {
	b := newTestBroadcaster(t)
	srv, registered := serve(t, b)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	client := <-registered

	require.NoError(t, client.Send("updateSoundSetting", true))

	eventType, payload := readOutput(t, conn)
	assert.Equal(t, "updateSoundSetting", eventType)
	assert.JSONEq(t, "true", string(payload))
}

func TestUnregisterClosesConnection(t *testing.T) {
	b := newTestBroadcaster(t)
	srv, registered := serve(t, b)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	client := <-registered

	b.Unregister(client.conn)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	assert.ErrorIs(t, client.Send("update", 1), ErrClientClosed)
}

func TestFullBufferClosesClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := newClient(nil, false, &Config{SendBuffer: 1}, logger)

	assert.True(t, client.enqueue([]byte("1")))
	assert.False(t, client.enqueue([]byte("2")))
	assert.False(t, client.enqueue([]byte("3")))

	msg, ok := <-client.send
	assert.True(t, ok)
	assert.Equal(t, "1", string(msg))
	_, ok = <-client.send
	assert.False(t, ok)
}

func TestHeldClientQueuesLiveEventsAfterInitialState(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := newClient(nil, false, &Config{SendBuffer: 4}, logger)

	client.Hold()
	assert.True(t, client.push([]byte("live 1")))
	assert.True(t, client.enqueue([]byte("initial")))
	require.NoError(t, client.Ready())
	assert.True(t, client.push([]byte("live 2")))

	for _, want := range []string{"initial", "live 1", "live 2"} {
		assert.Equal(t, want, string(<-client.send))
	}
}

func TestHeldBacklogOverflowClosesClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := newClient(nil, false, &Config{SendBuffer: 2}, logger)

	client.Hold()
	assert.True(t, client.push([]byte("1")))
	assert.True(t, client.push([]byte("2")))
	assert.False(t, client.push([]byte("3")))
	assert.ErrorIs(t, client.Ready(), ErrClientClosed)

	_, ok := <-client.send
	assert.False(t, ok)
}

func TestRegisteredClientIsHeldUntilReady(t *testing.T) {
	b := newTestBroadcaster(t)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client, err := b.Register(conn, false)
		if err != nil {
			conn.Close()
			return
		}
		defer b.Unregister(conn)

		if !assert.NoError(t, b.Publish(context.Background(), Event{Type: "update", Payload: 2})) {
			return
		}
		assert.Eventually(t, func() bool {
			client.mu.Lock()
			defer client.mu.Unlock()
			return len(client.backlog) == 1
		}, 2*time.Second, 10*time.Millisecond)

		assert.NoError(t, client.Send("update", 1))
		assert.NoError(t, client.Ready())

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, payload := readOutput(t, conn)
	assert.JSONEq(t, "1", string(payload))
	_, payload = readOutput(t, conn)
	assert.JSONEq(t, "2", string(payload))
}
