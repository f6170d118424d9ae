package handler

import (
	"Herald/internal/pkg/relay"
	"Herald/internal/pkg/ws"
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
)

type memoryRelay struct {
	mu   sync.Mutex
	subs map[string][]*memorySub
}

func newMemoryRelay() *memoryRelay {
	return &memoryRelay{subs: make(map[string][]*memorySub)}
}

func (r *memoryRelay) Publish(_ context.Context, channel string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs[channel] {
		s.ch <- string(payload)
	}
	return nil
}

func (r *memoryRelay) Subscribe(_ context.Context, channel string) relay.Subscription {
	s := &memorySub{relay: r, channel: channel, ch: make(chan string, 16)}
	r.mu.Lock()
	r.subs[channel] = append(r.subs[channel], s)
	r.mu.Unlock()
	return s
}

func (r *memoryRelay) Subscribers(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[channel])
}

type memorySub struct {
	relay   *memoryRelay
	channel string
	ch      chan string
	once    sync.Once
}

func (s *memorySub) Messages() <-chan string { return s.ch }

func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.relay.mu.Lock()
		list := s.relay.subs[s.channel]
		for i, cur := range list {
			if cur == s {
				s.relay.subs[s.channel] = append(list[:i], list[i+1:]...)
				break
			}
		}
		s.relay.mu.Unlock()
		close(s.ch)
	})
	return nil
}

func setupWsServer(t *testing.T) (*memoryRelay, *ws.Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := newMemoryRelay()
	hub := ws.NewHub(r)

	engine := gin.New()
	engine.GET("/api/ws", NewWsHandler(hub).Connect)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return r, hub, srv
}

func dialWs(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestConnect_InitBindsAndDelivers(t *testing.T) {
	r, hub, srv := setupWsServer(t)
	conn := dialWs(t, srv)

	// INIT 前的帧被忽略，连接保持
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"PING"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`)))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"INIT","userId":"u1"}`)))
	require.Eventually(t, func() bool {
		return hub.ConnCount("u1") == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, r.Subscribers("notification:u1"))

	require.NoError(t, r.Publish(context.Background(), "notification:u1", []byte(`{"eventId":"e1"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"eventId":"e1"}`, string(payload))
}

func TestConnect_InitWithoutUserIgnored(t *testing.T) {
	r, _, srv := setupWsServer(t)
	conn := dialWs(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"INIT"}`)))

	time.Sleep(50 * time.Millisecond)
	r.mu.Lock()
	assert.Empty(t, r.subs)
	r.mu.Unlock()
}

func TestConnect_DisconnectReleasesSubscription(t *testing.T) {
	r, hub, srv := setupWsServer(t)
	conn := dialWs(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"INIT","userId":"u1"}`)))
	require.Eventually(t, func() bool {
		return r.Subscribers("notification:u1") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.ConnCount("u1") == 0 && r.Subscribers("notification:u1") == 0
	}, time.Second, 10*time.Millisecond)
}
