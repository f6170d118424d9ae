package ws

import (
	"Herald/internal/pkg/relay"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRelay 进程内广播实现，用于观察订阅数与投递
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

// fakeConn 记录写入帧的连接替身
type fakeConn struct {
	mu       sync.Mutex
	frames   []string
	closed   int
	writeErr error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, string(data))
	return nil
}

func (c *fakeConn) SetWriteDeadline(_ time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestHub_FanOutToAllUserConns(t *testing.T) {
	r := newMemoryRelay()
	hub := NewHub(r)
	ctx := context.Background()

	conn1, conn2 := &fakeConn{}, &fakeConn{}
	c1, c2 := NewClient(conn1), NewClient(conn2)
	hub.Bind(ctx, "u1", c1)
	hub.Bind(ctx, "u1", c2)

	assert.Equal(t, 2, hub.ConnCount("u1"))
	// 同一用户共享一份订阅
	assert.Equal(t, 1, r.Subscribers("notification:u1"))

	require.NoError(t, r.Publish(ctx, "notification:u1", []byte(`{"eventId":"e1"}`)))

	require.Eventually(t, func() bool {
		return conn1.frameCount() == 1 && conn2.frameCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, `{"eventId":"e1"}`, conn1.frames[0])
}

func TestHub_OtherUserNotDelivered(t *testing.T) {
	r := newMemoryRelay()
	hub := NewHub(r)
	ctx := context.Background()

	conn1, conn2 := &fakeConn{}, &fakeConn{}
	hub.Bind(ctx, "u1", NewClient(conn1))
	hub.Bind(ctx, "u2", NewClient(conn2))

	require.NoError(t, r.Publish(ctx, "notification:u1", []byte("hi")))

	require.Eventually(t, func() bool {
		return conn1.frameCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, conn2.frameCount())
}

func TestHub_LastUnbindReleasesSubscription(t *testing.T) {
	r := newMemoryRelay()
	hub := NewHub(r)
	ctx := context.Background()

	conn1, conn2 := &fakeConn{}, &fakeConn{}
	c1, c2 := NewClient(conn1), NewClient(conn2)
	hub.Bind(ctx, "u1", c1)
	hub.Bind(ctx, "u1", c2)

	// 先断开一条，剩余连接仍可收到消息
	hub.Unbind(c1)
	assert.Equal(t, 1, r.Subscribers("notification:u1"))

	require.NoError(t, r.Publish(ctx, "notification:u1", []byte("hi")))
	require.Eventually(t, func() bool {
		return conn2.frameCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, conn1.frameCount())

	// 最后一条断开后订阅释放
	hub.Unbind(c2)
	assert.Equal(t, 0, hub.ConnCount("u1"))
	require.Eventually(t, func() bool {
		return r.Subscribers("notification:u1") == 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, r.Publish(ctx, "notification:u1", []byte("after close")))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, conn2.frameCount())
}

func TestHub_RebindIgnored(t *testing.T) {
	r := newMemoryRelay()
	hub := NewHub(r)
	ctx := context.Background()

	c := NewClient(&fakeConn{})
	hub.Bind(ctx, "u1", c)
	hub.Bind(ctx, "u2", c)

	assert.Equal(t, "u1", c.UserID())
	assert.Equal(t, 1, hub.ConnCount("u1"))
	assert.Equal(t, 0, hub.ConnCount("u2"))
}

func TestHub_EmptyUserIgnored(t *testing.T) {
	r := newMemoryRelay()
	hub := NewHub(r)

	c := NewClient(&fakeConn{})
	hub.Bind(context.Background(), "", c)
	assert.Equal(t, "", c.UserID())
}

func TestHub_UnbindUnboundNoop(t *testing.T) {
	hub := NewHub(newMemoryRelay())
	hub.Unbind(NewClient(&fakeConn{}))
}

func TestHub_SendErrorSkipsConn(t *testing.T) {
	r := newMemoryRelay()
	hub := NewHub(r)
	ctx := context.Background()

	broken := &fakeConn{writeErr: assert.AnError}
	healthy := &fakeConn{}
	hub.Bind(ctx, "u1", NewClient(broken))
	hub.Bind(ctx, "u1", NewClient(healthy))

	require.NoError(t, r.Publish(ctx, "notification:u1", []byte("hi")))

	require.Eventually(t, func() bool {
		return healthy.frameCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestClient_CloseIdempotent(t *testing.T) {
	conn := &fakeConn{}
	c := NewClient(conn)
	c.Close()
	c.Close()
	assert.Equal(t, 1, conn.closed)
}
