package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Conn 客户端连接所需的最小写接口
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client 单条客户端连接，绑定后 userID 不再变化
type Client struct {
	conn Conn

	mu     sync.Mutex
	once   sync.Once
	userID string
}

func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// UserID 返回绑定的用户 ID，未绑定时为空
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) bind(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// Send 推送一条消息，写操作串行化并设置写超时
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close 幂等关闭底层连接
func (c *Client) Close() {
	c.once.Do(func() {
		_ = c.conn.Close()
	})
}
