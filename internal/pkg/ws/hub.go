package ws

import (
	"Herald/internal/pkg/consts"
	"Herald/internal/pkg/relay"
	"context"
	log "log/slog"
	"sync"
)

// Hub 连接注册表：user -> socket 集合，user -> 中继订阅
// 每个用户至多一份订阅，按该用户在线连接数引用计数
type Hub struct {
	relay relay.Relay

	mu    sync.Mutex
	conns map[string]map[*Client]struct{}
	subs  map[string]relay.Subscription
}

func NewHub(r relay.Relay) *Hub {
	return &Hub{
		relay: r,
		conns: make(map[string]map[*Client]struct{}),
		subs:  make(map[string]relay.Subscription),
	}
}

// Bind 将连接绑定到用户；该用户的首个连接会建立中继订阅
// 已绑定的连接再次 Bind 不支持换绑，保持原绑定
func (h *Hub) Bind(ctx context.Context, userID string, c *Client) {
	if userID == "" || c.UserID() != "" {
		return
	}

	h.mu.Lock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.conns[userID] = set
	}
	set[c] = struct{}{}

	if _, ok = h.subs[userID]; !ok {
		sub := h.relay.Subscribe(ctx, consts.NotificationChannelKey+userID)
		h.subs[userID] = sub
		go h.forward(userID, sub)
	}
	h.mu.Unlock()

	c.bind(userID)
	log.InfoContext(ctx, "ws connection bound", "userID", userID)
}

// Unbind 解除连接注册；该用户最后一条连接断开时释放订阅
func (h *Hub) Unbind(c *Client) {
	userID := c.UserID()
	if userID == "" {
		return
	}

	h.mu.Lock()
	if set, ok := h.conns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, userID)
			if sub, ok := h.subs[userID]; ok {
				delete(h.subs, userID)
				_ = sub.Close()
			}
		}
	}
	h.mu.Unlock()

	log.Info("ws connection unbound", "userID", userID)
}

// forward 将订阅消息原样扇出到该用户当前的所有连接
func (h *Hub) forward(userID string, sub relay.Subscription) {
	for payload := range sub.Messages() {
		h.mu.Lock()
		targets := make([]*Client, 0, len(h.conns[userID]))
		for c := range h.conns[userID] {
			targets = append(targets, c)
		}
		h.mu.Unlock()

		for _, c := range targets {
			if err := c.Send([]byte(payload)); err != nil {
				// 发送途中断开的连接跳过，清理由读循环负责
				log.Warn("ws push failed", "userID", userID, "err", err)
			}
		}
	}
}

// ConnCount 指定用户当前在线连接数
func (h *Hub) ConnCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[userID])
}
