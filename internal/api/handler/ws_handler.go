package handler

import (
	"Herald/internal/api/dto"
	"Herald/internal/pkg/ws"
	"context"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	hub *ws.Hub
}

func NewWsHandler(hub *ws.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect 建立 Websocket 连接
// 连接先建立后认领：客户端发送 INIT 帧绑定用户，其余帧忽略
func (s *WsHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	client := ws.NewClient(conn)
	defer func() {
		s.hub.Unbind(client)
		client.Close()
	}()

	log.Info("WS 连接已建立", "remote", conn.RemoteAddr().String())

	// 读循环：解析 INIT 帧，连接断开时退出
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			log.Info("WS 连接已断开", "userID", client.UserID())
			return
		}

		var frame dto.ClientFrame
		if err = json.Unmarshal(payload, &frame); err != nil {
			// 无法解析的帧直接忽略
			continue
		}

		if frame.Type == dto.FrameTypeInit && frame.UserID != "" {
			// 订阅生命周期跟随连接而非本次请求
			s.hub.Bind(context.Background(), frame.UserID, client)
		}
	}
}
