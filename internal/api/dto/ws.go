package dto

// FrameTypeInit 客户端绑定用户的握手帧类型
const FrameTypeInit = "INIT"

// ClientFrame WebSocket 客户端控制帧
type ClientFrame struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}
