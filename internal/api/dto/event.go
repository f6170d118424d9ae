package dto

const (
	EventTypePostLike    = "POST_LIKE"
	EventTypePostComment = "POST_COMMENT"
)

// QueueEnvelope 队列消息的外层传输信封（SNS -> SQS 投递包装）
type QueueEnvelope struct {
	Message string `json:"Message"`
}

// NotificationEvent 解码后的通知事件
type NotificationEvent struct {
	EventID         string         `json:"eventId"`
	Type            string         `json:"type"`
	TargetUserID    string         `json:"targetUserId" validate:"required"`
	UserID          string         `json:"userId,omitempty"`
	TriggeredByType string         `json:"triggeredByType,omitempty"`
	PostID          string         `json:"postId,omitempty"`
	PostType        string         `json:"postType,omitempty"`
	PostTitle       string         `json:"postTitle,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       string         `json:"createdAt,omitempty"`
}

// TriggeredByID 解析触发者：优先 metadata.triggeredById，回退顶层 userId
func (e *NotificationEvent) TriggeredByID() string {
	if e.Metadata != nil {
		if v, ok := e.Metadata["triggeredById"].(string); ok && v != "" {
			return v
		}
	}
	return e.UserID
}

// BroadcastMessage 广播频道上的消息载荷，字段显式列出，不透传未知字段
type BroadcastMessage struct {
	EventID       string         `json:"eventId"`
	Type          string         `json:"type"`
	TargetUserID  string         `json:"targetUserId"`
	TriggeredByID string         `json:"triggeredById,omitempty"`
	PostID        string         `json:"postId,omitempty"`
	PostType      string         `json:"postType,omitempty"`
	PostTitle     string         `json:"postTitle,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     string         `json:"createdAt,omitempty"`
}
