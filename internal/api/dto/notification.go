package dto

// NotificationDTO 通知列表返回对象
type NotificationDTO struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	TriggeredByID string `json:"triggered_by_id,omitempty"`
	EntityID      string `json:"entity_id,omitempty"`
	EntityType    string `json:"entity_type,omitempty"`
	IsRead        bool   `json:"is_read"`
	CreatedAt     string `json:"created_at"`
}

// NotificationUnreadDTO 未读数返回
type NotificationUnreadDTO struct {
	UnreadCount int64 `json:"unread_count"`
}
