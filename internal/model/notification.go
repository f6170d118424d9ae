package model

import (
	"time"
)

type Notification struct {
	ID            string  `gorm:"type:varchar(36);primaryKey"`
	EventID       string  `gorm:"type:varchar(64);uniqueIndex:idx_event_id"`
	UserID        string  `gorm:"type:varchar(36);index:idx_user_id"`
	Type          string  `gorm:"type:varchar(32)"`
	Message       string  `gorm:"type:varchar(255)"`
	TriggeredByID *string `gorm:"type:varchar(36)"`
	EntityID      *string `gorm:"type:varchar(64)"`
	EntityType    *string `gorm:"type:varchar(32)"`
	IsRead        bool    `gorm:"type:tinyint(1);default:0"`
	CreatedAt     time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
