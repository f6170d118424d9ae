package repository

import (
	"Herald/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrDuplicateEvent 同一 event_id 已落库（队列重投递）
var ErrDuplicateEvent = errors.New("duplicate notification event")

type NotificationRepo interface {
	Create(ctx context.Context, notification *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	GetListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID string, id string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}

type NotificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &NotificationRepoImpl{db: db}
}

// Create 写入一条通知记录，event_id 唯一索引冲突返回 ErrDuplicateEvent
func (s *NotificationRepoImpl) Create(ctx context.Context, notification *model.Notification) error {
	result := s.db.WithContext(ctx).Create(notification)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEvent
		}
		return errors.Wrap(result.Error, "create notification")
	}
	return nil
}

func (s *NotificationRepoImpl) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var notification model.Notification
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&notification)

	if result.Error != nil {
		return nil, result.Error
	}
	return &notification, nil
}

// GetListByUserID 按时间倒序分页获取用户通知
func (s *NotificationRepoImpl) GetListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Notification, error) {
	var notifications []*model.Notification
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications)

	if result.Error != nil {
		return nil, result.Error
	}
	return notifications, nil
}

// GetUnreadCount 获取用户未读通知数量
func (s *NotificationRepoImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// MarkAsRead 标记单条通知已读
func (s *NotificationRepoImpl) MarkAsRead(ctx context.Context, userID string, id string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)

	return errors.Wrap(result.Error, "mark notification read")
}

// MarkAllAsRead 标记用户全部通知已读
func (s *NotificationRepoImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	return errors.Wrap(result.Error, "mark all notifications read")
}

// DeleteReadBefore 删除指定时间之前的已读通知，返回删除条数
func (s *NotificationRepoImpl) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&model.Notification{})

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
