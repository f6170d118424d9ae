package service

import (
	"Herald/internal/api/dto"
	"Herald/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// NotificationService 通知查询与已读状态服务
type NotificationService interface {
	GetNotificationList(ctx context.Context, userID string, page, pageSize int) ([]*dto.NotificationDTO, error)
	GetUnreadCount(ctx context.Context, userID string) (*dto.NotificationUnreadDTO, error)
	MarkRead(ctx context.Context, userID string, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepo
}

func NewNotificationService(notificationRepo repository.NotificationRepo) NotificationService {
	return &notificationServiceImpl{notificationRepo: notificationRepo}
}

// GetNotificationList 分页获取通知列表
func (s *notificationServiceImpl) GetNotificationList(ctx context.Context, userID string, page, pageSize int) ([]*dto.NotificationDTO, error) {
	limit := pageSize
	offset := (page - 1) * pageSize

	list, err := s.notificationRepo.GetListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, m := range list {
		d := &dto.NotificationDTO{}
		_ = copier.Copy(d, m)
		d.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
		res = append(res, d)
	}

	return res, nil
}

// GetUnreadCount 获取未读数
func (s *notificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (*dto.NotificationUnreadDTO, error) {
	count, err := s.notificationRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationUnreadDTO{UnreadCount: count}, nil
}

// MarkRead 标记单条已读
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID string, id string) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	if notification.UserID != userID {
		return UnauthorizedError
	}

	if notification.IsRead {
		return nil
	}

	return s.notificationRepo.MarkAsRead(ctx, userID, id)
}

// MarkAllRead 一键已读
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}
