package service

import (
	"Herald/internal/api/dto"
	"Herald/internal/model"
	"Herald/internal/pkg/consts"
	"Herald/internal/pkg/relay"
	"Herald/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// DeliveryService 队列消息处理单元：解码 -> 落库 -> 广播
// 三步全部成功才返回 nil，调用方据此确认删除队列消息
type DeliveryService interface {
	HandleMessage(ctx context.Context, body string) error
}

type deliveryServiceImpl struct {
	notificationRepo repository.NotificationRepo
	relay            relay.Relay
	typeMap          map[string]string
}

func NewDeliveryService(notificationRepo repository.NotificationRepo, r relay.Relay, typeMap map[string]string) DeliveryService {
	return &deliveryServiceImpl{
		notificationRepo: notificationRepo,
		relay:            r,
		typeMap:          typeMap,
	}
}

func (s *deliveryServiceImpl) HandleMessage(ctx context.Context, body string) error {
	event, err := DecodeEvent(body)
	if err != nil {
		log.ErrorContext(ctx, "notification event decode failed", "err", err)
		return err
	}

	record := NewRecord(event, s.typeMap)
	if err = s.notificationRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			// 重投递：记录已存在视为落库成功，继续广播
			log.WarnContext(ctx, "duplicate notification event", "eventId", event.EventID)
		} else {
			log.ErrorContext(ctx, "notification persist failed", "eventId", event.EventID, "err", err)
			return err
		}
	}

	if err = s.publish(ctx, event); err != nil {
		log.ErrorContext(ctx, "notification broadcast failed", "eventId", event.EventID, "err", err)
		return err
	}

	return nil
}

// NewRecord 由通知事件构造持久化记录
func NewRecord(event *dto.NotificationEvent, typeMap map[string]string) *model.Notification {
	notification := &model.Notification{
		ID:        uuid.NewString(),
		EventID:   event.EventID,
		UserID:    event.TargetUserID,
		Type:      NormalizeType(typeMap, event.Type),
		Message:   GenerateMessage(event.Type, event.PostTitle),
		IsRead:    false,
		CreatedAt: parseEventTime(event.CreatedAt),
	}

	if notification.EventID == "" {
		// 生产方未携带去重键时以生成 ID 兜底，保证唯一索引可用
		notification.EventID = notification.ID
	}
	if v := event.TriggeredByID(); v != "" {
		notification.TriggeredByID = &v
	}
	if v := event.PostID; v != "" {
		notification.EntityID = &v
	}
	if v := event.PostType; v != "" {
		notification.EntityType = &v
	}

	return notification
}

// parseEventTime 解析事件时间戳，缺失或非法时回退为接收时刻
func parseEventTime(value string) time.Time {
	if value != "" {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t
		}
	}
	return time.Now()
}

// publish 向接收者的用户频道广播事件
func (s *deliveryServiceImpl) publish(ctx context.Context, event *dto.NotificationEvent) error {
	message := &dto.BroadcastMessage{}
	_ = copier.Copy(message, event)
	message.TriggeredByID = event.TriggeredByID()

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return s.relay.Publish(ctx, consts.NotificationChannelKey+event.TargetUserID, data)
}
