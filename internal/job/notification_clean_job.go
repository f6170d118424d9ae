package job

import (
	"Herald/internal/repository"
	"context"
	log "log/slog"
	"time"
)

const defaultRetentionDays = 90

// NotificationCleanJob 定期清理超出保留期的已读通知
type NotificationCleanJob struct {
	notificationRepo repository.NotificationRepo
	retentionDays    int
}

func NewNotificationCleanJob(notificationRepo repository.NotificationRepo, retentionDays int) *NotificationCleanJob {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &NotificationCleanJob{
		notificationRepo: notificationRepo,
		retentionDays:    retentionDays,
	}
}

func (s *NotificationCleanJob) Run() {
	ctx := context.Background()
	log.Info("start notification cleanup job")

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	count, err := s.notificationRepo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		log.Error("failed to clean read notifications", "err", err)
		return
	}

	if count > 0 {
		log.Info("notification cleanup job finished", "cleaned_count", count)
	}
}
