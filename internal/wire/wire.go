package wire

import (
	"Herald/internal/api"
	"Herald/internal/api/config"
	"Herald/internal/api/handler"
	"Herald/internal/job"
	"Herald/internal/pkg/cron"
	"Herald/internal/pkg/relay"
	"Herald/internal/pkg/sqs"
	"Herald/internal/pkg/ws"
	"Herald/internal/repository"
	"Herald/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router   *gin.Engine
	DB       *gorm.DB
	Hub      *ws.Hub
	Consumer *sqs.Consumer
	CronMgr  *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	notificationRepo := repository.NewNotificationRepo(db)

	notificationRelay := relay.NewRedisRelay()
	deliveryService := service.NewDeliveryService(notificationRepo, notificationRelay, cfg.Notify.TypeMap)
	notificationService := service.NewNotificationService(notificationRepo)

	hub := ws.NewHub(notificationRelay)

	handlers := &api.HandlersGroup{
		WsHandler:           handler.NewWsHandler(hub),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
	}

	router := api.SetupRouter(handlers)

	consumer := sqs.NewConsumer(sqs.Client, cfg.SQS, deliveryService.HandleMessage)

	cleanJob := job.NewNotificationCleanJob(notificationRepo, cfg.Notify.RetentionDays)
	cronMgr := cron.NewCronManager(cleanJob)

	return &ApplicationContainer{
		Router:   router,
		DB:       db,
		Hub:      hub,
		Consumer: consumer,
		CronMgr:  cronMgr,
	}, nil
}
