package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/cmd/notification_api/app/internal/handler"
	"github.com/G-studio-design/aplikasi-notify/middlewares"
	"github.com/G-studio-design/aplikasi-notify/pkg/events"
	"github.com/G-studio-design/aplikasi-notify/pkg/fanout"
	"github.com/G-studio-design/aplikasi-notify/pkg/repositories"
)

func Notify(r *gin.RouterGroup, dispatcher *fanout.Dispatcher, publisher *events.Publisher, rdb *redis.Client, limiter *middlewares.RateLimiter, log *zap.Logger) {
	notifyHandler := handler.NewNotifyHandler(dispatcher, publisher, log)

	r.Use(limiter.Middleware())
	r.Use(middlewares.IdempotencyMiddleware(rdb))
	r.POST("/roles", notifyHandler.NotifyRoles())
	r.POST("/users/:id", notifyHandler.NotifyUser())
}

func Events(r *gin.RouterGroup, publisher *events.Publisher, rdb *redis.Client, limiter *middlewares.RateLimiter, log *zap.Logger) {
	eventHandler := handler.NewEventHandler(publisher, log)

	r.Use(limiter.Middleware())
	r.Use(middlewares.IdempotencyMiddleware(rdb))
	r.POST("/", eventHandler.Publish())
}

func Notifications(r *gin.RouterGroup, notifications *repositories.NotificationRepository, log *zap.Logger) {
	notificationHandler := handler.NewNotificationHandler(notifications, log)

	r.GET("/users/:id", notificationHandler.ListForUser())
	r.PATCH("/:id/read", notificationHandler.MarkRead())
	r.DELETE("/projects/:id", notificationHandler.DeleteByProject())
	r.DELETE("/", notificationHandler.ClearAll())
}

func Subscriptions(r *gin.RouterGroup, subscriptions *repositories.SubscriptionRepository, log *zap.Logger) {
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptions, log)

	r.POST("/", subscriptionHandler.Subscribe())
	r.POST("/unsubscribe", subscriptionHandler.Unsubscribe())
	r.GET("/users/:id", subscriptionHandler.ListForUser())
}
