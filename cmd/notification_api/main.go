package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/G-studio-design/aplikasi-notify/cmd/notification_api/app/routes"
	"github.com/G-studio-design/aplikasi-notify/logger"
	"github.com/G-studio-design/aplikasi-notify/metrics"
	"github.com/G-studio-design/aplikasi-notify/middlewares"
	"github.com/G-studio-design/aplikasi-notify/pkg/config"
	"github.com/G-studio-design/aplikasi-notify/pkg/database"
	"github.com/G-studio-design/aplikasi-notify/pkg/directory"
	"github.com/G-studio-design/aplikasi-notify/pkg/events"
	"github.com/G-studio-design/aplikasi-notify/pkg/fanout"
	"github.com/G-studio-design/aplikasi-notify/pkg/kafka"
	"github.com/G-studio-design/aplikasi-notify/pkg/models"
	"github.com/G-studio-design/aplikasi-notify/pkg/repositories"
	"github.com/G-studio-design/aplikasi-notify/pkg/utils"
	"github.com/G-studio-design/aplikasi-notify/tracing"
)

func main() {
	_ = godotenv.Load()

	logr, err := logger.InitLogger()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	defer logr.Sync()
	logr.Info("Starting notification API service")

	shutdownTracer := tracing.InitTracer("notification_api", logr)
	defer shutdownTracer()

	cfg, err := config.LoadConfig("./config.yaml")
	if err != nil {
		logr.Warn("config file not loaded, falling back to environment", zap.Error(err))
		cfg = config.FromEnv()
	}

	db, err := database.InitDB(utils.GetEnvDefault("NOTIFY_DB", "notify.db"))
	if err != nil {
		logr.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateDB(db, &models.Notification{}, &models.PushSubscription{}); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	rdb := database.InitRedis(utils.GetEnvDefault("REDIS_ADDR", "localhost:6379"))

	notifications := repositories.NewNotificationRepository(db, cfg.Log.Limit)
	subscriptions := repositories.NewSubscriptionRepository(db)

	dir := directory.NewHTTPDirectory(utils.GetEnvDefault("DIRECTORY_URL", "http://localhost:3000"))
	resolver := directory.NewResolver(dir)

	transport := config.BuildTransport(cfg)
	if transport == nil {
		logr.Warn("push credentials not configured, push delivery disabled")
	}
	dispatcher := fanout.NewDispatcher(resolver, notifications, subscriptions, transport, logr)

	metrics.InitAPIMetrics()
	metrics.InitKafkaMetrics()

	broker := utils.GetEnv("KAFKA_BROKER")
	producer := kafka.NewProducer([]string{broker})
	publisher := events.NewPublisher(producer)
	logr.Info("Kafka producer initialized", zap.String("broker", broker))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventHandler := events.NewHandler(dispatcher, notifications, events.NewRedisDeduper(rdb), logr)
	go eventHandler.Run(ctx, broker)

	limiter := middlewares.NewRateLimiter(rate.Limit(10), 20)

	router := gin.Default()
	router.Use(middlewares.GinMetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	routes.Notify(v1.Group("/notify"), dispatcher, publisher, rdb, limiter, logr)
	routes.Events(v1.Group("/events"), publisher, rdb, limiter, logr)
	routes.Notifications(v1.Group("/notifications"), notifications, logr)
	routes.Subscriptions(v1.Group("/subscriptions"), subscriptions, logr)

	go handleShutdown(producer, cancel, logr)
	if err := router.Run(":" + utils.GetEnvDefault("API_PORT", "3001")); err != nil {
		logr.Fatal("failed to start server", zap.Error(err))
	}
}

func handleShutdown(producer *kafka.Producer, cancel context.CancelFunc, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	cancel()

	if err := producer.Close(); err != nil {
		log.Error("Error closing Kafka producer", zap.Error(err))
	} else {
		log.Info("Kafka producer closed cleanly")
	}

	os.Exit(0)
}
