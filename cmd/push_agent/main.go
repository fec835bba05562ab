package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/cmd/push_agent/handler"
	"github.com/G-studio-design/aplikasi-notify/logger"
	"github.com/G-studio-design/aplikasi-notify/metrics"
	"github.com/G-studio-design/aplikasi-notify/middlewares"
	"github.com/G-studio-design/aplikasi-notify/pkg/agent"
	"github.com/G-studio-design/aplikasi-notify/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	logr, err := logger.InitLogger()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	defer logr.Sync()

	logr.Info("Starting push agent service")
	metrics.InitAgentMetrics()

	origin := utils.GetEnvDefault("APP_ORIGIN", "http://localhost:3000")
	registry := agent.NewViewRegistry()
	ag, err := agent.New(origin, agent.NewLogPresenter(logr), registry, agent.NewExecOpener(), logr)
	if err != nil {
		logr.Fatal("failed to initialize agent", zap.Error(err))
	}
	h := handler.NewAgentHandler(ag, registry, logr)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /push", h.HandlePush)
	mux.HandleFunc("POST /notifications/{id}/click", h.HandleClick)
	mux.HandleFunc("POST /views", h.RegisterView)
	mux.HandleFunc("DELETE /views/{id}", h.UnregisterView)

	srv := &http.Server{
		Addr:    ":" + utils.GetEnvDefault("AGENT_PORT", "3002"),
		Handler: middlewares.MetricsMiddleware(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("push agent listening", zap.String("addr", srv.Addr), zap.String("origin", origin))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("agent server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down push agent")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown failed", zap.Error(err))
	}
	ag.Drain()
	logr.Info("push agent stopped")
}
