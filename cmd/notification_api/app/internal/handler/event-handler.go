package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/pkg/events"
	"github.com/G-studio-design/aplikasi-notify/pkg/types"
)

type EventRequest struct {
	Type      string   `json:"type" binding:"required"`
	Roles     []string `json:"roles"`
	UserID    string   `json:"user_id"`
	ProjectID string   `json:"project_id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	URL       string   `json:"url"`
}

// EventHandler publishes domain events onto the bus for callers that cannot
// reach Kafka directly.
type EventHandler struct {
	publisher *events.Publisher
	log       *zap.Logger
}

func NewEventHandler(publisher *events.Publisher, log *zap.Logger) *EventHandler {
	return &EventHandler{publisher: publisher, log: log}
}

func (h *EventHandler) Publish() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		event := events.NewEvent(req.Type)
		event.Roles = req.Roles
		event.UserID = req.UserID
		event.ProjectID = req.ProjectID
		event.Payload = types.NotificationPayload{Title: req.Title, Body: req.Body, URL: req.URL}

		if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
			h.log.Error("failed to publish event", zap.String("type", req.Type), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish event"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "id": event.ID})
	}
}
