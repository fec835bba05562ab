package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/pkg/events"
	"github.com/G-studio-design/aplikasi-notify/pkg/fanout"
	"github.com/G-studio-design/aplikasi-notify/pkg/types"
)

type NotifyRolesRequest struct {
	Roles     []string `json:"roles" binding:"required,min=1"`
	Title     string   `json:"title"`
	Body      string   `json:"body" binding:"required"`
	URL       string   `json:"url"`
	ProjectID string   `json:"project_id"`
	Async     bool     `json:"async"`
}

type NotifyUserRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body" binding:"required"`
	URL       string `json:"url"`
	ProjectID string `json:"project_id"`
	Async     bool   `json:"async"`
}

// NotifyHandler accepts notification requests and either dispatches them
// inline or queues them on the event bus.
type NotifyHandler struct {
	dispatcher *fanout.Dispatcher
	publisher  *events.Publisher
	log        *zap.Logger
}

func NewNotifyHandler(dispatcher *fanout.Dispatcher, publisher *events.Publisher, log *zap.Logger) *NotifyHandler {
	return &NotifyHandler{dispatcher: dispatcher, publisher: publisher, log: log}
}

func (h *NotifyHandler) NotifyRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NotifyRolesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		payload := types.NotificationPayload{Title: req.Title, Body: req.Body, URL: req.URL}

		if req.Async && h.publisher != nil {
			event := events.NewEvent(events.TypeNotifyRoles)
			event.Roles = req.Roles
			event.ProjectID = req.ProjectID
			event.Payload = payload
			if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
				h.log.Error("failed to queue role notification", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue notification"})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"status": "queued", "id": event.ID})
			return
		}

		if err := h.dispatcher.NotifyRoles(c.Request.Context(), req.Roles, payload, req.ProjectID); err != nil {
			h.log.Error("role notification failed", zap.Strings("roles", req.Roles), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to notify"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "delivered"})
	}
}

func (h *NotifyHandler) NotifyUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		var req NotifyUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		payload := types.NotificationPayload{Title: req.Title, Body: req.Body, URL: req.URL}

		if req.Async && h.publisher != nil {
			event := events.NewEvent(events.TypeNotifyUser)
			event.UserID = userID
			event.ProjectID = req.ProjectID
			event.Payload = payload
			if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
				h.log.Error("failed to queue user notification", zap.String("user_id", userID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue notification"})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"status": "queued", "id": event.ID})
			return
		}

		if err := h.dispatcher.NotifyUser(c.Request.Context(), userID, payload, req.ProjectID); err != nil {
			h.log.Error("user notification failed", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to notify"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "delivered"})
	}
}
