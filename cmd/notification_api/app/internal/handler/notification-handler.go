package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/pkg/repositories"
)

// NotificationHandler exposes the in-app notification log.
type NotificationHandler struct {
	notifications *repositories.NotificationRepository
	log           *zap.Logger
}

func NewNotificationHandler(notifications *repositories.NotificationRepository, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

// ListForUser returns a user's notifications newest first.
func (h *NotificationHandler) ListForUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		records, err := h.notifications.ListForUser(c.Request.Context(), userID)
		if err != nil {
			h.log.Error("failed to list notifications", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": records})
	}
}

func (h *NotificationHandler) MarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := h.notifications.MarkRead(c.Request.Context(), id)
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		if err != nil {
			h.log.Error("failed to mark notification read", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "read"})
	}
}

// DeleteByProject removes every notification tied to a project. Used by the
// project-deletion cascade.
func (h *NotificationHandler) DeleteByProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")
		if err := h.notifications.DeleteByProject(c.Request.Context(), projectID); err != nil {
			h.log.Error("failed to delete project notifications", zap.String("project_id", projectID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func (h *NotificationHandler) ClearAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.notifications.ClearAll(c.Request.Context()); err != nil {
			h.log.Error("failed to clear notifications", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	}
}
