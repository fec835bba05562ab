package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/pkg/models"
	"github.com/G-studio-design/aplikasi-notify/pkg/repositories"
)

// SubscribeRequest mirrors the browser PushSubscription JSON plus the owning
// user.
type SubscribeRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	UserID   string `json:"user_id"`
}

type SubscriptionHandler struct {
	subscriptions *repositories.SubscriptionRepository
	log           *zap.Logger
}

func NewSubscriptionHandler(subscriptions *repositories.SubscriptionRepository, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, log: log}
}

// Subscribe upserts a push subscription keyed by endpoint. Re-registering an
// endpoint refreshes its keys and can move it to another user.
func (h *SubscriptionHandler) Subscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription"})
			return
		}

		sub := models.PushSubscription{
			Endpoint: req.Endpoint,
			UserID:   req.UserID,
			P256dh:   req.Keys.P256dh,
			Auth:     req.Keys.Auth,
		}
		if err := h.subscriptions.Save(c.Request.Context(), sub); err != nil {
			h.log.Error("failed to save subscription", zap.String("user_id", req.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "subscribed"})
	}
}

// Unsubscribe drops a subscription. With a user_id the removal only applies
// when that user owns the endpoint.
func (h *SubscriptionHandler) Unsubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UnsubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var err error
		if req.UserID != "" {
			err = h.subscriptions.RemoveForUser(c.Request.Context(), req.UserID, req.Endpoint)
		} else {
			err = h.subscriptions.Remove(c.Request.Context(), req.Endpoint)
		}
		if err != nil {
			h.log.Error("failed to remove subscription", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove subscription"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
	}
}

func (h *SubscriptionHandler) ListForUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		subs, err := h.subscriptions.ListForUser(c.Request.Context(), userID)
		if err != nil {
			h.log.Error("failed to list subscriptions", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list subscriptions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
	}
}
