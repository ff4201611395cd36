package handlers

import (
	"errors"
	"net/http"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
	"github.com/mohitdudhat22/Task-Management-App/internal/notify"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SendNotification(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	var n notify.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	err := h.Notifier.Send(c.Request.Context(), n)
	switch {
	case errors.Is(err, notify.ErrMissingToken):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	case errors.Is(err, notify.ErrDelivery):
		logger.Warn("notification delivery failed", "user_id", caller.UserID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		logger.Error("notification failed", "user_id", caller.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		return
	}

	if h.AuditService != nil {
		h.AuditService.LogWithRequest(c.Request.Context(), caller.UserID,
			domain.AuditActionNotificationSend, domain.AuditCategoryNotification,
			c.ClientIP(), c.Request.UserAgent(), map[string]any{"title": n.Title})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification sent successfully"})
}
