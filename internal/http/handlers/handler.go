package handlers

import (
	"net/http"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/http/middleware"
	"github.com/mohitdudhat22/Task-Management-App/internal/notify"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Tasks        *service.TaskService
	AuditService *service.AuditService
	AdminService *service.AdminService
	Notifier     notify.Sender
}

func NewHandler(tasks *service.TaskService, audit *service.AuditService, admin *service.AdminService, notifier notify.Sender) *Handler {
	if notifier == nil {
		notifier = notify.LogSender{}
	}
	return &Handler{
		Tasks:        tasks,
		AuditService: audit,
		AdminService: admin,
		Notifier:     notifier,
	}
}

// getIdentity извлекает вызывающего пользователя из контекста Gin
func getIdentity(c *gin.Context) (domain.Identity, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
	}
	return id, ok
}
