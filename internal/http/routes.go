package http

import (
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/http/handlers"
	"github.com/mohitdudhat22/Task-Management-App/internal/http/middleware"
	"github.com/mohitdudhat22/Task-Management-App/internal/notify"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"
	"github.com/mohitdudhat22/Task-Management-App/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs from the process.
type Deps struct {
	Tasks    *service.TaskService
	Audit    *service.AuditService
	Admin    *service.AdminService
	Notifier notify.Sender
	Hub      *ws.Hub
	Limiter  *middleware.RateLimiter
	Checks   map[string]handlers.Check

	Version       string
	AllowedOrigin string
	RateLimit     int
	RateWindow    time.Duration
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Tasks, d.Audit, d.Admin, d.Notifier)
	healthHandler := handlers.NewHealthHandler(d.Version, d.Checks)

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.JWT(), limiter.Middleware(d.RateLimit, d.RateWindow))
	{
		api.POST("/create", h.CreateTask)
		api.GET("/get", h.ListTasks)
		api.PUT("/edit/:id", h.EditTask)
		api.DELETE("/delete/:id", h.DeleteTask)
		api.POST("/bulk-create", h.BulkCreate)
		api.POST("/assign-task", h.AssignTask)
		api.GET("/getAllUsers", h.ListUsers)
		api.POST("/notifications/send", h.SendNotification)
		if d.Audit != nil {
			api.GET("/audit", h.AuditLogs)
		}
		if d.Admin != nil {
			api.GET("/admin/stats", h.AdminStats)
		}
	}

	// Task events for connected boards
	r.GET("/ws", ws.HandleWS(d.Hub, d.AllowedOrigin))
}

// CORS mirrors the request origin, or only allowedOrigin when it is set.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowedOrigin == "" || origin == allowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
