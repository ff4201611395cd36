package middleware

import (
	"net/http"
	"strings"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// JWT requires a bearer token and stores the caller identity in the context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		id, err := service.ParseJWT(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CtxUserID, id.UserID)
		c.Set(CtxRole, id.Role)
		reqLog := logger.With("user_id", id.UserID, "role", string(id.Role))
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), reqLog))
		c.Next()
	}
}

// Identity reads what JWT stored.
func Identity(c *gin.Context) (domain.Identity, bool) {
	userID := c.GetString(CtxUserID)
	if userID == "" {
		return domain.Identity{}, false
	}
	role, _ := c.Get(CtxRole)
	r, _ := role.(domain.Role)
	return domain.Identity{UserID: userID, Role: r}, true
}
