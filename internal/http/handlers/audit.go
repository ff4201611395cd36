package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AuditLogs returns the most recent entries: every entry for admins, the
// caller's own otherwise.
func (h *Handler) AuditLogs(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	ctx := c.Request.Context()
	var (
		logs any
		err  error
	)
	if caller.IsAdmin() {
		logs, err = h.AuditService.GetRecentLogs(ctx, limit)
	} else {
		logs, err = h.AuditService.GetUserAuditLogs(ctx, caller.UserID, limit)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
