package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminStats returns board-wide task statistics for admins.
func (h *Handler) AdminStats(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	stats, err := h.AdminService.GetStats(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
