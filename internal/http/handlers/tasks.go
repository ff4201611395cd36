package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"

	"github.com/gin-gonic/gin"
)

const maxBulkBody = 4 << 20

func (h *Handler) CreateTask(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	var in domain.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), caller, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) EditTask(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.Tasks.Edit(c.Request.Context(), caller, c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Delete(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      task.ID,
		"status":  task.Status,
	})
}

// BulkCreate accepts {"data": [...]} or a bare array of tasks.
func (h *Handler) BulkCreate(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBulkBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	items, err := decodeBulk(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tasks, err := h.Tasks.BulkCreate(c.Request.Context(), caller, items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tasks)
}

func decodeBulk(body []byte) ([]service.BulkItem, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []service.BulkItem
		err := json.Unmarshal(trimmed, &items)
		return items, err
	}
	var wrapped struct {
		Data []service.BulkItem `json:"data"`
	}
	err := json.Unmarshal(trimmed, &wrapped)
	return wrapped.Data, err
}

type assignRequest struct {
	TaskID string `json:"taskId"`
	UserID string `json:"userId"`
}

func (h *Handler) AssignTask(c *gin.Context) {
	caller, ok := getIdentity(c)
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TaskID) == "" || strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId and userId are required"})
		return
	}

	task, err := h.Tasks.Assign(c.Request.Context(), caller, req.TaskID, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
