package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fortune-backend/internal/model"
)

// SubmitBaziTask 创建八字解读任务
func (h *Handler) SubmitBaziTask(c *gin.Context) {
	var req model.BirthInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.RequestID == "" {
		req.RequestID = c.GetHeader("X-Idempotency-Key")
	}

	status, created, err := h.reader.SubmitBazi(c.Request.Context(), h.tasks, req)
	if err != nil {
		inputError(c, err)
		return
	}
	taskAccepted(c, status, created)
}

// SubmitDivinationTask 创建起卦解读任务
func (h *Handler) SubmitDivinationTask(c *gin.Context) {
	var req model.DivinationInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	if req.RequestID == "" {
		req.RequestID = c.GetHeader("X-Idempotency-Key")
	}

	status, created, err := h.reader.SubmitDivination(c.Request.Context(), h.tasks, req)
	if err != nil {
		inputError(c, err)
		return
	}
	taskAccepted(c, status, created)
}

func taskAccepted(c *gin.Context, status model.TaskStatus, created bool) {
	if created {
		c.JSON(http.StatusAccepted, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetTask 查询任务
func (h *Handler) GetTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少task_id"})
		return
	}

	status, ok := h.tasks.Get(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或已过期"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelTask 取消任务
func (h *Handler) CancelTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少task_id"})
		return
	}

	status, ok := h.tasks.Cancel(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或已过期"})
		return
	}
	c.JSON(http.StatusOK, status)
}
