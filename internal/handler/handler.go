package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fortune-backend/internal/logger"
	"fortune-backend/internal/service"
)

// Handler HTTP 接口
type Handler struct {
	reader *service.Reader
	tasks  *service.TaskRegistry
}

func New(reader *service.Reader, tasks *service.TaskRegistry) *Handler {
	return &Handler{reader: reader, tasks: tasks}
}

// Register 注册 /api 路由；signer 为 nil 或未配置邀请码时不校验 token
func (h *Handler) Register(r *gin.Engine, signer *Signer) {
	api := r.Group("/api")
	api.Use(RequestID())

	if signer != nil {
		api.POST("/auth/verify", signer.Verify)
	}

	protected := api.Group("")
	if signer != nil {
		protected.Use(signer.Middleware())
	}
	{
		// 八字
		protected.POST("/bazi", h.Bazi)
		protected.POST("/bazi/pillars", h.BaziPillars)

		// 梅花易数
		protected.POST("/divination", h.Divination)
		protected.POST("/divination/hexagram", h.Hexagram)

		// 异步解读任务
		protected.POST("/tasks/bazi", h.SubmitBaziTask)
		protected.POST("/tasks/divination", h.SubmitDivinationTask)
		protected.GET("/tasks/:task_id", h.GetTask)
		protected.DELETE("/tasks/:task_id", h.CancelTask)
	}
}

const requestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配 ID，写入响应头和日志上下文
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), id))
		c.Next()
	}
}

// inputError 输入错误统一返回 400，其余 500
func inputError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidBirthTime),
		errors.Is(err, service.ErrInvalidGender),
		errors.Is(err, service.ErrInvalidMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.C(c.Request.Context(), "HTTP").Error().Err(err).Msg("处理请求失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
}
