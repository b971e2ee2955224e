package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fortune-backend/internal/model"
)

// Divination 起卦并解读
func (h *Handler) Divination(c *gin.Context) {
	h.divination(c, true)
}

// Hexagram 只起卦
func (h *Handler) Hexagram(c *gin.Context) {
	h.divination(c, false)
}

func (h *Handler) divination(c *gin.Context, interpret bool) {
	var req model.DivinationInput
	// 空请求体视为时间起卦
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	out, err := h.reader.Divine(c.Request.Context(), req, interpret)
	if err != nil {
		inputError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
