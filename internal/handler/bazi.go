package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fortune-backend/internal/model"
)

// Bazi 排盘并解读
func (h *Handler) Bazi(c *gin.Context) {
	h.bazi(c, true)
}

// BaziPillars 只排盘
func (h *Handler) BaziPillars(c *gin.Context) {
	h.bazi(c, false)
}

func (h *Handler) bazi(c *gin.Context, interpret bool) {
	var req model.BirthInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	out, err := h.reader.ComputeBazi(c.Request.Context(), req, interpret)
	if err != nil {
		inputError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
