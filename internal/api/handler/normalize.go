package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/pkg/errors"
)

// NormalizeHandler exposes the payload utilities that need no flavor
type NormalizeHandler struct {
	normalizer *report.Normalizer
}

// NewNormalizeHandler creates a handler using the default normalizer options
func NewNormalizeHandler() *NormalizeHandler {
	return &NormalizeHandler{normalizer: report.NewNormalizer(report.DefaultNormalizerOptions())}
}

// Presence handles POST /api/v1/presence
func (h *NormalizeHandler) Presence(c *gin.Context) {
	payload, _, err := readPayload(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_data": report.HasData(payload)})
}

// Markdown handles POST /api/v1/markdown
func (h *NormalizeHandler) Markdown(c *gin.Context) {
	payload, _, err := readPayload(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"markdown": h.normalizer.Extract(payload)})
}

// TitleRequest is the body of POST /api/v1/title
type TitleRequest struct {
	Title  string `json:"title" binding:"required"`
	Number string `json:"number"`
}

// Title handles POST /api/v1/title
func (h *NormalizeHandler) Title(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.ErrValidation("Invalid request body: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": report.ReplaceNumberInTitle(req.Title, req.Number)})
}
