package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/reportforge/internal/flavor"
)

// FlavorProvider resolves flavors by ID
type FlavorProvider interface {
	Get(id string) (*flavor.Config, error)
	List() []*flavor.Config
}

// FlavorHandler serves flavor definitions and per-flavor numbering
type FlavorHandler struct {
	flavors FlavorProvider
}

// NewFlavorHandler creates a new flavor handler
func NewFlavorHandler(flavors FlavorProvider) *FlavorHandler {
	return &FlavorHandler{flavors: flavors}
}

// FlavorSummary is the list view of a flavor
type FlavorSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Numbering    string `json:"numbering"`
	SectionCount int    `json:"section_count"`
}

// ListFlavors handles GET /api/v1/flavors
func (h *FlavorHandler) ListFlavors(c *gin.Context) {
	configs := h.flavors.List()
	items := make([]FlavorSummary, 0, len(configs))
	for _, cfg := range configs {
		items = append(items, FlavorSummary{
			ID:           cfg.ID,
			Name:         cfg.Name,
			Description:  cfg.Description,
			Numbering:    cfg.Numbering,
			SectionCount: cfg.SectionCount(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

// GetFlavor handles GET /api/v1/flavors/:id
func (h *FlavorHandler) GetFlavor(c *gin.Context) {
	cfg, err := h.flavors.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Numbers handles POST /api/v1/flavors/:id/numbers
func (h *FlavorHandler) Numbers(c *gin.Context) {
	cfg, err := h.flavors.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload, _, err := readPayload(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flavor":    cfg.ID,
		"numbering": cfg.Numbering,
		"numbers":   cfg.Numbers(payload),
	})
}
