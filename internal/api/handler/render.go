package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/reportforge/internal/model"
	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/internal/report/exporter"
	"github.com/verustcode/reportforge/internal/store"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/idgen"
	"github.com/verustcode/reportforge/pkg/logger"
	"github.com/verustcode/reportforge/pkg/telemetry"
)

// RenderIDHeader carries the ID of a render saved to the archive
const RenderIDHeader = "X-Render-ID"

// RenderHandler renders payloads and serves the render archive
type RenderHandler struct {
	flavors  FlavorProvider
	renderer *report.Renderer
	exports  *exporter.ExportManager
	// store is nil when the archive is disabled
	store store.Store
	// saveAll archives every render, not only those requested with save=true
	saveAll bool
}

// NewRenderHandler creates a new render handler
func NewRenderHandler(flavors FlavorProvider, exports *exporter.ExportManager, s store.Store, saveAll bool) *RenderHandler {
	return &RenderHandler{
		flavors:  flavors,
		renderer: report.NewRenderer(),
		exports:  exports,
		store:    s,
		saveAll:  saveAll,
	}
}

// Render handles POST /api/v1/flavors/:id/render?format=&save=
func (h *RenderHandler) Render(c *gin.Context) {
	cfg, err := h.flavors.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	format, err := exporter.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload, raw, err := readPayload(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	doc, err := h.renderer.Render(ctx, cfg, payload)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// a failed export must not leave an archived record
	contentType, data, err := h.export(c, doc, format)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if h.store != nil && (h.saveAll || queryBool(c, "save")) {
		if err := h.archive(c, doc, raw); err != nil {
			abortWithError(c, err)
			return
		}
		c.Header(RenderIDHeader, doc.ID)
	}

	c.Data(http.StatusOK, contentType, data)
}

// archive saves doc and its payload to the render archive
func (h *RenderHandler) archive(c *gin.Context, doc *report.Document, raw []byte) error {
	rec, err := store.NewRenderRecord(doc, raw, model.RenderSourceAPI)
	if err != nil {
		return err
	}
	if err := h.store.Render().Create(rec); err != nil {
		logger.Error("Failed to archive render",
			zap.String(logger.FieldRenderID, doc.ID),
			zap.String(logger.FieldFlavor, doc.FlavorID),
			zap.Error(err),
		)
		return err
	}

	telemetry.GetMetrics().RecordArchived(c.Request.Context(), doc.FlavorID)
	logger.Info("Render archived",
		zap.String(logger.FieldRenderID, doc.ID),
		zap.String(logger.FieldFlavor, doc.FlavorID),
		zap.Int("payload_bytes", len(raw)),
	)
	return nil
}

// export converts doc to format and returns the content type to serve it with
func (h *RenderHandler) export(c *gin.Context, doc *report.Document, format exporter.ExportFormat) (string, []byte, error) {
	exp, err := h.exports.GetExporter(format)
	if err != nil {
		return "", nil, err
	}
	data, err := h.exports.Export(c.Request.Context(), doc, format)
	if err != nil {
		return "", nil, err
	}
	return exp.ContentType(), data, nil
}

// writeExport writes doc in format, as an attachment when attachment is set
func (h *RenderHandler) writeExport(c *gin.Context, doc *report.Document, format exporter.ExportFormat, attachment bool) {
	contentType, data, err := h.export(c, doc, format)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if attachment {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exports.GenerateFilename(doc, format)))
	}
	c.Data(http.StatusOK, contentType, data)
}

// ListRenders handles GET /api/v1/renders?flavor=&page=&page_size=
func (h *RenderHandler) ListRenders(c *gin.Context) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "page_size", store.DefaultPageSize)
	if pageSize < 1 || pageSize > store.MaxPageSize {
		pageSize = store.DefaultPageSize
	}

	records, total, err := h.store.Render().List(c.Query("flavor"), page, pageSize)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// renderDetail is an archived record with its rendered sections
type renderDetail struct {
	*model.RenderRecord
	Sections []report.RenderedSection `json:"sections"`
}

// lookup fetches the archived record named by the :id path parameter.
// IDs that are not xids are rejected without a query.
func (h *RenderHandler) lookup(c *gin.Context) (*model.RenderRecord, error) {
	id := c.Param("id")
	if !idgen.IsValid(id) {
		return nil, errors.ErrRenderNotFound(id)
	}
	return h.store.Render().GetByID(id)
}

// GetRender handles GET /api/v1/renders/:id
func (h *RenderHandler) GetRender(c *gin.Context) {
	rec, err := h.lookup(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	doc, err := store.DocumentFromRecord(rec)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, renderDetail{RenderRecord: rec, Sections: doc.Sections})
}

// DeleteRender handles DELETE /api/v1/renders/:id
func (h *RenderHandler) DeleteRender(c *gin.Context) {
	id := c.Param("id")
	if !idgen.IsValid(id) {
		abortWithError(c, errors.ErrRenderNotFound(id))
		return
	}
	if err := h.store.Render().Delete(id); err != nil {
		abortWithError(c, err)
		return
	}

	logger.Info("Render deleted", zap.String(logger.FieldRenderID, id))
	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"message": "render deleted",
	})
}

// ExportRender handles GET /api/v1/renders/:id/export?format=
func (h *RenderHandler) ExportRender(c *gin.Context) {
	format, err := exporter.ParseFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	rec, err := h.lookup(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	doc, err := store.DocumentFromRecord(rec)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.writeExport(c, doc, format, true)
}

// RenderStats handles GET /api/v1/renders/stats
func (h *RenderHandler) RenderStats(c *gin.Context) {
	total, err := h.store.Render().Count()
	if err != nil {
		abortWithError(c, err)
		return
	}
	byFlavor, err := h.store.Render().CountByFlavor()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"by_flavor": byFlavor,
	})
}

// Formats handles GET /api/v1/formats
func (h *RenderHandler) Formats(c *gin.Context) {
	formats := h.exports.SupportedFormats()
	items := make([]gin.H, 0, len(formats))
	for _, f := range formats {
		exp, err := h.exports.GetExporter(f)
		if err != nil {
			continue
		}
		items = append(items, gin.H{
			"format":       f,
			"name":         exp.Name(),
			"extension":    exp.FileExtension(),
			"content_type": exp.ContentType(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}
