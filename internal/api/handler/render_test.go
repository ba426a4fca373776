package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/internal/report/exporter"
	"github.com/verustcode/reportforge/internal/store"
)

const bugPayload = `{
  "section1": {"summary": "App crashes on start"},
  "section1_1": "Linux, v2.3.1",
  "section2": "",
  "section3": {"severity": "high"}
}`

func renderRouter(t *testing.T, s store.Store, saveAll bool) *gin.Engine {
	r := setupTestRouter()
	h := NewRenderHandler(builtinFlavors(t), exporter.NewDefaultManager(exporter.DefaultPDFOptions()), s, saveAll)
	r.POST("/flavors/:id/render", h.Render)
	r.GET("/formats", h.Formats)
	if s != nil {
		r.GET("/renders", h.ListRenders)
		r.GET("/renders/stats", h.RenderStats)
		r.GET("/renders/:id", h.GetRender)
		r.DELETE("/renders/:id", h.DeleteRender)
		r.GET("/renders/:id/export", h.ExportRender)
	}
	return r
}

// TestRenderHandler_RenderJSON tests the default JSON render
func TestRenderHandler_RenderJSON(t *testing.T) {
	r := renderRouter(t, nil, false)

	w := doRequest(r, http.MethodPost, "/flavors/bug_report/render", bugPayload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get(RenderIDHeader))

	body := decodeJSON(t, w)
	assert.Equal(t, "bug_report", body["flavor_id"])
	assert.Equal(t, map[string]any{
		"section1":   "1.",
		"section1_1": "1.1",
		"section3":   "2.",
	}, body["numbers"])

	sections := body["sections"].([]any)
	require.Len(t, sections, 2)
	assert.Equal(t, "1. Summary", sections[0].(map[string]any)["title"])
	assert.Equal(t, "2. Impact Analysis", sections[1].(map[string]any)["title"])
	assert.Contains(t, body["markdown"], "### 1.1 Environment")
}

// TestRenderHandler_RenderFormats tests markdown and html output
func TestRenderHandler_RenderFormats(t *testing.T) {
	r := renderRouter(t, nil, false)

	w := doRequest(r, http.MethodPost, "/flavors/bug_report/render?format=markdown", bugPayload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "# Bug Report\n"))
	assert.Contains(t, w.Body.String(), "**Summary:** App crashes on start")

	w = doRequest(r, http.MethodPost, "/flavors/bug_report/render?format=html", bugPayload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")

	w = doRequest(r, http.MethodPost, "/flavors/bug_report/render?format=docx", bugPayload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "E3001", decodeJSON(t, w)["code"])
}

// TestRenderHandler_RenderErrors tests flavor and payload failures
func TestRenderHandler_RenderErrors(t *testing.T) {
	r := renderRouter(t, nil, false)

	w := doRequest(r, http.MethodPost, "/flavors/missing/render", bugPayload)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPost, "/flavors/bug_report/render", `["not","an","object"]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "E2001", decodeJSON(t, w)["code"])
}

// TestRenderHandler_Archive tests saving, listing, fetching, exporting and deleting renders
func TestRenderHandler_Archive(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()
	r := renderRouter(t, s, false)

	w := doRequest(r, http.MethodPost, "/flavors/bug_report/render", bugPayload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(RenderIDHeader), "not saved without save=true")

	w = doRequest(r, http.MethodPost, "/flavors/bug_report/render?save=true", bugPayload)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RenderIDHeader)
	require.NotEmpty(t, id)

	w = doRequest(r, http.MethodGet, "/renders?flavor=bug_report", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeJSON(t, w)
	assert.Equal(t, float64(1), list["total"])
	assert.Equal(t, float64(1), list["page"])
	assert.Equal(t, id, list["items"].([]any)[0].(map[string]any)["id"])

	w = doRequest(r, http.MethodGet, "/renders/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeJSON(t, w)
	assert.Equal(t, "bug_report", detail["flavor_id"])
	assert.Equal(t, float64(3), detail["section_count"])
	assert.Len(t, detail["sections"], 2)

	var archived map[string]any
	require.NoError(t, json.Unmarshal([]byte(detail["payload"].(string)), &archived))
	assert.Equal(t, "Linux, v2.3.1", archived["section1_1"])

	w = doRequest(r, http.MethodGet, "/renders/"+id+"/export?format=md", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Bug_Report.md"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "## 2. Impact Analysis")

	w = doRequest(r, http.MethodDelete, "/renders/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/renders/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "E4001", decodeJSON(t, w)["code"])

	w = doRequest(r, http.MethodDelete, "/renders/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestRenderHandler_SaveAll tests archiving every render
func TestRenderHandler_SaveAll(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()
	r := renderRouter(t, s, true)

	w := doRequest(r, http.MethodPost, "/flavors/review_report_short/render?format=markdown", `{"section2":"Mostly positive"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RenderIDHeader))

	count, err := s.Render().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// failingExporter always fails, like a PDF export without a browser
type failingExporter struct{}

func (failingExporter) Export(ctx context.Context, doc *report.Document) ([]byte, error) {
	return nil, errors.New("chrome not found")
}
func (failingExporter) Name() string          { return "PDF" }
func (failingExporter) FileExtension() string { return ".pdf" }
func (failingExporter) ContentType() string   { return "application/pdf" }

// TestRenderHandler_FailedExportIsNotArchived tests that export errors leave the archive untouched
func TestRenderHandler_FailedExportIsNotArchived(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	exports := exporter.NewDefaultManager(exporter.DefaultPDFOptions())
	exports.Register(exporter.ExportFormatPDF, failingExporter{})

	r := setupTestRouter()
	h := NewRenderHandler(builtinFlavors(t), exports, s, true)
	r.POST("/flavors/:id/render", h.Render)

	w := doRequest(r, http.MethodPost, "/flavors/bug_report/render?format=pdf&save=true", bugPayload)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "E3002", decodeJSON(t, w)["code"])
	assert.Empty(t, w.Header().Get(RenderIDHeader))

	count, err := s.Render().Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	w = doRequest(r, http.MethodPost, "/flavors/bug_report/render?format=markdown&save=true", bugPayload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RenderIDHeader))

	count, err = s.Render().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestRenderHandler_ListPagination tests page parameter handling
func TestRenderHandler_ListPagination(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()
	r := renderRouter(t, s, true)

	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodPost, "/flavors/bug_report/render", bugPayload)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(r, http.MethodGet, "/renders?page=2&page_size=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["items"], 1)

	w = doRequest(r, http.MethodGet, "/renders?page=-1&page_size=abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeJSON(t, w)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(store.DefaultPageSize), body["page_size"])
	assert.Len(t, body["items"], 3)
}

// TestRenderHandler_Stats tests archive counts per flavor
func TestRenderHandler_Stats(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()
	r := renderRouter(t, s, true)

	for _, path := range []string{"/flavors/bug_report/render", "/flavors/bug_report/render", "/flavors/review_report_short/render"} {
		w := doRequest(r, http.MethodPost, path, bugPayload)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doRequest(r, http.MethodGet, "/renders/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, map[string]any{"bug_report": float64(2), "review_report_short": float64(1)}, body["by_flavor"])
}

// TestRenderHandler_InvalidID tests that malformed IDs are not found
func TestRenderHandler_InvalidID(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()
	r := renderRouter(t, s, false)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w := doRequest(r, method, "/renders/not-an-id", "")
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "E4001", decodeJSON(t, w)["code"], method)
	}
}

// TestRenderHandler_Formats tests the export format listing
func TestRenderHandler_Formats(t *testing.T) {
	r := renderRouter(t, nil, false)

	w := doRequest(r, http.MethodGet, "/formats", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, float64(4), body["total"])

	var formats []string
	for _, item := range body["items"].([]any) {
		formats = append(formats, item.(map[string]any)["format"].(string))
	}
	assert.Equal(t, []string{"html", "json", "markdown", "pdf"}, formats)
}
