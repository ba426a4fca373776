package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/reportforge/internal/api/middleware"
	"github.com/verustcode/reportforge/internal/flavor"
)

// setupTestRouter creates a Gin router in test mode with the error middleware
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler(true))
	return r
}

// builtinFlavors returns the embedded flavor registry
func builtinFlavors(t *testing.T) *flavor.Registry {
	t.Helper()
	reg, err := flavor.NewBuiltinRegistry()
	require.NoError(t, err)
	return reg
}

// doRequest sends body (raw string) to the router and returns the recorder
func doRequest(r http.Handler, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeJSON decodes the response body into a generic map
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
