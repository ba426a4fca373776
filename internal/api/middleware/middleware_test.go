package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/verustcode/reportforge/pkg/errors"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	return router
}

func serve(router *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestLogger_AccessLogEnabled tests Logger middleware with accessLog enabled
func TestLogger_AccessLogEnabled(t *testing.T) {
	router := newRouter(Logger(&LoggerConfig{AccessLog: true}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := serve(router, "GET", "/test", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

// TestLogger_NilConfig tests Logger middleware with nil config and error statuses
func TestLogger_NilConfig(t *testing.T) {
	router := newRouter(Logger(nil))
	router.GET("/bad", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	})
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.ErrInternal("boom", nil))
		c.Status(http.StatusInternalServerError)
	})

	if w := serve(router, "GET", "/bad", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if w := serve(router, "GET", "/fail", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

// TestRecovery tests Recovery middleware catches panics
func TestRecovery(t *testing.T) {
	router := newRouter(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := serve(router, "GET", "/panic", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["code"] != string(errors.ErrCodeInternal) {
		t.Errorf("Expected code %s, got %v", errors.ErrCodeInternal, response["code"])
	}
}

// TestCORS tests CORS middleware with allowed and disallowed origins
func TestCORS(t *testing.T) {
	router := newRouter(CORS([]string{"http://localhost:3000"}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantHeader string
	}{
		{"allowed origin", "GET", "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"disallowed origin", "GET", "http://evil.com", http.StatusOK, ""},
		{"no origin", "GET", "", http.StatusOK, ""},
		{"preflight allowed", "OPTIONS", "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
		{"preflight disallowed", "OPTIONS", "http://evil.com", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.origin != "" {
				header["Origin"] = tt.origin
			}
			w := serve(router, tt.method, "/test", header)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tt.wantHeader, got)
			}
		})
	}
}

// TestCORS_Wildcard tests that "*" allows any origin
func TestCORS_Wildcard(t *testing.T) {
	router := newRouter(CORS([]string{"*"}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, "GET", "/test", map[string]string{"Origin": "https://anything.example"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anything.example" {
		t.Errorf("Expected origin to be echoed, got %q", got)
	}
}

// TestRequestID tests RequestID middleware generation and propagation
func TestRequestID(t *testing.T) {
	router := newRouter(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := serve(router, "GET", "/test", nil)
	generated := w.Header().Get("X-Request-ID")
	if generated == "" {
		t.Error("Expected a generated X-Request-ID header")
	}
	if w.Body.String() != generated {
		t.Errorf("Expected context request ID %q, got %q", generated, w.Body.String())
	}

	w = serve(router, "GET", "/test", map[string]string{"X-Request-ID": "custom-id"})
	if got := w.Header().Get("X-Request-ID"); got != "custom-id" {
		t.Errorf("Expected X-Request-ID custom-id, got %q", got)
	}
}

// TestErrorHandler tests AppError mapping and production masking
func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", false, errors.ErrRenderNotFound("abc"), http.StatusNotFound, "E4001", "render abc not found"},
		{"bad payload", false, errors.ErrPayloadInvalid("payload must be a JSON object", nil), http.StatusBadRequest, "E2001", "payload must be a JSON object"},
		{"internal hidden", false, errors.ErrInternal("db exploded", nil), http.StatusInternalServerError, "E1000", "Internal server error"},
		{"internal shown in debug", true, errors.ErrInternal("db exploded", nil), http.StatusInternalServerError, "E1000", "db exploded"},
		{"plain error hidden", false, http.ErrBodyNotAllowed, http.StatusInternalServerError, "E1000", "Internal server error"},
		{"plain error shown in debug", true, http.ErrBodyNotAllowed, http.StatusInternalServerError, "E1000", http.ErrBodyNotAllowed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(ErrorHandler(tt.debug))
			router.GET("/test", func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			w := serve(router, "GET", "/test", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if response["code"] != tt.wantCode {
				t.Errorf("Expected code %s, got %v", tt.wantCode, response["code"])
			}
			if response["message"] != tt.wantMessage {
				t.Errorf("Expected message %q, got %v", tt.wantMessage, response["message"])
			}
		})
	}
}

// TestErrorHandler_AlreadyWritten tests that a written response is left alone
func TestErrorHandler_AlreadyWritten(t *testing.T) {
	router := newRouter(ErrorHandler(false))
	router.GET("/test", func(c *gin.Context) {
		_ = c.Error(errors.ErrInternal("late", nil))
		c.String(http.StatusAccepted, "done")
	})

	w := serve(router, "GET", "/test", nil)
	if w.Code != http.StatusAccepted || w.Body.String() != "done" {
		t.Errorf("Expected untouched 202 response, got %d %q", w.Code, w.Body.String())
	}
}

// TestMetrics tests that the metrics middleware passes requests through
func TestMetrics(t *testing.T) {
	router := newRouter(Metrics())
	router.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if w := serve(router, "GET", "/items/1", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w := serve(router, "GET", "/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
