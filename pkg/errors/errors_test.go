package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestNew tests creating a new AppError
func TestNew(t *testing.T) {
	err := New(ErrCodeValidation, "validation failed")

	if err == nil {
		t.Fatal("New() returned nil")
	}
	if err.Code != ErrCodeValidation {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeValidation)
	}
	if err.Message != "validation failed" {
		t.Errorf("Message = %s, want 'validation failed'", err.Message)
	}
	if err.Err != nil {
		t.Error("Err should be nil for New()")
	}
}

// TestWrap tests wrapping an existing error
func TestWrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Wrap(ErrCodePayloadInvalid, "payload is not valid JSON", cause)

	if err.Err != cause {
		t.Error("Err should be the original error")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

// TestAppError_Error tests the Error method
func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without underlying error",
			err:  New(ErrCodeValidation, "invalid input"),
			want: "[E1001] invalid input",
		},
		{
			name: "with underlying error",
			err:  Wrap(ErrCodeConfigNotFound, "config error", errors.New("file not found")),
			want: "[E6001] config error: file not found",
		},
		{
			name: "flavor not found",
			err:  ErrFlavorNotFound("bug_report"),
			want: `[E2002] flavor "bug_report" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestAppError_HTTPStatus tests status mapping for every code family
func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodePayloadInvalid, http.StatusBadRequest},
		{ErrCodeFlavorNotFound, http.StatusNotFound},
		{ErrCodeFlavorInvalid, http.StatusUnprocessableEntity},
		{ErrCodeExportUnsupported, http.StatusBadRequest},
		{ErrCodeExportFailed, http.StatusInternalServerError},
		{ErrCodeRenderNotFound, http.StatusNotFound},
		{ErrCodeDBConnection, http.StatusServiceUnavailable},
		{ErrCodeDBQuery, http.StatusInternalServerError},
		{ErrCodeConfigInvalid, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestWithDetails tests attaching details
func TestWithDetails(t *testing.T) {
	details := map[string]string{"format": "docx"}
	err := ErrExportUnsupported("docx").WithDetails(details)

	got, ok := err.Details.(map[string]string)
	if !ok || got["format"] != "docx" {
		t.Errorf("Details = %v, want %v", err.Details, details)
	}
}

// TestAsAppError tests extraction through wrapping
func TestAsAppError(t *testing.T) {
	base := ErrRenderNotFound("abc")
	wrapped := fmt.Errorf("loading render: %w", base)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("AsAppError should find a wrapped AppError")
	}
	if appErr.Code != ErrCodeRenderNotFound {
		t.Errorf("Code = %s, want %s", appErr.Code, ErrCodeRenderNotFound)
	}

	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Error("AsAppError should not match a plain error")
	}
	if IsAppError(nil) {
		t.Error("IsAppError(nil) should be false")
	}
	if !IsAppError(wrapped) {
		t.Error("IsAppError should match a wrapped AppError")
	}
}

// TestHasCode tests code matching
func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrFlavorNotFound("x"))

	if !HasCode(err, ErrCodeFlavorNotFound) {
		t.Error("HasCode should match the wrapped code")
	}
	if HasCode(err, ErrCodeNotFound) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("HasCode should not match a plain error")
	}
}

// TestConstructors tests convenience constructors
func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	if err := ErrInternal("failed", cause); err.Code != ErrCodeInternal || err.Err != cause {
		t.Errorf("ErrInternal = %+v", err)
	}
	if err := ErrValidation("bad"); err.Code != ErrCodeValidation {
		t.Errorf("ErrValidation code = %s", err.Code)
	}
	if err := ErrNotFound("flavor"); err.Message != "flavor not found" {
		t.Errorf("ErrNotFound message = %s", err.Message)
	}
	if err := ErrPayloadInvalid("bad payload", cause); err.Code != ErrCodePayloadInvalid {
		t.Errorf("ErrPayloadInvalid code = %s", err.Code)
	}
	if err := ErrExportUnsupported("docx"); err.Message != "unsupported export format: docx" {
		t.Errorf("ErrExportUnsupported message = %s", err.Message)
	}
}
