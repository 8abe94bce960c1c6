package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without cause",
			err:      NotFound("room"),
			expected: "NOT_FOUND: room not found",
		},
		{
			name:     "with cause",
			err:      Internal("query failed", errors.New("connection refused")),
			expected: "INTERNAL_ERROR: query failed (caused by: connection refused)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAs_WrappedError(t *testing.T) {
	base := Field("room", "This room is not available for the selected dates.")
	wrapped := fmt.Errorf("create booking: %w", base)

	got := As(wrapped)
	if got != base {
		t.Fatalf("expected the wrapped *Error back")
	}
	if !Is(wrapped, CodeValidation) {
		t.Errorf("expected validation code")
	}
}

func TestAs_PlainErrorBecomesInternal(t *testing.T) {
	got := As(errors.New("boom"))
	if got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got.HTTPStatus)
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{"validation", Field("check_out_date", "Check out date must be after check in date."), http.StatusBadRequest, "Check out date must be after check in date.", "check_out_date"},
		{"forbidden", Forbidden("forbidden"), http.StatusForbidden, "forbidden", ""},
		{"internal hides cause", errors.New("dsn password=secret"), http.StatusInternalServerError, "internal server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			if err := Write(c, tt.err); err != nil {
				t.Fatalf("Write returned %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body Response
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if tt.wantField != "" && body.Fields[tt.wantField] == "" {
				t.Errorf("expected field %q in %v", tt.wantField, body.Fields)
			}
		})
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/nope/", nil), rec)

	HTTPErrorHandler(echo.ErrNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body Response
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "Not Found" {
		t.Errorf("error = %q", body.Error)
	}
}
