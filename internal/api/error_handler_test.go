package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accountkit/user-api/internal/core/domain"
)

func handleError(t *testing.T, method string, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	if rec.Body.Len() == 0 {
		return rec.Code, nil
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["api"] != "v1" || body["status"] != "error" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	return rec.Code, body
}

func messageField(t *testing.T, body map[string]any, key string) any {
	t.Helper()
	msg, ok := body["message"].(map[string]any)
	if !ok {
		t.Fatalf("expected message object, got %T", body["message"])
	}
	return msg[key]
}

func TestErrorHandler_Mapping(t *testing.T) {
	ve := domain.NewValidationError()
	ve.Add("username", domain.MsgUsernameTooShort)

	tests := []struct {
		name    string
		err     error
		code    int
		key     string
		message string
	}{
		{"validation", ve, http.StatusBadRequest, "username", domain.MsgUsernameTooShort},
		{"conflict", &domain.ConflictError{Field: "email"}, http.StatusBadRequest, "email", domain.MsgEmailExists},
		{"missing token", domain.ErrTokenMissing, http.StatusUnauthorized, "error", domain.MsgAuthorization},
		{"revoked token", domain.ErrTokenRevoked, http.StatusUnauthorized, "error", domain.MsgAuthorization},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "error", domain.MsgInvalidCredentials},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrUserNotFound), http.StatusNotFound, "error", domain.MsgUserNotFound},
		{"http error string", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "error", "invalid payload"},
		{"http error fields", echo.NewHTTPError(http.StatusNotFound, map[string]string{"email": domain.MsgEmailExists}), http.StatusNotFound, "email", domain.MsgEmailExists},
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "error", "Not Found"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "error", domain.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := handleError(t, http.MethodGet, tt.err)
			if code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, code)
			}
			if got := messageField(t, body, tt.key); got != tt.message {
				t.Fatalf("expected %s=%q, got %v", tt.key, tt.message, got)
			}
		})
	}
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	code, body := handleError(t, http.MethodHead, domain.ErrUserNotFound)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body != nil {
		t.Fatalf("expected empty body, got %+v", body)
	}
}

func TestErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusNoContent)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrInternal, c)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("committed response was modified: %d %q", rec.Code, rec.Body.String())
	}
}
