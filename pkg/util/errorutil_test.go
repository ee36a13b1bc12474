package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"validation", NewValidationError("title and description are required"), CodeInvalidInput, http.StatusBadRequest, "title and description are required"},
		{"wrapped domain error", fmt.Errorf("create: %w", NewAlreadyExists("user with this email already exists")), CodeAlreadyExists, http.StatusConflict, "user with this email already exists"},
		{"credentials", NewInvalidCredentials(), CodeInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"not found", NewNotFound("ticket"), CodeNotFound, http.StatusNotFound, "ticket not found"},
		{"route", NewRouteNotFound("PATCH", "/tickets/1"), CodeNotFound, http.StatusNotFound, "endpoint not found: PATCH /tickets/1"},
		{"fiber client error", fiber.NewError(http.StatusMethodNotAllowed, "method not allowed"), CodeInvalidInput, http.StatusMethodNotAllowed, "method not allowed"},
		{"fiber server error", fiber.NewError(http.StatusBadGateway, "upstream"), CodeInternal, http.StatusInternalServerError, "internal server error"},
		{"plain error", cause, CodeInternal, http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode || got.HTTPStatus != tt.wantStatus || got.Message != tt.wantMsg {
				t.Fatalf("ToDomainError = %+v", got)
			}
		})
	}

	if ToDomainError(nil) != nil {
		t.Fatalf("nil error should map to nil")
	}
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if !HasCode(err, CodeInternal) || HasCode(err, CodeNotFound) {
		t.Fatalf("HasCode mismatch for %v", err)
	}
	if HasCode(cause, CodeInternal) {
		t.Fatalf("plain error reported a code")
	}
}
