package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("load shift: %w", NotFound("shift %d not found", 7))
	if KindOf(err) != KindNotFound {
		t.Errorf("expected not_found, got %s", KindOf(err))
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to see through wrapping")
	}
	if IsConflict(err) {
		t.Error("did not expect conflict")
	}
}

func TestKindOf_Foreign(t *testing.T) {
	if KindOf(errors.New("boom")) != KindUnexpected {
		t.Error("expected foreign errors to be unexpected")
	}
	if IsNotFound(nil) {
		t.Error("nil is not a not-found error")
	}
}

func TestUnexpected_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unexpected(cause, "write handover")
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
	if err.Error() != "write handover: connection reset" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{NotFound("Patient not found"), http.StatusNotFound, "Patient not found"},
		{Conflict("Username already registered"), http.StatusBadRequest, "Username already registered"},
		{Validation("full_name is required"), http.StatusBadRequest, "full_name is required"},
		{Inactive("Inactive user"), http.StatusBadRequest, "Inactive user"},
		{Auth("Could not validate credentials"), http.StatusUnauthorized, "Could not validate credentials"},
		{Forbidden("Admin access required"), http.StatusForbidden, "Admin access required"},
		{Unexpected(errors.New("db down"), "list shifts"), http.StatusInternalServerError, "internal server error"},
		{errors.New("raw"), http.StatusInternalServerError, "internal server error"},
		{echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot, "teapot"},
	}

	for _, tt := range tests {
		he := ToHTTP(tt.err)
		if he.Code != tt.code {
			t.Errorf("ToHTTP(%v) code = %d, want %d", tt.err, he.Code, tt.code)
		}
		if he.Message != tt.msg {
			t.Errorf("ToHTTP(%v) message = %v, want %q", tt.err, he.Message, tt.msg)
		}
	}
}
