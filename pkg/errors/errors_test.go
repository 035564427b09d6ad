package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsSetCodeAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Hold", "h1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("dates taken"), CodeConflict, http.StatusConflict},
		{"expired", Expired("hold expired"), CodeExpired, http.StatusGone},
		{"internal", Internal("boom", errors.New("db down")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.StatusCode() != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.StatusCode())
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Conflict("dates taken")

	if !HasCode(err, CodeConflict) {
		t.Error("HasCode must match the error's code")
	}
	if HasCode(err, CodeNotFound) {
		t.Error("HasCode must not match a different code")
	}
	if HasCode(nil, CodeConflict) {
		t.Error("HasCode on nil must be false")
	}
	if HasCode(errors.New("plain"), CodeConflict) {
		t.Error("HasCode on a plain error must be false")
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Expired("hold expired"))

	if !HasCode(wrapped, CodeExpired) {
		t.Error("HasCode must see through error wrapping")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Internal must wrap its cause")
	}
}

func TestWithDetails(t *testing.T) {
	err := Conflict("held").WithDetails(map[string]any{"held_until": "soon"})

	if err.Details["held_until"] != "soon" {
		t.Error("WithDetails must attach the details map")
	}
}

func TestAsAppError(t *testing.T) {
	if AsAppError(errors.New("plain")) != nil {
		t.Error("plain errors must not convert")
	}
	if AsAppError(NotFound("Booking")) == nil {
		t.Error("AppError must convert")
	}
}
