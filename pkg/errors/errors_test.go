package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without cause",
			appErr:   SlotConflict("slot is no longer available"),
			expected: "SLOT_CONFLICT: slot is no longer available",
		},
		{
			name:     "with cause",
			appErr:   Internal("failed to store appointment", errors.New("connection reset")),
			expected: "INTERNAL_ERROR: failed to store appointment (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Business"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad payload", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("duration must be positive"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("already exists"), CodeConflict, http.StatusConflict},
		{"slot conflict", SlotConflict("taken"), CodeSlotConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("schedule provider"), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !Unavailable("calendar").Retryable() {
		t.Error("unavailable errors should be retryable")
	}
	if SlotConflict("taken").Retryable() {
		t.Error("slot conflicts must not be retryable")
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Appointment", "65f1c0ffee")

	if err.Message != "Appointment not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["id"] != "65f1c0ffee" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("wrapped app error is found", func(t *testing.T) {
		original := SlotConflict("taken")
		wrapped := fmt.Errorf("commit booking: %w", original)

		if got := AsAppError(wrapped); got != original {
			t.Errorf("expected the original AppError, got %v", got)
		}
		if !HasCode(wrapped, CodeSlotConflict) {
			t.Error("HasCode should see through wrapping")
		}
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		got := AsAppError(fmt.Errorf("query: %w", context.DeadlineExceeded))
		if got.Code != CodeTimeout {
			t.Errorf("expected %s, got %s", CodeTimeout, got.Code)
		}
	})

	t.Run("unknown error maps to internal", func(t *testing.T) {
		cause := errors.New("disk full")
		got := AsAppError(cause)
		if got.Code != CodeInternal || !errors.Is(got, cause) {
			t.Errorf("expected internal error wrapping the cause, got %v", got)
		}
	})
}

func TestZeroStatusDefaultsToInternal(t *testing.T) {
	err := &AppError{Code: "CUSTOM", Message: "no status"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.StatusCode())
	}
}
