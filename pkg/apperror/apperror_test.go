package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad", nil), http.StatusBadRequest},
		{InvalidID("product"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.Status(); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.err.Kind, got, tt.want)
		}
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NotFound("Product not found"))
	if got := As(wrapped); got.Kind != KindNotFound || got.Message != "Product not found" {
		t.Errorf("As(wrapped) = %+v", got)
	}

	cause := errors.New("connection refused")
	got := As(cause)
	if got.Kind != KindInternal || !errors.Is(got, cause) {
		t.Errorf("As(plain) = %+v", got)
	}
	if got.Message == cause.Error() {
		t.Error("internal cause leaked into the message")
	}

	if !IsKind(wrapped, KindNotFound) || IsKind(cause, KindNotFound) {
		t.Error("IsKind mismatch")
	}
}
