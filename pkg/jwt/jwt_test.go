package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "alice", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != id || claims.Username != "alice" || claims.Role != "admin" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("lifetime = %v, want 1h", got)
	}
}

func TestValidateTokenErrors(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.GenerateToken(uuid.New(), "bob", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewManager("another-secret", time.Hour)
	expired := NewManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name    string
		manager *Manager
		token   string
		want    error
	}{
		{"missing", m, "", ErrMissingToken},
		{"garbage", m, "not-a-token", ErrInvalidToken},
		{"wrong secret", other, token, ErrInvalidToken},
		{"expired", expired, token, ErrExpiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.manager.ValidateToken(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
