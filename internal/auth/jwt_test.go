package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := m.Generate("alice")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.Librarian != "alice" {
			t.Errorf("expected librarian alice, got %q", claims.Librarian)
		}
		if claims.ID == "" {
			t.Error("expected token id to be set")
		}
	})

	t.Run("empty librarian", func(t *testing.T) {
		if _, err := m.Generate(""); err == nil {
			t.Error("expected error for empty librarian")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("other-secret", time.Hour).Generate("alice")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expiring := NewJWTManager("test-secret", time.Minute)
		expiring.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expiring.Generate("alice")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
