//go:build !integration

package security

import (
	"errors"
	"testing"
	"time"

	"mosha-chat-backend/internal/domain"
)

func TestTokenManager_MintAndParse(t *testing.T) {
	tm, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, sess, err := tm.Mint("google_123", "user@example.com", "Test User")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if sess.UserID != "google_123" || sess.Email != "user@example.com" {
		t.Errorf("unexpected session: %+v", sess)
	}

	claims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "google_123" {
		t.Errorf("expected subject google_123, got %q", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email claim, got %q", claims.Email)
	}
}

func TestTokenManager_RejectsForgedToken(t *testing.T) {
	tm, _ := NewTokenManager("secret-a", time.Hour)
	other, _ := NewTokenManager("secret-b", time.Hour)

	token, _, err := other.Mint("google_123", "user@example.com", "")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := tm.Parse(token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired for wrong signature, got %v", err)
	}
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm, _ := NewTokenManager("test-secret", time.Nanosecond)
	token, _, err := tm.Mint("google_123", "user@example.com", "")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := tm.Parse(token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("expected an error for empty secret")
	}
}
