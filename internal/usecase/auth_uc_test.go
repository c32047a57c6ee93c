//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/ports/adapter"
	"mosha-chat-backend/internal/infra/security"
)

func newAuthFixture(t *testing.T) (AuthUseCase, *memSessionRepo) {
	t.Helper()
	tm, err := security.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	verifier := &fakeVerifier{
		accept: "good-google-token",
		identity: adapter.Identity{
			UserID: "google_123",
			Email:  "user@example.com",
			Name:   "Test User",
		},
	}
	sessions := newMemSessionRepo()
	return NewAuthUseCase(verifier, tm, sessions, newTestLogger()), sessions
}

func TestAuthUC_LoginMintsVerifiableSession(t *testing.T) {
	uc, _ := newAuthFixture(t)

	token, sess, err := uc.Login(context.Background(), "good-google-token")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.UserID != "google_123" || sess.Email != "user@example.com" {
		t.Errorf("unexpected session: %+v", sess)
	}

	got, err := uc.VerifySession(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if got.UserID != "google_123" {
		t.Errorf("expected owner google_123, got %q", got.UserID)
	}
}

func TestAuthUC_LoginRejectsBadGoogleToken(t *testing.T) {
	uc, _ := newAuthFixture(t)

	if _, _, err := uc.Login(context.Background(), "forged"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthUC_VerifySessionRejectsForgedToken(t *testing.T) {
	uc, sessions := newAuthFixture(t)

	// A token signed elsewhere fails signature verification even if a
	// session record exists under it.
	other, _ := security.NewTokenManager("other-secret", time.Hour)
	forged, sess, err := other.Mint("google_123", "user@example.com", "")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := sessions.Store(context.Background(), forged, sess, time.Hour); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if _, err := uc.VerifySession(context.Background(), forged); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthUC_LogoutRevokesSession(t *testing.T) {
	uc, _ := newAuthFixture(t)

	token, _, err := uc.Login(context.Background(), "good-google-token")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := uc.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := uc.VerifySession(context.Background(), token); err == nil {
		t.Error("expected revoked session to fail verification")
	}
}
