package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/adapter"
	"mosha-chat-backend/internal/domain/ports/repository"
	"mosha-chat-backend/internal/infra/security"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

type AuthUseCase interface {
	// Login verifies a Google ID token and mints an app session.
	Login(ctx context.Context, googleToken string) (sessionToken string, sess *model.Session, err error)

	// VerifySession checks the token signature and the live session record.
	VerifySession(ctx context.Context, token string) (*model.Session, error)

	// Logout revokes the session.
	Logout(ctx context.Context, token string) error
}

type authUC struct {
	verifier adapter.IdentityVerifier
	tokens   *security.TokenManager
	sessions repository.SessionRepository
	log      *zerolog.Logger
}

func NewAuthUseCase(
	verifier adapter.IdentityVerifier,
	tokens *security.TokenManager,
	sessions repository.SessionRepository,
	log *zerolog.Logger,
) *authUC {
	return &authUC{verifier: verifier, tokens: tokens, sessions: sessions, log: log}
}

func (a *authUC) Login(ctx context.Context, googleToken string) (string, *model.Session, error) {
	identity, err := a.verifier.Verify(ctx, googleToken)
	if err != nil {
		return "", nil, domain.ErrUnauthorized
	}

	token, sess, err := a.tokens.Mint(identity.UserID, identity.Email, identity.Name)
	if err != nil {
		return "", nil, err
	}
	if err := a.sessions.Store(ctx, token, sess, a.tokens.TTL()); err != nil {
		return "", nil, err
	}

	a.log.Info().Str("owner_id", identity.UserID).Msg("session minted")
	return token, sess, nil
}

func (a *authUC) VerifySession(ctx context.Context, token string) (*model.Session, error) {
	if _, err := a.tokens.Parse(token); err != nil {
		return nil, err
	}
	return a.sessions.Resolve(ctx, token)
}

func (a *authUC) Logout(ctx context.Context, token string) error {
	return a.sessions.Revoke(ctx, token)
}
