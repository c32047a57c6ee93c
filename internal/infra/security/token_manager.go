package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
)

// SessionClaims is the JWT payload of an app session token.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager mints and parses HS256 session tokens. The token asserts the
// identity; the session store decides whether it is still live.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("session secret empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Mint signs a session token for the identity.
func (m *TokenManager) Mint(userID, email, name string) (string, *model.Session, error) {
	now := time.Now()
	expires := now.Add(m.ttl)
	claims := SessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, &model.Session{
		UserID:    userID,
		Email:     email,
		Name:      name,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

// Parse validates the signature and expiry and returns the claims.
func (m *TokenManager) Parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrSessionExpired
	}
	return claims, nil
}
