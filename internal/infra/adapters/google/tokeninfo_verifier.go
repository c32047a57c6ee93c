package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/ports/adapter"
)

// Compile-time assurance this verifier satisfies the port
var _ adapter.IdentityVerifier = (*TokenInfoVerifier)(nil)

const tokenInfoBase = "https://oauth2.googleapis.com/tokeninfo"

// TokenInfoVerifier validates Google ID tokens against the tokeninfo
// endpoint. When an audience is configured, tokens minted for other client
// ids are rejected.
type TokenInfoVerifier struct {
	base     string
	audience string
	client   *http.Client
}

func NewTokenInfoVerifier(audience string) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		base:     tokenInfoBase,
		audience: audience,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*adapter.Identity, error) {
	if idToken == "" {
		return nil, domain.ErrUnauthorized
	}

	u := v.base + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrUnauthorized
	}

	var payload struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Aud   string `json:"aud"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tokeninfo decode: %w", err)
	}
	if payload.Sub == "" {
		return nil, domain.ErrUnauthorized
	}
	if v.audience != "" && payload.Aud != v.audience {
		return nil, domain.ErrUnauthorized
	}

	return &adapter.Identity{
		UserID: "google_" + payload.Sub,
		Email:  payload.Email,
		Name:   payload.Name,
	}, nil
}
