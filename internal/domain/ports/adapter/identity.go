package adapter

import "context"

// Identity is the profile asserted by the upstream identity provider.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// IdentityVerifier validates a provider-issued ID token and returns the
// identity it asserts. Used once at login; app sessions take over after that.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}
