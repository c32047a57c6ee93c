package model

import "time"

// Session is the identity record resolved from an app session token.
type Session struct {
	UserID    string
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
