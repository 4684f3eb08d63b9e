// Package token holds the auth token handed out by the core API. It is
// the only durable state this service owns; everything else lives in a
// wizard session or in the core API.
package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store durable token storage keyed by the caller's client id
type Store interface {
	// Get returns the stored token, or "" when absent or expired
	Get(ctx context.Context, clientID string) (string, error)
	Set(ctx context.Context, clientID, token string) error
	Clear(ctx context.Context, clientID string) error
}

// expired inspects the JWT exp claim without verifying the signature;
// verification is the core API's job, we only avoid sending tokens that
// are guaranteed to 401. Tokens that do not parse are passed through.
func expired(tokenStr string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
