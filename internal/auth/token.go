// Package auth holds the session token handed to the remote API. Tokens are
// issued by the backend as JWTs; the client never verifies the signature (it
// has no key and no business doing so) but it does read the exp claim so it
// can report an expired session before wasting a round trip.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is an immutable bearer credential. The zero value is an empty,
// unauthenticated token.
type Token struct {
	raw       string
	expiresAt time.Time
}

// New wraps a raw credential string. When the credential parses as a JWT
// with an exp claim the expiry is remembered; opaque tokens are accepted
// as-is and never considered locally expired.
func New(raw string) Token {
	t := Token{raw: raw}
	if raw == "" {
		return t
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return t
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return t
	}
	t.expiresAt = exp.Time
	return t
}

func (t Token) Raw() string { return t.raw }

func (t Token) Empty() bool { return t.raw == "" }

// Expired reports whether the token's exp claim has passed. Tokens without
// a readable expiry are left for the server to judge.
func (t Token) Expired(now time.Time) bool {
	if t.expiresAt.IsZero() {
		return false
	}
	return !now.Before(t.expiresAt)
}

// Bearer formats the token for an Authorization header.
func (t Token) Bearer() string { return "Bearer " + t.raw }
