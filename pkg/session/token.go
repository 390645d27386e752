package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// ok is false for opaque tokens or tokens without exp.
func TokenExpiry(token string) (expiresAt time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the credential's token carries an exp claim in
// the past. Opaque tokens never expire locally.
func (c Credential) Expired(now time.Time) bool {
	exp, ok := TokenExpiry(c.Token)
	return ok && !now.Before(exp)
}
