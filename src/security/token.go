package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the dashboard reads out of a remote access token.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken reads the subject and expiry of a remote access token without
// verifying its signature; the remote API stays the only verifier. ok is false
// for opaque (non-JWT) tokens.
func InspectToken(raw string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, false
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}

// SessionExpiry caps a session at the token's own expiry when it has one.
func SessionExpiry(raw string, now time.Time, maxAge time.Duration) time.Time {
	expires := now.Add(maxAge)
	if info, ok := InspectToken(raw); ok && !info.ExpiresAt.IsZero() && info.ExpiresAt.Before(expires) {
		return info.ExpiresAt
	}
	return expires
}
