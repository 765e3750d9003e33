package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUsable reports whether a persisted session token is worth presenting
// to the backend. The token is opaque to the client, but when it happens to
// be a JWT with an exp claim an already-expired one lets us skip the
// authenticated bootstrap entirely. Tokens that do not parse as JWTs are
// assumed usable; the server remains the authority either way.
func TokenUsable(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return now.Before(exp.Time)
}
