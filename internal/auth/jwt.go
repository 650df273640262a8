package auth

import (
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims is what the smoke test reports about a session token.
type Claims struct {
	Subject string
	Email   string
	Role    string // custom:role, present once the role sync has run
}

// Inspect decodes a JWT without verifying its signature. It is meant for
// diagnostics only; nothing here establishes trust in the token.
func Inspect(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, errors.New("empty token")
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, mc); err != nil {
		return nil, err
	}
	c := &Claims{}
	c.Subject, _ = mc["sub"].(string)
	c.Email, _ = mc["email"].(string)
	c.Role, _ = mc["custom:role"].(string)
	return c, nil
}

// BearerHeader formats the Authorization header value for a token.
func BearerHeader(token string) string {
	return "Bearer " + token
}

// Preview returns at most n characters of the token followed by "...".
func Preview(token string, n int) string {
	return Truncate(token, n) + "..."
}

// Truncate cuts s to at most n characters (runes, not bytes).
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
