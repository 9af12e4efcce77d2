// Package auth reads the identity carried by an identity-provider token.
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mmcdole/lumen/internal/domain"
)

// portalClaims are the claims the portal's identity provider issues.
type portalClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// FromToken builds an identity from a bearer token. Claims are read without
// verifying the signature; the backend verifies every request. Tokens that
// are not JWTs still produce a signed-in, non-admin identity.
func FromToken(token string) domain.Identity {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return domain.Anonymous()
	}

	id := domain.Identity{Token: token}

	var claims portalClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return id
	}

	id.Subject = claims.Subject
	id.Admin = claims.Admin
	return id
}
