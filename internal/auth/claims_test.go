package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestFromToken(t *testing.T) {
	admin := signed(t, jwt.MapClaims{"sub": "u1", "admin": true})
	member := signed(t, jwt.MapClaims{"sub": "u2"})

	tests := []struct {
		name      string
		token     string
		signedIn  bool
		subject   string
		wantAdmin bool
	}{
		{"empty", "", false, "", false},
		{"blank", "   ", false, "", false},
		{"admin claim", admin, true, "u1", true},
		{"no admin claim", member, true, "u2", false},
		{"bearer prefix stripped", "Bearer " + member, true, "u2", false},
		{"opaque token", "not-a-jwt", true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := FromToken(tt.token)
			assert.Equal(t, tt.signedIn, id.SignedIn())
			assert.Equal(t, tt.subject, id.Subject)
			assert.Equal(t, tt.wantAdmin, id.Admin)
		})
	}
}

func TestFromToken_KeepsRawToken(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "u3"})
	id := FromToken("Bearer " + tok)
	assert.Equal(t, tok, id.Token)
	assert.Equal(t, "Bearer "+tok, id.BearerHeader())
}
