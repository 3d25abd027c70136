// Package auth provides JWT-based authentication for gigplane-engine.
// Tokens are issued locally on login and verified with an HMAC secret.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims structure issued by gigplane-engine.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, jti)
// and adds custom claims for marketplace context.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`  // 'client' or 'freelancer'
	Email string `json:"email,omitempty"` // User email address
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// RequireUserID extracts the authenticated user's id from JWT claims in the
// context. Returns an error if not authenticated or the subject is malformed.
func RequireUserID(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("authentication required: no claims in context")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in JWT claims: %w", err)
	}

	return userID, nil
}

// GetRole extracts the authenticated user's role from context.
// Returns empty string if not authenticated.
func GetRole(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Role
}
