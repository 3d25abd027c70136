package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

// AuthService issues, verifies and revokes access tokens.
type AuthService interface {
	// IssueToken creates a signed access token for the given user.
	IssueToken(user *models.User) (string, error)

	// VerifyToken validates a token string and returns its claims.
	// Revoked tokens fail with apperrors.ErrTokenRevoked.
	VerifyToken(ctx context.Context, tokenStr string) (*Claims, error)

	// ValidateRequest extracts and verifies the bearer token on a request.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// RevokeToken invalidates a token until its natural expiry.
	// A no-op when no revocation store is configured.
	RevokeToken(ctx context.Context, tokenStr string) error
}

// RevocationStore tracks revoked token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type authService struct {
	secret      []byte
	issuer      string
	tokenTTL    time.Duration
	revocations RevocationStore // nil when Redis is not configured
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService signing with the given HMAC
// secret. revocations may be nil, disabling logout revocation.
func NewAuthService(secret, issuer string, tokenTTL time.Duration, revocations RevocationStore, logger *zap.Logger) AuthService {
	return &authService{
		secret:      []byte(secret),
		issuer:      issuer,
		tokenTTL:    tokenTTL,
		revocations: revocations,
		logger:      logger.Named("auth-service"),
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.NewString(),
		},
		Role:  user.Role,
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) VerifyToken(ctx context.Context, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidCredentials, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidCredentials
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, apperrors.ErrTokenRevoked
		}
	}

	return claims, nil
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	tokenStr := extractBearerToken(r)
	if tokenStr == "" {
		return nil, "", errors.New("missing bearer token")
	}

	claims, err := s.VerifyToken(r.Context(), tokenStr)
	if err != nil {
		return nil, "", err
	}
	return claims, tokenStr, nil
}

func (s *authService) RevokeToken(ctx context.Context, tokenStr string) error {
	if s.revocations == nil {
		s.logger.Debug("Token revocation skipped: no revocation store configured")
		return nil
	}

	claims, err := s.VerifyToken(ctx, tokenStr)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil // already expired
	}

	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// extractBearerToken pulls the token out of the Authorization header.
// Returns empty string if the header is missing or malformed.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
