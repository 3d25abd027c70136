package testhelpers

import (
	"time"

	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

// TestJWTSecret signs tokens in tests. Matches nothing in production.
const TestJWTSecret = "test-jwt-secret-not-for-production"

// NewTestAuthService returns a token service signing with TestJWTSecret and
// no revocation store.
func NewTestAuthService() auth.AuthService {
	return auth.NewAuthService(TestJWTSecret, "gigplane-test", time.Hour, nil, zap.NewNop())
}

// IssueTestToken creates a signed token for the given user. Panics on
// failure, which in tests means a programming error.
func IssueTestToken(user *models.User) string {
	token, err := NewTestAuthService().IssueToken(user)
	if err != nil {
		panic(err)
	}
	return token
}
