package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

// memoryRevocationStore is an in-memory RevocationStore for tests.
type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemoryRevocationStore() *memoryRevocationStore {
	return &memoryRevocationStore{revoked: make(map[string]bool)}
}

func (s *memoryRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
	return nil
}

func (s *memoryRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[jti], nil
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "freelancer@example.com",
		Role:  models.RoleFreelancer,
	}
}

func newTestAuthService(store RevocationStore) AuthService {
	return NewAuthService("test-secret", "gigplane-engine", time.Hour, store, zap.NewNop())
}

func TestAuthService_IssueAndVerify(t *testing.T) {
	svc := newTestAuthService(nil)
	user := testUser()

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	claims, err := svc.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	if claims.Subject != user.ID.String() {
		t.Errorf("expected subject %q, got %q", user.ID, claims.Subject)
	}
	if claims.Role != models.RoleFreelancer {
		t.Errorf("expected role freelancer, got %q", claims.Role)
	}
	if claims.Email != user.Email {
		t.Errorf("expected email %q, got %q", user.Email, claims.Email)
	}
	if claims.ID == "" {
		t.Error("expected a jti to be set")
	}
}

func TestAuthService_VerifyToken_WrongSecret(t *testing.T) {
	issuer := newTestAuthService(nil)
	token, err := issuer.IssueToken(testUser())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	verifier := NewAuthService("other-secret", "gigplane-engine", time.Hour, nil, zap.NewNop())
	if _, err := verifier.VerifyToken(context.Background(), token); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_VerifyToken_Expired(t *testing.T) {
	svc := NewAuthService("test-secret", "gigplane-engine", -time.Minute, nil, zap.NewNop())
	token, err := svc.IssueToken(testUser())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := svc.VerifyToken(context.Background(), token); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for expired token, got %v", err)
	}
}

func TestAuthService_RevokeToken(t *testing.T) {
	store := newMemoryRevocationStore()
	svc := newTestAuthService(store)

	token, err := svc.IssueToken(testUser())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if err := svc.RevokeToken(context.Background(), token); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}

	if _, err := svc.VerifyToken(context.Background(), token); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestAuthService_RevokeToken_NoStore(t *testing.T) {
	svc := newTestAuthService(nil)
	token, err := svc.IssueToken(testUser())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	// Without a revocation store logout is a no-op and the token stays valid.
	if err := svc.RevokeToken(context.Background(), token); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}
	if _, err := svc.VerifyToken(context.Background(), token); err != nil {
		t.Errorf("expected token to remain valid, got %v", err)
	}
}

func TestAuthService_ValidateRequest(t *testing.T) {
	svc := newTestAuthService(nil)
	user := testUser()
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims, raw, err := svc.ValidateRequest(req)
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}
	if raw != token {
		t.Error("expected raw token to round-trip")
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("expected subject %q, got %q", user.ID, claims.Subject)
	}
}

func TestAuthService_ValidateRequest_MissingHeader(t *testing.T) {
	svc := newTestAuthService(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)

	if _, _, err := svc.ValidateRequest(req); err == nil {
		t.Fatal("expected error for missing Authorization header")
	}
}

func TestRequireUserID(t *testing.T) {
	userID := uuid.New()
	claims := &Claims{}
	claims.Subject = userID.String()

	ctx := context.WithValue(context.Background(), ClaimsKey, claims)
	got, err := RequireUserID(ctx)
	if err != nil {
		t.Fatalf("RequireUserID failed: %v", err)
	}
	if got != userID {
		t.Errorf("expected %v, got %v", userID, got)
	}

	if _, err := RequireUserID(context.Background()); err == nil {
		t.Error("expected error without claims in context")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword("hunter22", hash) {
		t.Error("expected correct password to verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("expected wrong password to fail")
	}
}
