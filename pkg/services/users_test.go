package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

func newTestUserService(repo *mockUserRepository) UserService {
	return NewUserService(repo, zap.NewNop())
}

func TestUserService_Register_Success(t *testing.T) {
	repo := &mockUserRepository{}
	service := newTestUserService(repo)

	user, err := service.Register(context.Background(), "Dana@Example.com", "s3cret-pass", "Dana", models.RoleFreelancer)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Email != "dana@example.com" {
		t.Errorf("expected lowercased email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret-pass" {
		t.Error("expected password to be hashed")
	}
	if !auth.CheckPassword("s3cret-pass", user.PasswordHash) {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	service := newTestUserService(&mockUserRepository{})

	tests := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"bad email", "not-an-email", "s3cret-pass", models.RoleClient},
		{"short password", "a@b.com", "short", models.RoleClient},
		{"bad role", "a@b.com", "s3cret-pass", "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.email, tt.password, "x", tt.role)
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{createErr: apperrors.ErrConflict}
	service := newTestUserService(repo)

	_, err := service.Register(context.Background(), "a@b.com", "s3cret-pass", "x", models.RoleClient)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserService_Login_Success(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockUserRepository{user: &models.User{Email: "a@b.com", PasswordHash: hash}}
	service := newTestUserService(repo)

	user, err := service.Login(context.Background(), "A@B.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Errorf("unexpected user %q", user.Email)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockUserRepository{user: &models.User{Email: "a@b.com", PasswordHash: hash}}
	service := newTestUserService(repo)

	_, err = service.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	// Unknown emails fail the same way as wrong passwords.
	repo := &mockUserRepository{getErr: apperrors.ErrNotFound}
	service := newTestUserService(repo)

	_, err := service.Login(context.Background(), "nobody@b.com", "s3cret-pass")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
