// Package models contains domain types for gigplane-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered marketplace participant.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"` // 'client' or 'freelancer'
	RatingAvg    float64   `json:"rating_avg"`
	RatingCount  int       `json:"rating_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role constants for marketplace participants.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleClient, RoleFreelancer}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
