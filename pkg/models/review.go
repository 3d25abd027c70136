package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a client's rating of the freelancer who completed a project.
// One review per project.
type Review struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"` // 1-5
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsValidRating checks that a rating falls in the allowed 1-5 range.
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
