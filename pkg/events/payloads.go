package events

import (
	"time"

	"github.com/google/uuid"
)

// ProposalEvent is the payload for proposal.* routing keys.
type ProposalEvent struct {
	ProjectID    uuid.UUID `json:"project_id"`
	ProposalID   uuid.UUID `json:"proposal_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Bid          float64   `json:"bid"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ProjectEvent is the payload for project.* routing keys.
type ProjectEvent struct {
	ProjectID  uuid.UUID `json:"project_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	AssignedTo uuid.UUID `json:"assigned_to"`
	Amount     float64   `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReviewEvent is the payload for review.created.
type ReviewEvent struct {
	ProjectID  uuid.UUID `json:"project_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}
