package models

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus is the lifecycle state of a proposal. Transitions are
// one-way: pending moves to accepted or rejected and never back.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// Proposal is a freelancer's offer to complete a project at a stated price
// and timeline. Proposals are owned by their project and have no independent
// lifecycle.
type Proposal struct {
	ID           uuid.UUID      `json:"id"`
	ProjectID    uuid.UUID      `json:"project_id"`
	FreelancerID uuid.UUID      `json:"freelancer_id"`
	Bid          float64        `json:"bid"`
	Timeline     string         `json:"timeline"`
	CoverLetter  string         `json:"cover_letter"`
	Status       ProposalStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Resolved reports whether the proposal has left the pending state.
func (p *Proposal) Resolved() bool {
	return p.Status != ProposalPending
}
