package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectOpen accepts new proposals.
	ProjectOpen ProjectStatus = "open"
	// ProjectInProgress has exactly one accepted proposal and an assignee.
	ProjectInProgress ProjectStatus = "in_progress"
	// ProjectCompleted was paid for. Terminal.
	ProjectCompleted ProjectStatus = "completed"
	// ProjectCancelled was withdrawn by its owner. Terminal.
	ProjectCancelled ProjectStatus = "cancelled"
)

// Project is the aggregate root of the proposal lifecycle. It exclusively
// owns its proposals: no proposal exists outside a project, and deleting a
// project removes them.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	BudgetMin   float64       `json:"budget_min"`
	BudgetMax   float64       `json:"budget_max"`
	Status      ProjectStatus `json:"status"`
	AssignedTo  *uuid.UUID    `json:"assigned_to,omitempty"`
	Proposals   []*Proposal   `json:"proposals,omitempty"` // submission order
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// projectTransitions defines the allowed status transitions.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectOpen:       {ProjectInProgress, ProjectCancelled},
	ProjectInProgress: {ProjectCompleted, ProjectCancelled},
	ProjectCompleted:  {},
	ProjectCancelled:  {},
}

// CanTransitionTo reports whether the project status may move to target.
func (p *Project) CanTransitionTo(target ProjectStatus) bool {
	for _, s := range projectTransitions[p.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// AcceptingProposals reports whether new proposals may be submitted.
func (p *Project) AcceptingProposals() bool {
	return p.Status == ProjectOpen
}

// ProposalByID returns the embedded proposal with the given id, or nil.
func (p *Project) ProposalByID(id uuid.UUID) *Proposal {
	for _, prop := range p.Proposals {
		if prop.ID == id {
			return prop
		}
	}
	return nil
}

// ProposalByFreelancer returns this freelancer's proposal, or nil. A
// freelancer has at most one proposal per project.
func (p *Project) ProposalByFreelancer(freelancerID uuid.UUID) *Proposal {
	for _, prop := range p.Proposals {
		if prop.FreelancerID == freelancerID {
			return prop
		}
	}
	return nil
}

// AcceptedProposal returns the single accepted proposal, or nil if none.
func (p *Project) AcceptedProposal() *Proposal {
	for _, prop := range p.Proposals {
		if prop.Status == ProposalAccepted {
			return prop
		}
	}
	return nil
}
