package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestProject_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ProjectStatus
		to      ProjectStatus
		allowed bool
	}{
		{"open to in_progress", ProjectOpen, ProjectInProgress, true},
		{"open to cancelled", ProjectOpen, ProjectCancelled, true},
		{"open to completed", ProjectOpen, ProjectCompleted, false},
		{"in_progress to completed", ProjectInProgress, ProjectCompleted, true},
		{"in_progress to cancelled", ProjectInProgress, ProjectCancelled, true},
		{"in_progress to open", ProjectInProgress, ProjectOpen, false},
		{"completed is terminal", ProjectCompleted, ProjectCancelled, false},
		{"cancelled is terminal", ProjectCancelled, ProjectOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{Status: tt.from}
			if got := p.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s->%s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestProject_AcceptingProposals(t *testing.T) {
	for _, status := range []ProjectStatus{ProjectInProgress, ProjectCompleted, ProjectCancelled} {
		p := &Project{Status: status}
		if p.AcceptingProposals() {
			t.Errorf("project in %s should not accept proposals", status)
		}
	}

	p := &Project{Status: ProjectOpen}
	if !p.AcceptingProposals() {
		t.Error("open project should accept proposals")
	}
}

func TestProject_ProposalLookups(t *testing.T) {
	freelancer := uuid.New()
	accepted := &Proposal{ID: uuid.New(), FreelancerID: freelancer, Status: ProposalAccepted}
	rejected := &Proposal{ID: uuid.New(), FreelancerID: uuid.New(), Status: ProposalRejected}

	p := &Project{Proposals: []*Proposal{rejected, accepted}}

	if got := p.ProposalByID(accepted.ID); got != accepted {
		t.Errorf("ProposalByID returned %v, want accepted proposal", got)
	}
	if got := p.ProposalByID(uuid.New()); got != nil {
		t.Errorf("ProposalByID for unknown id returned %v, want nil", got)
	}
	if got := p.ProposalByFreelancer(freelancer); got != accepted {
		t.Errorf("ProposalByFreelancer returned %v, want accepted proposal", got)
	}
	if got := p.AcceptedProposal(); got != accepted {
		t.Errorf("AcceptedProposal returned %v, want accepted proposal", got)
	}
}

func TestProject_AcceptedProposal_NoneAccepted(t *testing.T) {
	p := &Project{Proposals: []*Proposal{
		{ID: uuid.New(), Status: ProposalPending},
		{ID: uuid.New(), Status: ProposalRejected},
	}}
	if got := p.AcceptedProposal(); got != nil {
		t.Errorf("AcceptedProposal returned %v, want nil", got)
	}
}

func TestIsValidRole(t *testing.T) {
	if !IsValidRole(RoleClient) || !IsValidRole(RoleFreelancer) {
		t.Error("expected client and freelancer to be valid roles")
	}
	if IsValidRole("admin") {
		t.Error("expected 'admin' to be invalid")
	}
}

func TestIsValidRating(t *testing.T) {
	for _, r := range []int{1, 3, 5} {
		if !IsValidRating(r) {
			t.Errorf("rating %d should be valid", r)
		}
	}
	for _, r := range []int{0, 6, -1} {
		if IsValidRating(r) {
			t.Errorf("rating %d should be invalid", r)
		}
	}
}
