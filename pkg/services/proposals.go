package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/events"
	"github.com/gigplane-inc/gigplane-engine/pkg/metrics"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
	"github.com/gigplane-inc/gigplane-engine/pkg/repositories"
	"github.com/gigplane-inc/gigplane-engine/pkg/retry"
)

// ProposalService defines the interface for the proposal lifecycle. All three
// mutations run inside a transaction holding the project row lock, so
// concurrent calls against the same project serialize and the aggregate's
// invariants hold: at most one accepted proposal, accepting rejects every
// pending sibling, and a resolved proposal never changes again.
type ProposalService interface {
	// Submit places a freelancer's proposal on an open project. One
	// proposal per freelancer per project.
	Submit(ctx context.Context, projectID, freelancerID uuid.UUID, bid float64, timeline, coverLetter string) (*models.Proposal, error)
	// Accept picks the winning proposal, rejects its pending siblings,
	// and assigns the project to the winning freelancer. It returns the
	// updated project aggregate with every proposal's final status.
	Accept(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (*models.Project, error)
	// Reject declines a pending proposal without affecting its siblings.
	Reject(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (*models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error)
}

// proposalService implements ProposalService.
type proposalService struct {
	db           TxBeginner
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	publisher    events.Publisher
	retryCfg     *retry.Config
	logger       *zap.Logger
}

// NewProposalService creates a new proposal service with dependencies.
func NewProposalService(
	db TxBeginner,
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) ProposalService {
	return &proposalService{
		db:           db,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		publisher:    publisher,
		retryCfg:     retry.DefaultConfig(),
		logger:       logger.Named("proposals"),
	}
}

var _ ProposalService = (*proposalService)(nil)

func (s *proposalService) Submit(ctx context.Context, projectID, freelancerID uuid.UUID, bid float64, timeline, coverLetter string) (*models.Proposal, error) {
	if bid <= 0 {
		metrics.RecordLifecycleOperation("submit", "invalid_input")
		return nil, fmt.Errorf("%w: bid must be positive", apperrors.ErrInvalidInput)
	}
	if timeline == "" {
		metrics.RecordLifecycleOperation("submit", "invalid_input")
		return nil, fmt.Errorf("%w: timeline is required", apperrors.ErrInvalidInput)
	}

	var proposal *models.Proposal
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var err error
		proposal, err = s.submit(ctx, projectID, freelancerID, bid, timeline, coverLetter)
		return err
	})
	if err != nil {
		metrics.RecordLifecycleOperation("submit", outcomeLabel(err))
		return nil, conflictOnExhaustion(err, "submit")
	}
	metrics.RecordLifecycleOperation("submit", "success")

	s.publish(events.ProposalSubmitted, &events.ProposalEvent{
		ProjectID:    projectID,
		ProposalID:   proposal.ID,
		FreelancerID: freelancerID,
		Bid:          bid,
		OccurredAt:   time.Now().UTC(),
	})
	return proposal, nil
}

func (s *proposalService) submit(ctx context.Context, projectID, freelancerID uuid.UUID, bid float64, timeline, coverLetter string) (proposal *models.Proposal, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	project, err := s.projectRepo.GetForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID == freelancerID {
		return nil, fmt.Errorf("%w: cannot propose on your own project", apperrors.ErrForbidden)
	}
	if !project.AcceptingProposals() {
		return nil, fmt.Errorf("%w: project is %s, not accepting proposals", apperrors.ErrInvalidState, project.Status)
	}
	if project.ProposalByFreelancer(freelancerID) != nil {
		return nil, fmt.Errorf("%w: freelancer already has a proposal on this project", apperrors.ErrConflict)
	}
	if bid < project.BudgetMin || bid > project.BudgetMax {
		// Out-of-budget bids are allowed; the owner decides.
		s.logger.Warn("bid outside project budget",
			zap.String("project_id", projectID.String()),
			zap.Float64("bid", bid),
			zap.Float64("budget_min", project.BudgetMin),
			zap.Float64("budget_max", project.BudgetMax))
	}

	proposal = &models.Proposal{
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Bid:          bid,
		Timeline:     timeline,
		CoverLetter:  coverLetter,
		Status:       models.ProposalPending,
	}
	if err = s.proposalRepo.Insert(ctx, tx, proposal); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("proposal submitted",
		zap.String("project_id", projectID.String()),
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("freelancer_id", freelancerID.String()))
	return proposal, nil
}

func (s *proposalService) Accept(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (*models.Project, error) {
	var (
		project  *models.Project
		proposal *models.Proposal
		rejected []*models.Proposal
	)
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var err error
		project, proposal, rejected, err = s.accept(ctx, projectID, proposalID, callerID)
		return err
	})
	if err != nil {
		metrics.RecordLifecycleOperation("accept", outcomeLabel(err))
		return nil, conflictOnExhaustion(err, "accept")
	}
	metrics.RecordLifecycleOperation("accept", "success")

	s.logger.Info("proposal accepted",
		zap.String("project_id", projectID.String()),
		zap.String("proposal_id", proposalID.String()),
		zap.Int("siblings_rejected", len(rejected)))

	s.publish(events.ProposalAccepted, &events.ProposalEvent{
		ProjectID:    projectID,
		ProposalID:   proposal.ID,
		FreelancerID: proposal.FreelancerID,
		Bid:          proposal.Bid,
		OccurredAt:   time.Now().UTC(),
	})
	for _, sibling := range rejected {
		s.publish(events.ProposalRejected, &events.ProposalEvent{
			ProjectID:    projectID,
			ProposalID:   sibling.ID,
			FreelancerID: sibling.FreelancerID,
			Bid:          sibling.Bid,
			OccurredAt:   time.Now().UTC(),
		})
	}
	return project, nil
}

func (s *proposalService) accept(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (project *models.Project, proposal *models.Proposal, rejected []*models.Proposal, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	project, err = s.projectRepo.GetForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	if project.OwnerID != callerID {
		return nil, nil, nil, fmt.Errorf("%w: only the project owner can accept proposals", apperrors.ErrForbidden)
	}
	if project.Status != models.ProjectOpen {
		return nil, nil, nil, fmt.Errorf("%w: project is %s, proposals can no longer be accepted", apperrors.ErrInvalidState, project.Status)
	}

	proposal = project.ProposalByID(proposalID)
	if proposal == nil {
		return nil, nil, nil, fmt.Errorf("%w: proposal not found on this project", apperrors.ErrNotFound)
	}
	if proposal.Resolved() {
		return nil, nil, nil, fmt.Errorf("%w: proposal is already %s", apperrors.ErrInvalidState, proposal.Status)
	}

	// Compare-and-swap: under the project lock a pending proposal cannot
	// change underneath us, so a miss here means the aggregate was
	// corrupted out of band.
	swapped, err := s.proposalRepo.UpdateStatusIfPending(ctx, tx, proposalID, models.ProposalAccepted)
	if err != nil {
		return nil, nil, nil, err
	}
	if !swapped {
		return nil, nil, nil, fmt.Errorf("%w: proposal was resolved concurrently", apperrors.ErrConflict)
	}

	rejected, err = s.proposalRepo.RejectPendingSiblings(ctx, tx, projectID, proposalID)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = s.projectRepo.Assign(ctx, tx, projectID, proposal.FreelancerID); err != nil {
		return nil, nil, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Bring the in-memory aggregate up to the committed state.
	proposal.Status = models.ProposalAccepted
	for _, p := range project.Proposals {
		if p.ID != proposalID && p.Status == models.ProposalPending {
			p.Status = models.ProposalRejected
		}
	}
	project.Status = models.ProjectInProgress
	assignee := proposal.FreelancerID
	project.AssignedTo = &assignee
	return project, proposal, rejected, nil
}

func (s *proposalService) Reject(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (*models.Proposal, error) {
	var proposal *models.Proposal
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var err error
		proposal, err = s.reject(ctx, projectID, proposalID, callerID)
		return err
	})
	if err != nil {
		metrics.RecordLifecycleOperation("reject", outcomeLabel(err))
		return nil, conflictOnExhaustion(err, "reject")
	}
	metrics.RecordLifecycleOperation("reject", "success")

	s.publish(events.ProposalRejected, &events.ProposalEvent{
		ProjectID:    projectID,
		ProposalID:   proposal.ID,
		FreelancerID: proposal.FreelancerID,
		Bid:          proposal.Bid,
		OccurredAt:   time.Now().UTC(),
	})
	return proposal, nil
}

func (s *proposalService) reject(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (proposal *models.Proposal, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	project, err := s.projectRepo.GetForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		return nil, fmt.Errorf("%w: only the project owner can reject proposals", apperrors.ErrForbidden)
	}

	proposal = project.ProposalByID(proposalID)
	if proposal == nil {
		return nil, fmt.Errorf("%w: proposal not found on this project", apperrors.ErrNotFound)
	}
	if proposal.Resolved() {
		return nil, fmt.Errorf("%w: proposal is already %s", apperrors.ErrInvalidState, proposal.Status)
	}

	swapped, err := s.proposalRepo.UpdateStatusIfPending(ctx, tx, proposalID, models.ProposalRejected)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, fmt.Errorf("%w: proposal was resolved concurrently", apperrors.ErrConflict)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("proposal rejected",
		zap.String("project_id", projectID.String()),
		zap.String("proposal_id", proposalID.String()))
	proposal.Status = models.ProposalRejected
	return proposal, nil
}

func (s *proposalService) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	return s.proposalRepo.ListByFreelancer(ctx, freelancerID)
}

// publish emits a lifecycle event after the transaction committed. Broker
// failures are logged, never surfaced: the state change already happened.
func (s *proposalService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err))
	}
}
