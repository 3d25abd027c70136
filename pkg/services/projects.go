package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/events"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
	"github.com/gigplane-inc/gigplane-engine/pkg/repositories"
	"github.com/gigplane-inc/gigplane-engine/pkg/retry"
)

// ProjectService defines the interface for project operations.
type ProjectService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, description string, budgetMin, budgetMax float64) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*models.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error)
	// Cancel withdraws the project and rejects any still-pending
	// proposals. Only the owner may cancel, and only from a
	// non-terminal status.
	Cancel(ctx context.Context, projectID, callerID uuid.UUID) error
}

// projectService implements ProjectService.
type projectService struct {
	db           TxBeginner
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	publisher    events.Publisher
	retryCfg     *retry.Config
	logger       *zap.Logger
}

// NewProjectService creates a new project service with dependencies.
func NewProjectService(
	db TxBeginner,
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		db:           db,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		publisher:    publisher,
		retryCfg:     retry.DefaultConfig(),
		logger:       logger.Named("projects"),
	}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) Create(ctx context.Context, ownerID uuid.UUID, title, description string, budgetMin, budgetMax float64) (*models.Project, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if budgetMin <= 0 || budgetMax <= 0 {
		return nil, fmt.Errorf("%w: budget bounds must be positive", apperrors.ErrInvalidInput)
	}
	if budgetMin > budgetMax {
		return nil, fmt.Errorf("%w: budget_min %.2f exceeds budget_max %.2f", apperrors.ErrInvalidInput, budgetMin, budgetMax)
	}

	project := &models.Project{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		BudgetMin:   budgetMin,
		BudgetMax:   budgetMax,
		Status:      models.ProjectOpen,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", ownerID.String()))
	return project, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

func (s *projectService) ListOpen(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.projectRepo.ListOpen(ctx, limit, offset)
}

func (s *projectService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

func (s *projectService) Cancel(ctx context.Context, projectID, callerID uuid.UUID) error {
	var rejected []*models.Proposal
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var err error
		rejected, err = s.cancel(ctx, projectID, callerID)
		return err
	})
	if err != nil {
		return conflictOnExhaustion(err, "cancel")
	}

	for _, proposal := range rejected {
		s.publish(events.ProposalRejected, &events.ProposalEvent{
			ProjectID:    projectID,
			ProposalID:   proposal.ID,
			FreelancerID: proposal.FreelancerID,
			Bid:          proposal.Bid,
			OccurredAt:   time.Now().UTC(),
		})
	}
	return nil
}

func (s *projectService) cancel(ctx context.Context, projectID, callerID uuid.UUID) (rejected []*models.Proposal, err error) {
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
		return nil, fmt.Errorf("%w: only the project owner can cancel", apperrors.ErrForbidden)
	}
	if !project.CanTransitionTo(models.ProjectCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s project", apperrors.ErrInvalidState, project.Status)
	}

	rejected, err = s.proposalRepo.RejectPendingSiblings(ctx, tx, projectID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if err = s.projectRepo.UpdateStatus(ctx, tx, projectID, models.ProjectCancelled); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("project cancelled",
		zap.String("project_id", projectID.String()),
		zap.Int("proposals_rejected", len(rejected)))
	return rejected, nil
}

// publish emits a lifecycle event after the transaction committed. Broker
// failures are logged, never surfaced: the state change already happened.
func (s *projectService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err))
	}
}
