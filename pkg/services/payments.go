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

// PaymentService defines the interface for payment operations.
type PaymentService interface {
	// Pay charges the owner for the accepted bid and completes the
	// project. At most one payment per project.
	Pay(ctx context.Context, projectID, callerID uuid.UUID) (*models.Payment, error)
	GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Payment, error)
}

// paymentService implements PaymentService.
type paymentService struct {
	db          TxBeginner
	projectRepo repositories.ProjectRepository
	paymentRepo repositories.PaymentRepository
	publisher   events.Publisher
	retryCfg    *retry.Config
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service with dependencies.
func NewPaymentService(
	db TxBeginner,
	projectRepo repositories.ProjectRepository,
	paymentRepo repositories.PaymentRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		db:          db,
		projectRepo: projectRepo,
		paymentRepo: paymentRepo,
		publisher:   publisher,
		retryCfg:    retry.DefaultConfig(),
		logger:      logger.Named("payments"),
	}
}

var _ PaymentService = (*paymentService)(nil)

func (s *paymentService) Pay(ctx context.Context, projectID, callerID uuid.UUID) (*models.Payment, error) {
	var payment *models.Payment
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var err error
		payment, err = s.pay(ctx, projectID, callerID)
		return err
	})
	if err != nil {
		return nil, conflictOnExhaustion(err, "pay")
	}

	if s.publisher != nil {
		event := &events.ProjectEvent{
			ProjectID:  projectID,
			OwnerID:    callerID,
			AssignedTo: payment.PayeeID,
			Amount:     payment.Amount,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.publisher.Publish(events.ProjectCompleted, event); err != nil {
			s.logger.Error("failed to publish event",
				zap.String("routing_key", events.ProjectCompleted),
				zap.Error(err))
		}
	}
	return payment, nil
}

func (s *paymentService) pay(ctx context.Context, projectID, callerID uuid.UUID) (payment *models.Payment, err error) {
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
		return nil, fmt.Errorf("%w: only the project owner can pay", apperrors.ErrForbidden)
	}
	if project.Status != models.ProjectInProgress {
		return nil, fmt.Errorf("%w: project is %s, only in-progress work can be paid", apperrors.ErrInvalidState, project.Status)
	}

	accepted := project.AcceptedProposal()
	if accepted == nil || project.AssignedTo == nil {
		return nil, fmt.Errorf("%w: project has no accepted proposal", apperrors.ErrInvalidState)
	}

	payment = &models.Payment{
		ProjectID: projectID,
		PayerID:   callerID,
		PayeeID:   *project.AssignedTo,
		Amount:    accepted.Bid,
		Status:    models.PaymentCompleted,
	}
	if err = s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err = s.projectRepo.UpdateStatus(ctx, tx, projectID, models.ProjectCompleted); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("project paid",
		zap.String("project_id", projectID.String()),
		zap.String("payee_id", payment.PayeeID.String()),
		zap.Float64("amount", payment.Amount))
	return payment, nil
}

func (s *paymentService) GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Payment, error) {
	return s.paymentRepo.GetByProject(ctx, projectID)
}
