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

// ReviewService defines the interface for review operations.
type ReviewService interface {
	// Create records the owner's review of the freelancer who completed
	// the project and recomputes the freelancer's aggregate rating. One
	// review per project.
	Create(ctx context.Context, projectID, reviewerID uuid.UUID, rating int, comment string) (*models.Review, error)
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*models.Review, error)
}

// reviewService implements ReviewService.
type reviewService struct {
	db          TxBeginner
	projectRepo repositories.ProjectRepository
	reviewRepo  repositories.ReviewRepository
	userRepo    repositories.UserRepository
	publisher   events.Publisher
	retryCfg    *retry.Config
	logger      *zap.Logger
}

// NewReviewService creates a new review service with dependencies.
func NewReviewService(
	db TxBeginner,
	projectRepo repositories.ProjectRepository,
	reviewRepo repositories.ReviewRepository,
	userRepo repositories.UserRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		db:          db,
		projectRepo: projectRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		retryCfg:    retry.DefaultConfig(),
		logger:      logger.Named("reviews"),
	}
}

var _ ReviewService = (*reviewService)(nil)

func (s *reviewService) Create(ctx context.Context, projectID, reviewerID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if !models.IsValidRating(rating) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5, got %d", apperrors.ErrInvalidInput, rating)
	}

	var review *models.Review
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var err error
		review, err = s.create(ctx, projectID, reviewerID, rating, comment)
		return err
	})
	if err != nil {
		return nil, conflictOnExhaustion(err, "review")
	}

	if s.publisher != nil {
		event := &events.ReviewEvent{
			ProjectID:  projectID,
			ReviewerID: reviewerID,
			RevieweeID: review.RevieweeID,
			Rating:     rating,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.publisher.Publish(events.ReviewCreated, event); err != nil {
			s.logger.Error("failed to publish event",
				zap.String("routing_key", events.ReviewCreated),
				zap.Error(err))
		}
	}
	return review, nil
}

func (s *reviewService) create(ctx context.Context, projectID, reviewerID uuid.UUID, rating int, comment string) (review *models.Review, err error) {
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
	if project.OwnerID != reviewerID {
		return nil, fmt.Errorf("%w: only the project owner can review", apperrors.ErrForbidden)
	}
	if project.Status != models.ProjectCompleted {
		return nil, fmt.Errorf("%w: project is %s, only completed work can be reviewed", apperrors.ErrInvalidState, project.Status)
	}
	if project.AssignedTo == nil {
		return nil, fmt.Errorf("%w: project has no assignee to review", apperrors.ErrInvalidState)
	}

	review = &models.Review{
		ProjectID:  projectID,
		ReviewerID: reviewerID,
		RevieweeID: *project.AssignedTo,
		Rating:     rating,
		Comment:    comment,
	}
	if err = s.reviewRepo.Create(ctx, tx, review); err != nil {
		return nil, err
	}

	// Recompute inside the same transaction so the aggregate includes the
	// row just written.
	avg, count, err := s.reviewRepo.AggregateForReviewee(ctx, tx, review.RevieweeID)
	if err != nil {
		return nil, err
	}
	if err = s.userRepo.UpdateRating(ctx, tx, review.RevieweeID, avg, count); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("review created",
		zap.String("project_id", projectID.String()),
		zap.String("reviewee_id", review.RevieweeID.String()),
		zap.Int("rating", rating))
	return review, nil
}

func (s *reviewService) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*models.Review, error) {
	return s.reviewRepo.ListByReviewee(ctx, revieweeID)
}
