package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	// Create records a review. A second review for the same project fails
	// with ErrConflict.
	Create(ctx context.Context, tx pgx.Tx, review *models.Review) error
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*models.Review, error)
	// AggregateForReviewee computes the reviewee's average rating and
	// review count inside the caller's transaction, so the recomputed
	// aggregate includes the row just written.
	AggregateForReviewee(ctx context.Context, tx pgx.Tx, revieweeID uuid.UUID) (avg float64, count int, err error)
}

// reviewRepository implements ReviewRepository using PostgreSQL.
type reviewRepository struct {
	db Querier
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db Querier) ReviewRepository {
	return &reviewRepository{db: db}
}

var _ ReviewRepository = (*reviewRepository)(nil)

const reviewColumns = `id, project_id, reviewer_id, reviewee_id, rating, comment, created_at`

func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reviews (id, project_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		review.ID,
		review.ProjectID,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: project already reviewed", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*models.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC`,
		revieweeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.ProjectID,
			&review.ReviewerID,
			&review.RevieweeID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to read review: %w", err)
		}
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) AggregateForReviewee(ctx context.Context, tx pgx.Tx, revieweeID uuid.UUID) (float64, int, error) {
	var avg float64
	var count int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE reviewee_id = $1`,
		revieweeID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return avg, count, nil
}
