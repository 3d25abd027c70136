package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

// PaymentRepository defines the interface for payment data access.
type PaymentRepository interface {
	// Create records a payment. A second payment for the same project
	// fails with ErrConflict.
	Create(ctx context.Context, tx pgx.Tx, payment *models.Payment) error
	GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Payment, error)
}

// paymentRepository implements PaymentRepository using PostgreSQL.
type paymentRepository struct {
	db Querier
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db Querier) PaymentRepository {
	return &paymentRepository{db: db}
}

var _ PaymentRepository = (*paymentRepository)(nil)

func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now().UTC()
	if payment.Status == "" {
		payment.Status = models.PaymentCompleted
	}

	query := `
		INSERT INTO payments (id, project_id, payer_id, payee_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		payment.ID,
		payment.ProjectID,
		payment.PayerID,
		payment.PayeeID,
		payment.Amount,
		payment.Status,
		payment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: project already paid", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, payer_id, payee_id, amount, status, created_at
		FROM payments
		WHERE project_id = $1`,
		projectID).Scan(
		&payment.ID,
		&payment.ProjectID,
		&payment.PayerID,
		&payment.PayeeID,
		&payment.Amount,
		&payment.Status,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}
