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

// ProposalRepository defines the interface for proposal data access.
// Proposals belong exclusively to their project; every mutating method runs
// inside a transaction that holds the project aggregate lock (see
// ProjectRepository.GetForUpdate).
type ProposalRepository interface {
	// Insert appends a proposal to the project's sequence. A second
	// proposal from the same freelancer fails with ErrConflict.
	Insert(ctx context.Context, tx pgx.Tx, proposal *models.Proposal) error
	// UpdateStatusIfPending is the compare-and-swap write: it moves the
	// proposal to status only if it is still pending, reporting whether a
	// row was written.
	UpdateStatusIfPending(ctx context.Context, tx pgx.Tx, proposalID uuid.UUID, status models.ProposalStatus) (bool, error)
	// RejectPendingSiblings rejects every still-pending proposal on the
	// project except the accepted one, returning the rejected rows so
	// callers can notify the losing freelancers.
	RejectPendingSiblings(ctx context.Context, tx pgx.Tx, projectID, acceptedID uuid.UUID) ([]*models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error)
}

// proposalRepository implements ProposalRepository using PostgreSQL.
type proposalRepository struct {
	db Querier
}

// NewProposalRepository creates a new proposal repository.
func NewProposalRepository(db Querier) ProposalRepository {
	return &proposalRepository{db: db}
}

var _ ProposalRepository = (*proposalRepository)(nil)

const proposalColumns = `id, project_id, freelancer_id, bid, timeline, cover_letter, status, created_at`

func (r *proposalRepository) Insert(ctx context.Context, tx pgx.Tx, proposal *models.Proposal) error {
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	proposal.CreatedAt = time.Now().UTC()
	if proposal.Status == "" {
		proposal.Status = models.ProposalPending
	}

	query := `
		INSERT INTO proposals (id, project_id, freelancer_id, bid, timeline, cover_letter, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		proposal.ID,
		proposal.ProjectID,
		proposal.FreelancerID,
		proposal.Bid,
		proposal.Timeline,
		proposal.CoverLetter,
		proposal.Status,
		proposal.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: freelancer already submitted a proposal for this project", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert proposal: %w", err)
	}

	return nil
}

func (r *proposalRepository) UpdateStatusIfPending(ctx context.Context, tx pgx.Tx, proposalID uuid.UUID, status models.ProposalStatus) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE proposals
		SET status = $2
		WHERE id = $1 AND status = $3`,
		proposalID, status, models.ProposalPending)
	if err != nil {
		return false, fmt.Errorf("failed to update proposal status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *proposalRepository) RejectPendingSiblings(ctx context.Context, tx pgx.Tx, projectID, acceptedID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := tx.Query(ctx, `
		UPDATE proposals
		SET status = $3
		WHERE project_id = $1 AND id <> $2 AND status = $4
		RETURNING `+proposalColumns,
		projectID, acceptedID, models.ProposalRejected, models.ProposalPending)
	if err != nil {
		return nil, fmt.Errorf("failed to reject sibling proposals: %w", err)
	}
	defer rows.Close()

	return collectProposals(rows)
}

func (r *proposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+proposalColumns+`
		FROM proposals
		WHERE freelancer_id = $1
		ORDER BY created_at DESC`,
		freelancerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals by freelancer: %w", err)
	}
	defer rows.Close()

	return collectProposals(rows)
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var proposal models.Proposal
	err := row.Scan(
		&proposal.ID,
		&proposal.ProjectID,
		&proposal.FreelancerID,
		&proposal.Bid,
		&proposal.Timeline,
		&proposal.CoverLetter,
		&proposal.Status,
		&proposal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return &proposal, nil
}

func collectProposals(rows pgx.Rows) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proposals: %w", err)
	}
	return proposals, nil
}
