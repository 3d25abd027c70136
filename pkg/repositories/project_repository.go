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

// ProjectRepository defines the interface for project aggregate data access.
//
// The project row doubles as the aggregate lock: every mutation of a project
// or its proposals happens inside a transaction that first called
// GetForUpdate, which serializes concurrent lifecycle operations per project
// while leaving distinct projects fully parallel.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// GetForUpdate loads the aggregate (project plus ordered proposals)
	// with a row lock on the project, blocking concurrent mutators until
	// the transaction ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*models.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error)
	// UpdateStatus moves the project to the given status. Runs inside the
	// caller's transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status models.ProjectStatus) error
	// Assign marks the project in_progress and records the winning
	// freelancer. Runs inside the caller's transaction.
	Assign(ctx context.Context, tx pgx.Tx, id, freelancerID uuid.UUID) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db Querier
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db Querier) ProjectRepository {
	return &projectRepository{db: db}
}

var _ ProjectRepository = (*projectRepository)(nil)

const projectColumns = `id, owner_id, title, description, budget_min, budget_max, status, assigned_to, created_at, updated_at`

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = models.ProjectOpen
	}

	query := `
		INSERT INTO projects (id, owner_id, title, description, budget_min, budget_max, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		project.ID,
		project.OwnerID,
		project.Title,
		project.Description,
		project.BudgetMin,
		project.BudgetMax,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadProposals(ctx, r.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error) {
	row := tx.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	// Proposal rows need no separate lock: every mutator holds the
	// project row lock first.
	if err := r.loadProposals(ctx, tx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) ListOpen(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		models.ProjectOpen, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list open projects: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects by owner: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

func (r *projectRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status models.ProjectStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: project %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *projectRepository) Assign(ctx context.Context, tx pgx.Tx, id, freelancerID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE projects
		SET status = $2, assigned_to = $3, updated_at = $4
		WHERE id = $1`,
		id, models.ProjectInProgress, freelancerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to assign project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: project %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *projectRepository) loadProposals(ctx context.Context, q Querier, project *models.Project) error {
	rows, err := q.Query(ctx, `
		SELECT `+proposalColumns+`
		FROM proposals
		WHERE project_id = $1
		ORDER BY created_at ASC, id ASC`,
		project.ID)
	if err != nil {
		return fmt.Errorf("failed to load proposals: %w", err)
	}
	defer rows.Close()

	proposals, err := collectProposals(rows)
	if err != nil {
		return err
	}
	project.Proposals = proposals
	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Title,
		&project.Description,
		&project.BudgetMin,
		&project.BudgetMax,
		&project.Status,
		&project.AssignedTo,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

func collectProjects(rows pgx.Rows) ([]*models.Project, error) {
	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	return projects, nil
}
