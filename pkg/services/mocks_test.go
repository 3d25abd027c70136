package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

// fakeTx is a transaction stub. The repositories are mocked, so no query
// methods are ever called on it; only Commit and Rollback matter.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

// fakeDB implements TxBeginner, handing out the same fakeTx so tests can
// inspect its final state.
type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{tx: &fakeTx{}}
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

// recordingPublisher captures published routing keys.
type recordingPublisher struct {
	keys     []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() {}

// mockProjectRepository is a configurable mock for ProjectRepository.
type mockProjectRepository struct {
	project *models.Project
	getErr  error

	createErr error
	listErr   error
	statusErr error
	assignErr error

	capturedStatus   models.ProjectStatus
	capturedAssignee uuid.UUID
	statusUpdated    bool
	assigned         bool
}

func (m *mockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if m.createErr != nil {
		return m.createErr
	}
	project.ID = uuid.New()
	m.project = project
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.project, nil
}

func (m *mockProjectRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.project, nil
}

func (m *mockProjectRepository) ListOpen(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*models.Project{m.project}, nil
}

func (m *mockProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*models.Project{m.project}, nil
}

func (m *mockProjectRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status models.ProjectStatus) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	m.statusUpdated = true
	m.capturedStatus = status
	return nil
}

func (m *mockProjectRepository) Assign(ctx context.Context, tx pgx.Tx, id, freelancerID uuid.UUID) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	m.assigned = true
	m.capturedAssignee = freelancerID
	return nil
}

// mockProposalRepository is a configurable mock for ProposalRepository.
type mockProposalRepository struct {
	insertErr error
	updateErr error
	rejectErr error
	listErr   error
	swapped   bool
	rejected  []*models.Proposal
	proposals []*models.Proposal

	capturedProposal *models.Proposal
	capturedStatus   models.ProposalStatus
	siblingsRejected bool
}

func (m *mockProposalRepository) Insert(ctx context.Context, tx pgx.Tx, proposal *models.Proposal) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	proposal.ID = uuid.New()
	m.capturedProposal = proposal
	return nil
}

func (m *mockProposalRepository) UpdateStatusIfPending(ctx context.Context, tx pgx.Tx, proposalID uuid.UUID, status models.ProposalStatus) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	m.capturedStatus = status
	return m.swapped, nil
}

func (m *mockProposalRepository) RejectPendingSiblings(ctx context.Context, tx pgx.Tx, projectID, acceptedID uuid.UUID) ([]*models.Proposal, error) {
	if m.rejectErr != nil {
		return nil, m.rejectErr
	}
	m.siblingsRejected = true
	return m.rejected, nil
}

func (m *mockProposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.proposals, nil
}

// mockUserRepository is a configurable mock for UserRepository.
type mockUserRepository struct {
	user      *models.User
	createErr error
	getErr    error
	ratingErr error

	capturedRatingAvg   float64
	capturedRatingCount int
	ratingUpdated       bool
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = uuid.New()
	m.user = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) UpdateRating(ctx context.Context, tx pgx.Tx, userID uuid.UUID, avg float64, count int) error {
	if m.ratingErr != nil {
		return m.ratingErr
	}
	m.ratingUpdated = true
	m.capturedRatingAvg = avg
	m.capturedRatingCount = count
	return nil
}

// mockPaymentRepository is a configurable mock for PaymentRepository.
type mockPaymentRepository struct {
	payment   *models.Payment
	createErr error
	getErr    error

	capturedPayment *models.Payment
}

func (m *mockPaymentRepository) Create(ctx context.Context, tx pgx.Tx, payment *models.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	payment.ID = uuid.New()
	m.capturedPayment = payment
	return nil
}

func (m *mockPaymentRepository) GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Payment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.payment, nil
}

// mockReviewRepository is a configurable mock for ReviewRepository.
type mockReviewRepository struct {
	reviews   []*models.Review
	createErr error
	listErr   error
	aggErr    error
	avg       float64
	count     int

	capturedReview *models.Review
}

func (m *mockReviewRepository) Create(ctx context.Context, tx pgx.Tx, review *models.Review) error {
	if m.createErr != nil {
		return m.createErr
	}
	review.ID = uuid.New()
	m.capturedReview = review
	return nil
}

func (m *mockReviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*models.Review, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.reviews, nil
}

func (m *mockReviewRepository) AggregateForReviewee(ctx context.Context, tx pgx.Tx, revieweeID uuid.UUID) (float64, int, error) {
	if m.aggErr != nil {
		return 0, 0, m.aggErr
	}
	return m.avg, m.count, nil
}
