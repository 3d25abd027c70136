package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

const testSecret = "test-secret-not-for-production"

// newTestAuth builds a real token service and middleware so handler tests
// exercise the full bearer-token path.
func newTestAuth() (auth.AuthService, *auth.Middleware) {
	svc := auth.NewAuthService(testSecret, "gigplane-test", time.Hour, nil, zap.NewNop())
	return svc, auth.NewMiddleware(svc, zap.NewNop())
}

// authorize issues a token for the given user and sets it on the request.
func authorize(r *http.Request, svc auth.AuthService, user *models.User) *http.Request {
	token, err := svc.IssueToken(user)
	if err != nil {
		panic(err)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func testClient() *models.User {
	return &models.User{ID: uuid.New(), Email: "client@example.com", Role: models.RoleClient}
}

func testFreelancer() *models.User {
	return &models.User{ID: uuid.New(), Email: "dev@example.com", Role: models.RoleFreelancer}
}

// mockUserService is a configurable mock for services.UserService.
type mockUserService struct {
	user        *models.User
	registerErr error
	loginErr    error
	getErr      error
}

func (m *mockUserService) Register(ctx context.Context, email, password, displayName, role string) (*models.User, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.user, nil
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.user, nil
}

func (m *mockUserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

// mockProjectService is a configurable mock for services.ProjectService.
type mockProjectService struct {
	project   *models.Project
	createErr error
	getErr    error
	listErr   error
	cancelErr error

	capturedLimit  int
	capturedOffset int
}

func (m *mockProjectService) Create(ctx context.Context, ownerID uuid.UUID, title, description string, budgetMin, budgetMax float64) (*models.Project, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.project, nil
}

func (m *mockProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.project, nil
}

func (m *mockProjectService) ListOpen(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.capturedLimit = limit
	m.capturedOffset = offset
	return []*models.Project{m.project}, nil
}

func (m *mockProjectService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*models.Project{m.project}, nil
}

func (m *mockProjectService) Cancel(ctx context.Context, projectID, callerID uuid.UUID) error {
	return m.cancelErr
}

// mockProposalService is a configurable mock for services.ProposalService.
type mockProposalService struct {
	proposal  *models.Proposal
	project   *models.Project
	submitErr error
	acceptErr error
	rejectErr error
	listErr   error

	capturedBid      float64
	capturedCallerID uuid.UUID
}

func (m *mockProposalService) Submit(ctx context.Context, projectID, freelancerID uuid.UUID, bid float64, timeline, coverLetter string) (*models.Proposal, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.capturedBid = bid
	m.capturedCallerID = freelancerID
	return m.proposal, nil
}

func (m *mockProposalService) Accept(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (*models.Project, error) {
	if m.acceptErr != nil {
		return nil, m.acceptErr
	}
	m.capturedCallerID = callerID
	return m.project, nil
}

func (m *mockProposalService) Reject(ctx context.Context, projectID, proposalID, callerID uuid.UUID) (*models.Proposal, error) {
	if m.rejectErr != nil {
		return nil, m.rejectErr
	}
	m.capturedCallerID = callerID
	return m.proposal, nil
}

func (m *mockProposalService) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*models.Proposal{m.proposal}, nil
}

// mockPaymentService is a configurable mock for services.PaymentService.
type mockPaymentService struct {
	payment *models.Payment
	payErr  error
	getErr  error
}

func (m *mockPaymentService) Pay(ctx context.Context, projectID, callerID uuid.UUID) (*models.Payment, error) {
	if m.payErr != nil {
		return nil, m.payErr
	}
	return m.payment, nil
}

func (m *mockPaymentService) GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Payment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.payment, nil
}

// mockReviewService is a configurable mock for services.ReviewService.
type mockReviewService struct {
	review    *models.Review
	createErr error
	listErr   error
}

func (m *mockReviewService) Create(ctx context.Context, projectID, reviewerID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.review, nil
}

func (m *mockReviewService) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]*models.Review, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*models.Review{m.review}, nil
}
