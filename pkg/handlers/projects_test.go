package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

func newProjectsTestServer(projectService *mockProjectService) (*http.ServeMux, auth.AuthService) {
	authService, middleware := newTestAuth()
	mux := http.NewServeMux()
	NewProjectsHandler(projectService, zap.NewNop()).RegisterRoutes(mux, middleware)
	return mux, authService
}

func sampleProject(ownerID uuid.UUID) *models.Project {
	return &models.Project{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     "Logo design",
		BudgetMin: 100,
		BudgetMax: 400,
		Status:    models.ProjectOpen,
	}
}

func TestProjectsHandler_Create_Success(t *testing.T) {
	client := testClient()
	mux, authService := newProjectsTestServer(&mockProjectService{project: sampleProject(client.ID)})

	body := `{"title":"Logo design","description":"A fresh logo","budget_min":100,"budget_max":400}`
	req := authorize(httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body)), authService, client)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProjectsHandler_Create_FreelancerForbidden(t *testing.T) {
	mux, authService := newProjectsTestServer(&mockProjectService{})

	body := `{"title":"x","budget_min":1,"budget_max":2}`
	req := authorize(httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body)), authService, testFreelancer())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for freelancer, got %d", rec.Code)
	}
}

func TestProjectsHandler_Create_RequiresAuth(t *testing.T) {
	mux, _ := newProjectsTestServer(&mockProjectService{})

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestProjectsHandler_Get_NotFound(t *testing.T) {
	mux, authService := newProjectsTestServer(&mockProjectService{getErr: apperrors.ErrNotFound})

	req := authorize(httptest.NewRequest(http.MethodGet, "/api/projects/"+uuid.NewString(), nil), authService, testFreelancer())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProjectsHandler_Get_InvalidID(t *testing.T) {
	mux, authService := newProjectsTestServer(&mockProjectService{})

	req := authorize(httptest.NewRequest(http.MethodGet, "/api/projects/not-a-uuid", nil), authService, testFreelancer())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProjectsHandler_ListOpen_PassesPagination(t *testing.T) {
	client := testClient()
	projectService := &mockProjectService{project: sampleProject(client.ID)}
	mux, authService := newProjectsTestServer(projectService)

	req := authorize(httptest.NewRequest(http.MethodGet, "/api/projects?limit=5&offset=10", nil), authService, client)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if projectService.capturedLimit != 5 || projectService.capturedOffset != 10 {
		t.Errorf("expected limit=5 offset=10, got %d/%d", projectService.capturedLimit, projectService.capturedOffset)
	}
}

func TestProjectsHandler_Cancel_InvalidState(t *testing.T) {
	client := testClient()
	mux, authService := newProjectsTestServer(&mockProjectService{cancelErr: apperrors.ErrInvalidState})

	req := authorize(httptest.NewRequest(http.MethodPost, "/api/projects/"+uuid.NewString()+"/cancel", nil), authService, client)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
