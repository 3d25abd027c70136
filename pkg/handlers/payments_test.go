package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
)

func newPaymentsTestServer(paymentService *mockPaymentService) (*http.ServeMux, auth.AuthService) {
	authService, middleware := newTestAuth()
	mux := http.NewServeMux()
	NewPaymentsHandler(paymentService, zap.NewNop()).RegisterRoutes(mux, middleware)
	return mux, authService
}

func TestPaymentsHandler_Pay_Success(t *testing.T) {
	client := testClient()
	payment := &models.Payment{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		PayerID:   client.ID,
		PayeeID:   uuid.New(),
		Amount:    250,
		Status:    models.PaymentCompleted,
	}
	mux, authService := newPaymentsTestServer(&mockPaymentService{payment: payment})

	url := "/api/projects/" + payment.ProjectID.String() + "/payment"
	req := authorize(httptest.NewRequest(http.MethodPost, url, nil), authService, client)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPaymentsHandler_Pay_AlreadyPaid(t *testing.T) {
	mux, authService := newPaymentsTestServer(&mockPaymentService{payErr: apperrors.ErrConflict})

	url := "/api/projects/" + uuid.NewString() + "/payment"
	req := authorize(httptest.NewRequest(http.MethodPost, url, nil), authService, testClient())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPaymentsHandler_Pay_FreelancerForbidden(t *testing.T) {
	mux, authService := newPaymentsTestServer(&mockPaymentService{})

	url := "/api/projects/" + uuid.NewString() + "/payment"
	req := authorize(httptest.NewRequest(http.MethodPost, url, nil), authService, testFreelancer())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for freelancer, got %d", rec.Code)
	}
}

func TestPaymentsHandler_Get_NotFound(t *testing.T) {
	mux, authService := newPaymentsTestServer(&mockPaymentService{getErr: apperrors.ErrNotFound})

	url := "/api/projects/" + uuid.NewString() + "/payment"
	req := authorize(httptest.NewRequest(http.MethodGet, url, nil), authService, testFreelancer())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
