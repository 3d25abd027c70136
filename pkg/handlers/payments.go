package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
	"github.com/gigplane-inc/gigplane-engine/pkg/services"
)

// PaymentsHandler handles payment endpoints.
type PaymentsHandler struct {
	paymentService services.PaymentService
	logger         *zap.Logger
}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler(paymentService services.PaymentService, logger *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// RegisterRoutes registers the payments handler's routes on the given mux.
func (h *PaymentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/payment", authMiddleware.RequireRole(models.RoleClient)(h.Pay))
	mux.HandleFunc("GET /api/projects/{id}/payment", authMiddleware.RequireAuth(h.Get))
}

// Pay handles POST /api/projects/{id}/payment.
// Charges the accepted bid and completes the project. The body is empty:
// the amount always comes from the accepted proposal.
func (h *PaymentsHandler) Pay(w http.ResponseWriter, r *http.Request) {
	callerID, err := auth.RequireUserID(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	payment, err := h.paymentService.Pay(r.Context(), projectID, callerID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, payment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}/payment.
func (h *PaymentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	payment, err := h.paymentService.GetByProject(r.Context(), projectID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, payment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
