package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/models"
	"github.com/gigplane-inc/gigplane-engine/pkg/services"
)

// CreateReviewRequest is the body for POST /api/projects/{id}/review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewsHandler handles review endpoints.
type ReviewsHandler struct {
	reviewService services.ReviewService
	logger        *zap.Logger
}

// NewReviewsHandler creates a new reviews handler.
func NewReviewsHandler(reviewService services.ReviewService, logger *zap.Logger) *ReviewsHandler {
	return &ReviewsHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers the reviews handler's routes on the given mux.
func (h *ReviewsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/review", authMiddleware.RequireRole(models.RoleClient)(h.Create))
	mux.HandleFunc("GET /api/users/{id}/reviews", authMiddleware.RequireAuth(h.ListByReviewee))
}

// Create handles POST /api/projects/{id}/review.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := auth.RequireUserID(r.Context())
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

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	review, err := h.reviewService.Create(r.Context(), projectID, reviewerID, req.Rating, req.Comment)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, review); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListByReviewee handles GET /api/users/{id}/reviews.
func (h *ReviewsHandler) ListByReviewee(w http.ResponseWriter, r *http.Request) {
	revieweeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	reviews, err := h.reviewService.ListByReviewee(r.Context(), revieweeID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
