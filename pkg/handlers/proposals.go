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

// SubmitProposalRequest is the body for POST /api/projects/{id}/proposals.
type SubmitProposalRequest struct {
	Bid         float64 `json:"bid"`
	Timeline    string  `json:"timeline"`
	CoverLetter string  `json:"cover_letter"`
}

// ProposalsHandler handles the proposal lifecycle endpoints.
type ProposalsHandler struct {
	proposalService services.ProposalService
	logger          *zap.Logger
}

// NewProposalsHandler creates a new proposals handler.
func NewProposalsHandler(proposalService services.ProposalService, logger *zap.Logger) *ProposalsHandler {
	return &ProposalsHandler{
		proposalService: proposalService,
		logger:          logger,
	}
}

// RegisterRoutes registers the proposals handler's routes on the given mux.
// Freelancers submit; the project owner accepts and rejects.
func (h *ProposalsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/proposals", authMiddleware.RequireRole(models.RoleFreelancer)(h.Submit))
	mux.HandleFunc("POST /api/projects/{id}/proposals/{proposalID}/accept", authMiddleware.RequireRole(models.RoleClient)(h.Accept))
	mux.HandleFunc("POST /api/projects/{id}/proposals/{proposalID}/reject", authMiddleware.RequireRole(models.RoleClient)(h.Reject))
	mux.HandleFunc("GET /api/proposals/mine", authMiddleware.RequireRole(models.RoleFreelancer)(h.ListMine))
}

// Submit handles POST /api/projects/{id}/proposals.
func (h *ProposalsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	freelancerID, err := auth.RequireUserID(r.Context())
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

	var req SubmitProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	proposal, err := h.proposalService.Submit(r.Context(), projectID, freelancerID, req.Bid, req.Timeline, req.CoverLetter)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, proposal); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Accept handles POST /api/projects/{id}/proposals/{proposalID}/accept.
// The response is the updated project aggregate: status, assignee, and the
// final status of every proposal.
func (h *ProposalsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	projectID, proposalID, callerID, ok := h.decisionParams(w, r)
	if !ok {
		return
	}

	project, err := h.proposalService.Accept(r.Context(), projectID, proposalID, callerID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Reject handles POST /api/projects/{id}/proposals/{proposalID}/reject.
func (h *ProposalsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	projectID, proposalID, callerID, ok := h.decisionParams(w, r)
	if !ok {
		return
	}

	proposal, err := h.proposalService.Reject(r.Context(), projectID, proposalID, callerID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, proposal); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// decisionParams extracts the caller and path parameters shared by the
// accept and reject endpoints, writing the error response on failure.
func (h *ProposalsHandler) decisionParams(w http.ResponseWriter, r *http.Request) (projectID, proposalID, callerID uuid.UUID, ok bool) {
	callerID, err := auth.RequireUserID(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	projectID, err = uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_project_id", "Invalid project ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	proposalID, err = uuid.Parse(r.PathValue("proposalID"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_proposal_id", "Invalid proposal ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	return projectID, proposalID, callerID, true
}

// ListMine handles GET /api/proposals/mine.
func (h *ProposalsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	freelancerID, err := auth.RequireUserID(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	proposals, err := h.proposalService.ListByFreelancer(r.Context(), freelancerID)
	if err != nil {
		ServiceErrorResponse(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"proposals": proposals}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
