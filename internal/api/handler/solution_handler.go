package handler

import (
	"net/http"

	"crackmehub/internal/api/middleware"
	"crackmehub/internal/app/service"
	"crackmehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type SolutionHandler struct {
	solutionService   *service.SolutionService
	moderationService *service.ModerationService
}

func NewSolutionHandler(solutionService *service.SolutionService, moderationService *service.ModerationService) *SolutionHandler {
	return &SolutionHandler{
		solutionService:   solutionService,
		moderationService: moderationService,
	}
}

func (h *SolutionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{hexID}", h.detail)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/{hexID}/approve", h.approve)
		admin.Delete("/{hexID}", h.reject)
	})
}

func (h *SolutionHandler) detail(w http.ResponseWriter, r *http.Request) {
	solution, err := h.solutionService.Get(r.Context(), chi.URLParam(r, "hexID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solution)
}

func (h *SolutionHandler) approve(w http.ResponseWriter, r *http.Request) {
	if err := h.moderationService.ApproveSolution(r.Context(), chi.URLParam(r, "hexID")); err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *SolutionHandler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	_ = decodeJSON(r, &req) // body is optional

	if err := h.moderationService.RejectSolution(r.Context(), chi.URLParam(r, "hexID"), req.StoredFilename, req.Reason); err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
