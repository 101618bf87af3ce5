package handler

import (
	"net/http"

	"crackmehub/internal/app/service"
	"crackmehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService     *service.UserService
	crackmeService  *service.CrackmeService
	solutionService *service.SolutionService
	commentService  *service.CommentService
}

func NewUserHandler(
	userService *service.UserService,
	crackmeService *service.CrackmeService,
	solutionService *service.SolutionService,
	commentService *service.CommentService,
) *UserHandler {
	return &UserHandler{
		userService:     userService,
		crackmeService:  crackmeService,
		solutionService: solutionService,
		commentService:  commentService,
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{name}", h.profile)
	r.Get("/{name}/crackmes", h.crackmes)
	r.Get("/{name}/solutions", h.solutions)
	r.Get("/{name}/comments", h.comments)
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) crackmes(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	crackmes, err := h.crackmeService.ListByAuthor(r.Context(), chi.URLParam(r, "name"), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, crackmes)
}

func (h *UserHandler) solutions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	solutions, err := h.solutionService.ListByAuthor(r.Context(), chi.URLParam(r, "name"), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solutions)
}

func (h *UserHandler) comments(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	comments, err := h.commentService.ListByAuthor(r.Context(), chi.URLParam(r, "name"), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}
