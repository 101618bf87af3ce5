package handler

import (
	"net/http"
	"strconv"

	"crackmehub/internal/app/service"
	"crackmehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/recent", h.recent)
}

func (h *CommentHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	comments, err := h.commentService.Recent(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}
