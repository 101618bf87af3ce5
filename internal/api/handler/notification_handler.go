package handler

import (
	"net/http"

	"crackmehub/internal/api/middleware"
	"crackmehub/internal/app/service"
	"crackmehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.list)
	r.Get("/unseen", h.unseenCount)
	r.Post("/seen", h.markAllSeen)
	r.Post("/{hexID}/seen", h.markSeen)
	r.Delete("/{hexID}", h.delete)
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())
	page, pageSize := paginationParams(r)
	notifications, err := h.notificationService.List(r.Context(), username, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) unseenCount(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())
	count, err := h.notificationService.UnseenCount(r.Context(), username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int{"unseen": count})
}

func (h *NotificationHandler) markSeen(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())
	if err := h.notificationService.MarkSeen(r.Context(), chi.URLParam(r, "hexID"), username); err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "seen"})
}

func (h *NotificationHandler) markAllSeen(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())
	if err := h.notificationService.MarkAllSeen(r.Context(), username); err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "seen"})
}

func (h *NotificationHandler) delete(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())
	if err := h.notificationService.Delete(r.Context(), chi.URLParam(r, "hexID"), username); err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
