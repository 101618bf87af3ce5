package handler

import (
	"io"
	"net/http"
	"strconv"

	"crackmehub/internal/api/middleware"
	"crackmehub/internal/app/service"
	"crackmehub/internal/common"

	"github.com/go-chi/chi/v5"
)

// Crackme uploads are capped well above any reasonable challenge binary.
const maxUploadBytes = 32 << 20

type CrackmeHandler struct {
	crackmeService    *service.CrackmeService
	solutionService   *service.SolutionService
	commentService    *service.CommentService
	ratingService     *service.RatingService
	moderationService *service.ModerationService
}

func NewCrackmeHandler(
	crackmeService *service.CrackmeService,
	solutionService *service.SolutionService,
	commentService *service.CommentService,
	ratingService *service.RatingService,
	moderationService *service.ModerationService,
) *CrackmeHandler {
	return &CrackmeHandler{
		crackmeService:    crackmeService,
		solutionService:   solutionService,
		commentService:    commentService,
		ratingService:     ratingService,
		moderationService: moderationService,
	}
}

func (h *CrackmeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/search", h.search)
	r.Get("/{hexID}", h.detail)
	r.Get("/{hexID}/solutions", h.listSolutions)
	r.Get("/{hexID}/comments", h.listComments)

	r.Group(func(auth chi.Router) {
		auth.Use(middleware.Authenticator)
		auth.Post("/", h.create)
		auth.Post("/{hexID}/solutions", h.submitSolution)
		auth.Post("/{hexID}/comments", h.createComment)
		auth.Post("/{hexID}/ratings/{kind}", h.rate)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/{hexID}/approve", h.approve)
		admin.Delete("/{hexID}", h.reject)
	})
}

func (h *CrackmeHandler) list(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	crackmes, total, err := h.crackmeService.List(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"crackmes": crackmes,
		"total":    total,
		"page":     page,
	})
}

func (h *CrackmeHandler) search(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	crackmes, total, err := h.crackmeService.Search(r.Context(), r.URL.Query().Get("q"), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"crackmes": crackmes,
		"total":    total,
		"page":     page,
	})
}

func (h *CrackmeHandler) detail(w http.ResponseWriter, r *http.Request) {
	crackme, err := h.crackmeService.Get(r.Context(), chi.URLParam(r, "hexID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, crackme)
}

func (h *CrackmeHandler) create(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart payload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Crackme artifact file is required")
		return
	}
	defer file.Close()

	req := service.CreateCrackmeRequest{
		Name:     r.FormValue("name"),
		Info:     r.FormValue("info"),
		Lang:     r.FormValue("lang"),
		Arch:     r.FormValue("arch"),
		Platform: r.FormValue("platform"),
	}
	crackme, err := h.crackmeService.Create(r.Context(), username, req, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, crackme)
}

func (h *CrackmeHandler) listSolutions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	solutions, err := h.solutionService.ListByCrackme(r.Context(), chi.URLParam(r, "hexID"), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solutions)
}

func (h *CrackmeHandler) submitSolution(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart payload: "+err.Error())
		return
	}
	var filename string
	var file io.Reader
	if f, header, err := r.FormFile("file"); err == nil {
		defer f.Close()
		file = f
		filename = header.Filename
	}

	solution, err := h.solutionService.Submit(r.Context(), chi.URLParam(r, "hexID"), username, r.FormValue("info"), filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, solution)
}

func (h *CrackmeHandler) listComments(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	comments, err := h.commentService.ListByCrackme(r.Context(), chi.URLParam(r, "hexID"), page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	Info string `json:"info"`
}

func (h *CrackmeHandler) createComment(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	comment, err := h.commentService.Create(r.Context(), chi.URLParam(r, "hexID"), username, req.Info)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, comment)
}

type rateRequest struct {
	Rating int `json:"rating"`
}

func (h *CrackmeHandler) rate(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsernameFromContext(r.Context())

	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	kind := ratingKindFromParam(chi.URLParam(r, "kind"))
	summary, err := h.ratingService.Rate(r.Context(), kind, username, chi.URLParam(r, "hexID"), req.Rating)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *CrackmeHandler) approve(w http.ResponseWriter, r *http.Request) {
	if err := h.moderationService.ApproveCrackme(r.Context(), chi.URLParam(r, "hexID")); err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

type rejectRequest struct {
	StoredFilename string `json:"stored_filename"`
	Reason         string `json:"reason"`
}

func (h *CrackmeHandler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	_ = decodeJSON(r, &req) // body is optional

	result, err := h.moderationService.RejectCrackme(r.Context(), chi.URLParam(r, "hexID"), req.StoredFilename, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func paginationParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}
