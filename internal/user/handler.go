package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/transport"
	"github.com/aura-baza/aura-hr/pkg/logger"
)

// Meta is the static reference data the user screens need.
type Meta struct {
	Departments     []string `json:"departments"`
	Statuses        []Status `json:"statuses"`
	PageSizes       []int    `json:"pageSizes"`
	DefaultPageSize int      `json:"defaultPageSize"`
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Meta    Meta
}

func NewHandler(svc ServiceAPI, meta Meta) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Meta:        meta,
	}
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := Filters{
		Search:     q.Get("search"),
		Status:     Status(q.Get("status")),
		Department: q.Get("department"),
		RoleID:     q.Get("roleId"),
	}

	page, err := h.Service.GetUsers(r.Context(), queryInt(r, "page"), queryInt(r, "limit"), filters)
	if err != nil {
		h.Logger.Error("ListUsers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetUser: service error", "error", err, "user_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CreateUser: invalid request body", "error", err)
		h.HandleServiceError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	u, err := h.Service.CreateUser(r.Context(), req)
	if err != nil {
		h.Logger.Error("CreateUser: service error", "error", err, "actor_id", errors.UserIDFromContext(r.Context()))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}

// UpdateUser handles PUT /users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("UpdateUser: invalid request body", "error", err, "user_id", id)
		h.HandleServiceError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	u, err := h.Service.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.Logger.Error("UpdateUser: service error", "error", err, "user_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		h.Logger.Error("DeleteUser: service error", "error", err, "user_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdateUsers handles PATCH /users/bulk
func (h *Handler) BulkUpdateUsers(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("BulkUpdateUsers: invalid request body", "error", err)
		h.HandleServiceError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	users, err := h.Service.BulkUpdateUsers(r.Context(), req.IDs, req.Updates)
	if err != nil {
		h.Logger.Error("BulkUpdateUsers: service error", "error", err, "ids", len(req.IDs))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}

// GetMeta handles GET /meta
func (h *Handler) GetMeta(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Meta)
}
