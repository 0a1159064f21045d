package role

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aura-baza/aura-hr/internal/transport"
	"github.com/aura-baza/aura-hr/pkg/logger"
)

type Lister interface {
	List(ctx context.Context) ([]Role, error)
}

type Handler struct {
	*transport.BaseHandler
	Catalog Lister
}

func NewHandler(catalog Lister) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Catalog:     catalog,
	}
}

// ListRoles handles GET /roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Catalog.List(r.Context())
	if err != nil {
		h.Logger.Error("ListRoles: catalog error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, roles)
}
