package shops

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/tripbook/internal/platform/httpx"
	"github.com/odyssey-erp/tripbook/internal/shared"
)

// Service is the shop surface the handler depends on.
type Service interface {
	Shops() []Shop
	ShopAreas() []string
	AddShop(ctx context.Context, input Input) (Shop, error)
	UpdateShop(ctx context.Context, id string, input Input) (Shop, bool, error)
	DeleteShop(ctx context.Context, id string) (bool, error)
}

// Handler serves shop endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers shop routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/areas", h.areas)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Shops())
}

func (h *Handler) areas(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ShopAreas())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	shop, err := h.service.AddShop(r.Context(), input)
	if err != nil {
		h.logger.Warn("add shop rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shop)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	shop, ok, err := h.service.UpdateShop(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, shop)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.DeleteShop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
