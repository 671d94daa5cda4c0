package inventory

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/tripbook/internal/platform/httpx"
	"github.com/odyssey-erp/tripbook/internal/shared"
)

// Service is the product surface the handler depends on.
type Service interface {
	Products() []Product
	SelectableProducts(excludeNames ...string) []Product
	AddProduct(ctx context.Context, input Input) (Product, error)
	UpdateProduct(ctx context.Context, id string, patch Patch) (Product, bool, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	ResetProducts(ctx context.Context) error
}

// Handler wires HTTP endpoints for the product ledger.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// NewHandler constructs the product handler.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/selectable", h.handleSelectable)
	r.Post("/", h.handleCreate)
	r.Post("/reset", h.handleReset)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type productView struct {
	Product
	RemainingSacks  float64 `json:"remainingSacks"`
	RemainingDozens float64 `json:"remainingDozens"`
}

func present(products []Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		sacks, dozens := p.Remaining()
		out = append(out, productView{Product: p, RemainingSacks: sacks, RemainingDozens: dozens})
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, present(h.service.Products()))
}

func (h *Handler) handleSelectable(w http.ResponseWriter, r *http.Request) {
	exclude := r.URL.Query()["exclude"]
	httpx.JSON(w, http.StatusOK, present(h.service.SelectableProducts(exclude...)))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.AddProduct(r.Context(), input)
	if err != nil {
		h.logger.Warn("add product rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, present([]Product{product})[0])
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if patch.Empty() {
		httpx.RespondError(w, shared.NewValidationError(map[string]string{"body": "must change at least one field"}))
		return
	}
	product, ok, err := h.service.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, present([]Product{product})[0])
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
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

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "yes" {
		httpx.RespondError(w, shared.NewValidationError(map[string]string{"confirm": "must be yes"}))
		return
	}
	if err := h.service.ResetProducts(r.Context()); err != nil {
		h.logger.Error("reset products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
