package sales

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/tripbook/internal/platform/httpx"
	"github.com/odyssey-erp/tripbook/internal/shared"
)

// Service is the sale surface the handler depends on. Submit and Revise
// validate the draft before applying it.
type Service interface {
	Sales() []Sale
	Sale(id string) (Sale, bool)
	SubmitSale(ctx context.Context, draft Draft) (Sale, error)
	ReviseSale(ctx context.Context, id string, draft Draft) (Sale, bool, error)
	DeleteSale(ctx context.Context, id string) (bool, error)
	ResetSales(ctx context.Context) error
}

// Handler manages sale endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSales)
	r.Post("/", h.createSale)
	r.Post("/reset", h.resetSales)
	r.Get("/{id}", h.showSale)
	r.Put("/{id}", h.updateSale)
	r.Delete("/{id}", h.deleteSale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Sales())
}

func (h *Handler) showSale(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.service.Sale(chi.URLParam(r, "id"))
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var draft Draft
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, err := h.service.SubmitSale(r.Context(), draft)
	if err != nil {
		h.logger.Warn("sale rejected", slog.String("store", draft.Store), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var draft Draft
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, ok, err := h.service.ReviseSale(r.Context(), id, draft)
	if err != nil {
		h.logger.Warn("sale revision rejected", slog.String("sale_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.DeleteSale(r.Context(), chi.URLParam(r, "id"))
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

func (h *Handler) resetSales(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "yes" {
		httpx.RespondError(w, shared.NewValidationError(map[string]string{"confirm": "must be yes"}))
		return
	}
	if err := h.service.ResetSales(r.Context()); err != nil {
		h.logger.Error("reset sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
