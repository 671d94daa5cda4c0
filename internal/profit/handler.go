package profit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/tripbook/internal/platform/httpx"
	"github.com/odyssey-erp/tripbook/internal/shared"
)

// Service is the read surface the handler depends on.
type Service interface {
	TodayProfit() float64
	TodayNetProfit(operationalCost float64) float64
	Summary(operationalCost float64) Summary
}

// Handler serves profit figures.
type Handler struct {
	logger      *slog.Logger
	service     Service
	defaultCost float64
}

// NewHandler builds a Handler. defaultCost applies when the request carries
// no operational_cost.
func NewHandler(logger *slog.Logger, service Service, defaultCost float64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, defaultCost: defaultCost}
}

// MountRoutes registers profit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/today", h.handleToday)
	r.Get("/summary", h.handleSummary)
}

type todayResponse struct {
	GrossProfit     float64 `json:"grossProfit"`
	OperationalCost float64 `json:"operationalCost"`
	NetProfit       float64 `json:"netProfit"`
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	cost, err := h.operationalCost(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, todayResponse{
		GrossProfit:     h.service.TodayProfit(),
		OperationalCost: cost,
		NetProfit:       h.service.TodayNetProfit(cost),
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	cost, err := h.operationalCost(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Summary(cost))
}

func (h *Handler) operationalCost(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("operational_cost")
	if raw == "" {
		return h.defaultCost, nil
	}
	cost, err := strconv.ParseFloat(raw, 64)
	if err != nil || cost < 0 {
		return 0, shared.NewValidationError(map[string]string{"operational_cost": "must be a non-negative number"})
	}
	return cost, nil
}
