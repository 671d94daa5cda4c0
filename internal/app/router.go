package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/tripbook/internal/book"
	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/profit"
	"github.com/odyssey-erp/tripbook/internal/sales"
	"github.com/odyssey-erp/tripbook/internal/shops"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	InventoryHandler *inventory.Handler
	SalesHandler     *sales.Handler
	ProfitHandler    *profit.Handler
	ShopsHandler     *shops.Handler
}

// NewRouter constructs the chi.Router with tripbook defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.InventoryHandler != nil {
		r.Route("/products", params.InventoryHandler.MountRoutes)
	}
	if params.SalesHandler != nil {
		r.Route("/sales", params.SalesHandler.MountRoutes)
	}
	if params.ProfitHandler != nil {
		r.Route("/profit", params.ProfitHandler.MountRoutes)
	}
	if params.ShopsHandler != nil {
		r.Route("/shops", params.ShopsHandler.MountRoutes)
	}

	return r
}

// BookRoutes builds RouterParams serving every handler from one book.
func BookRoutes(logger *slog.Logger, cfg *Config, b *book.Book) RouterParams {
	var cost float64
	if cfg != nil {
		cost = cfg.OperationalCost
	}
	return RouterParams{
		Logger:           logger,
		Config:           cfg,
		InventoryHandler: inventory.NewHandler(logger, b),
		SalesHandler:     sales.NewHandler(logger, b),
		ProfitHandler:    profit.NewHandler(logger, b, cost),
		ShopsHandler:     shops.NewHandler(logger, b),
	}
}
