package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/api/handlers"
	"github.com/Cheertaboi/studio-pricing-service/internal/api/middleware"
	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/service"
)

type Deps struct {
	Pricing      *service.PricingService
	Redemptions  *service.RedemptionService
	Writer       interfaces.DiscountWriter
	BatchWorkers int
	Logger       *zap.Logger
}

// NewRouter builds the HTTP router for the pricing service.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimw.Recoverer)

	pricingHandler := handlers.NewPricingHandler(deps.Pricing, deps.BatchWorkers, deps.Logger)
	discountHandler := handlers.NewDiscountHandler(deps.Pricing.Resolver(), deps.Writer, deps.Logger)
	redemptionHandler := handlers.NewRedemptionHandler(deps.Redemptions, deps.Logger)

	r.Route("/carts", func(r chi.Router) {
		r.Post("/price", pricingHandler.Price)
		r.Post("/price/batch", pricingHandler.PriceBatch)
		r.Post("/totals", pricingHandler.Totals)
	})

	r.Route("/discounts", func(r chi.Router) {
		r.Post("/validate", discountHandler.Validate)
		r.Post("/best", discountHandler.Best)
	})

	r.Post("/redemptions", redemptionHandler.Redeem)

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/discounts", discountHandler.Create)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
