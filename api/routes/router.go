package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	catalogService catalog.Service,
	sessions controllers.SessionResolver,
	idempotencyStore redis.IdempotencyStore,
	readiness map[string]controllers.Pinger,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeValidation, "method not allowed").WithDetails(map[string]any{
			"method": req.Method,
		}))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", controllers.CatalogCategories(catalogService, logg))
		r.Get("/categories/{slug}/products", controllers.CategoryProducts(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(logg))
			r.Use(middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg))

			r.Route("/products/{productId}", func(r chi.Router) {
				r.Get("/", controllers.ProductDetail(catalogService, sessions, logg))
				r.Post("/selection", controllers.ProductSelect(catalogService, sessions, logg))
				r.Post("/cart", controllers.ProductAddToCart(catalogService, sessions, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(sessions, logg))
				r.Delete("/", controllers.CartClear(sessions, logg))
				r.Post("/open", controllers.CartOpen(sessions, logg))
				r.Post("/close", controllers.CartClose(sessions, logg))
				r.Post("/toggle", controllers.CartToggle(sessions, logg))
				r.Post("/items/{key}/increase", controllers.CartItemIncrease(sessions, logg))
				r.Post("/items/{key}/decrease", controllers.CartItemDecrease(sessions, logg))
				r.Delete("/items/{key}", controllers.CartItemRemove(sessions, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutState(sessions, logg))
				r.Post("/", controllers.CheckoutPlace(sessions, logg))
			})
		})
	})

	return r
}
