package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thedivyam/noon-sde3/api/controllers"
	"github.com/thedivyam/noon-sde3/api/middleware"
	"github.com/thedivyam/noon-sde3/internal/cart"
	"github.com/thedivyam/noon-sde3/internal/catalog"
	"github.com/thedivyam/noon-sde3/internal/checkout"
	"github.com/thedivyam/noon-sde3/internal/notifications"
	"github.com/thedivyam/noon-sde3/internal/theme"
	"github.com/thedivyam/noon-sde3/pkg/config"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storage controllers.Pinger,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	searcher *catalog.Searcher,
	cartStore *cart.Store,
	checkoutService checkout.Service,
	themeStore *theme.Store,
	hub *notifications.Hub,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	currency := cfg.Pricing.Currency

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storage, cartStore, themeStore))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/starships", controllers.ListStarships(catalogService, cfg.Catalog.PageLimit, logg))

		r.Route("/search", func(r chi.Router) {
			r.Get("/", controllers.SearchState(searcher))
			r.Put("/", controllers.SearchUpdate(searcher, logg))
			r.Post("/refresh", controllers.SearchRefresh(searcher))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartStore, currency))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireLoaded(cartStore, "cart", logg))
				r.Post("/items", controllers.CartAddItem(cartStore, currency, logg))
				r.Delete("/items/{name}", controllers.CartRemoveItem(cartStore, currency, logg))
				r.Delete("/", controllers.CartClear(cartStore, currency, logg))
			})
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, currency, logg))

		r.Route("/theme", func(r chi.Router) {
			r.Get("/", controllers.ThemeFetch(themeStore))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireLoaded(themeStore, "theme", logg))
				r.Put("/", controllers.ThemeUpdate(themeStore, logg))
				r.Post("/toggle", controllers.ThemeToggle(themeStore, logg))
			})
		})

		r.Get("/notifications/stream", controllers.NotificationsStream(hub, logg))
	})

	return r
}
