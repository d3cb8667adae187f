package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/controllers"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/middleware"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store controllers.Storefront,
	views controllers.PageRenderer,
	gatherer prometheus.Gatherer,
	checks ...controllers.HealthCheck,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Get("/", controllers.Home(store, views, logg))
		r.Get("/products/{productID}", controllers.ProductDetails(store, logg))
		r.Post("/newsletter", controllers.Newsletter(store, logg))

		r.Route("/fragments", func(r chi.Router) {
			r.Get("/products", controllers.ProductsFragment(store, views, logg))
			r.Get("/cart", controllers.CartFragment(store, views, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/items", controllers.AddCartItem(store, logg))
			r.Post("/items/{productID}", controllers.MutateCartItem(store, logg))
			r.Post("/clear", controllers.ClearCart(store, logg))
			r.Post("/checkout", controllers.Checkout(store, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
		r.Use(middleware.Session(cfg.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartJSON(store, logg))
			r.Post("/items", controllers.AddCartItemJSON(store, logg))
			r.Post("/items/{productID}", controllers.CartLineJSON(store, logg))
		})
	})

	return r
}
