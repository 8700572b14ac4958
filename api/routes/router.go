package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopmart/shopmart-backend/api/controllers"
	"github.com/shopmart/shopmart-backend/api/middleware"
	"github.com/shopmart/shopmart-backend/internal/auth"
	"github.com/shopmart/shopmart-backend/internal/cart"
	"github.com/shopmart/shopmart-backend/internal/orders"
	"github.com/shopmart/shopmart-backend/internal/wishlist"
	"github.com/shopmart/shopmart-backend/pkg/config"
	"github.com/shopmart/shopmart-backend/pkg/logger"
	"github.com/shopmart/shopmart-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	storePinger controllers.Pinger,
	catalogService controllers.CatalogService,
	cartService cart.Service,
	ordersService orders.Service,
	wishlistService wishlist.Service,
	authService auth.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storePinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/", controllers.CartAdd(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Patch("/{productId}", controllers.CartSetQuantity(cartService, logg))
			r.Delete("/{productId}", controllers.CartRemove(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(ordersService, logg))
		r.Get("/orders", controllers.OrdersList(ordersService, logg))

		r.Get("/products", controllers.ProductsList(catalogService, logg))
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoriesList(catalogService, logg))
			r.Get("/{categoryId}", controllers.CategoryDetail(catalogService, logg))
			r.Get("/{categoryId}/subcategories", controllers.CategorySubcategories(catalogService, logg))
		})
		r.Get("/subcategories", controllers.SubcategoriesList(catalogService, logg))
		r.Get("/brands", controllers.BrandsList(catalogService, logg))

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(wishlistService, logg))
			r.Post("/", controllers.WishlistToggle(wishlistService, logg))
			r.Get("/ids", controllers.WishlistLikedIDs(wishlistService, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", controllers.AuthSaveToken(authService, logg))
			r.Delete("/token", controllers.AuthSignOut(authService, logg))
			r.Get("/session", controllers.AuthSession(authService, logg))
			r.Post("/forgot-password", controllers.AuthForgotPassword(authService, logg))
			r.Post("/verify-reset-code", controllers.AuthVerifyResetCode(authService, logg))
		})
	})

	return r
}
