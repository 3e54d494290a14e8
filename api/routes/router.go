package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/layali-lounge/qrmenu-backend/api/controllers"
	"github.com/layali-lounge/qrmenu-backend/api/middleware"
	"github.com/layali-lounge/qrmenu-backend/internal/catalog"
	checkoutsvc "github.com/layali-lounge/qrmenu-backend/internal/checkout"
	ordersrepo "github.com/layali-lounge/qrmenu-backend/internal/orders"
	staffsvc "github.com/layali-lounge/qrmenu-backend/internal/staff"
	visitsvc "github.com/layali-lounge/qrmenu-backend/internal/visit"
	"github.com/layali-lounge/qrmenu-backend/pkg/config"
	"github.com/layali-lounge/qrmenu-backend/pkg/db"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
	"github.com/layali-lounge/qrmenu-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessionManager middleware.VisitLoader,
	catalogRepo *catalog.Repository,
	ordersRepo *ordersrepo.Repository,
	visitService *visitsvc.Service,
	checkoutService *checkoutsvc.Service,
	staffService *staffsvc.Service,
	metricsGatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Customer surface, all session-backed.
		r.Group(func(r chi.Router) {
			r.Use(middleware.VisitSession(sessionManager, cfg.Session, logg))

			r.Get("/menu", controllers.Menu(catalogRepo, visitService, logg))
			r.Get("/menu/products/{slug}", controllers.MenuProduct(catalogRepo, visitService, logg))
			r.Get("/menu/offers/{slug}", controllers.MenuOffer(catalogRepo, visitService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartView(catalogRepo, visitService, logg))
				r.Post("/items", controllers.CartAddItem(catalogRepo, cfg.Cart, logg))
				r.Post("/items/update", controllers.CartUpdateQty(catalogRepo, cfg.Cart, logg))
				r.Post("/items/remove", controllers.CartRemoveItem(catalogRepo, logg))
				r.Post("/clear", controllers.CartClear(catalogRepo, logg))
				r.Post("/table", controllers.CartSetTable(catalogRepo, logg))
			})

			r.Post("/checkout", controllers.Checkout(checkoutService, logg))
		})

		r.Get("/orders/{orderId}", controllers.OrderDetail(ordersRepo, logg))

		r.Route("/staff", func(r chi.Router) {
			r.Get("/dashboard", controllers.StaffDashboard(staffService, logg))
			r.Post("/orders/{orderId}/status", controllers.StaffSetStatus(staffService, logg))
			r.Post("/orders/{orderId}/done", controllers.StaffMarkDelivered(staffService, logg))
		})
	})

	return r
}
