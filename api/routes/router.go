package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dansouza2211/app-ifruits-sub000/api/controllers"
	"github.com/Dansouza2211/app-ifruits-sub000/api/middleware"
	cartsvc "github.com/Dansouza2211/app-ifruits-sub000/internal/cart"
	catalogsvc "github.com/Dansouza2211/app-ifruits-sub000/internal/catalog"
	checkoutsvc "github.com/Dansouza2211/app-ifruits-sub000/internal/checkout"
	ordersvc "github.com/Dansouza2211/app-ifruits-sub000/internal/orders"
	cardservice "github.com/Dansouza2211/app-ifruits-sub000/internal/paymentmethods"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/config"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/logger"
	pkgredis "github.com/Dansouza2211/app-ifruits-sub000/pkg/redis"
)

// RouterParams bundle everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *pkgredis.Client
	Catalog         catalogsvc.Service
	Cart            cartsvc.Service
	Checkout        checkoutsvc.Service
	Orders          ordersvc.Service
	Cards           cardservice.Service
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CustomerContext(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	if params.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoresList(params.Catalog, logg))
			r.Get("/{storeID}/products", controllers.StoreProductsList(params.Catalog, logg))
		})
		r.Get("/delivery-options", controllers.DeliveryOptionsList(params.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCustomer(logg))
			r.Use(middleware.Idempotency(params.Redis, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(params.Cart, logg))
				r.Delete("/", controllers.CartClear(params.Cart, logg))
				r.Post("/items", controllers.CartAddItem(params.Cart, logg))
				r.Post("/items/{productID}/increase", controllers.CartIncreaseItem(params.Cart, logg))
				r.Post("/items/{productID}/decrease", controllers.CartDecreaseItem(params.Cart, logg))
				r.Delete("/items/{productID}", controllers.CartRemoveItem(params.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/review", controllers.CheckoutReview(params.Checkout, logg))
				r.Put("/delivery-option", controllers.CheckoutSetDeliveryOption(params.Checkout, logg))
				r.Put("/address", controllers.CheckoutSetAddress(params.Checkout, logg))
				r.Put("/payment-method", controllers.CheckoutSetPaymentMethod(params.Checkout, logg))
				r.Put("/coupon", controllers.CheckoutApplyCoupon(params.Checkout, logg))
				r.Delete("/coupon", controllers.CheckoutRemoveCoupon(params.Checkout, logg))
				r.Post("/place", controllers.CheckoutPlaceOrder(params.Checkout, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(params.Orders, logg))
				r.Get("/{orderID}", controllers.OrdersGet(params.Orders, logg))
				r.Post("/{orderID}/events", controllers.OrdersAdvance(params.Orders, logg))
				r.Post("/{orderID}/confirm-delivery", controllers.OrdersConfirmDelivery(params.Orders, logg))
				r.Post("/{orderID}/cancel", controllers.OrdersCancel(params.Orders, logg))
			})

			r.Route("/payment-cards", func(r chi.Router) {
				r.Get("/", controllers.CardsList(params.Cards, logg))
				r.Post("/", controllers.CardsRegister(params.Cards, logg))
				r.Delete("/{cardID}", controllers.CardsRemove(params.Cards, logg))
			})
		})
	})

	return r
}
