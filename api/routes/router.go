package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eddyjj92/compay-storefront/api/controllers"
	"github.com/eddyjj92/compay-storefront/api/middleware"
	cartsvc "github.com/eddyjj92/compay-storefront/internal/cart"
	"github.com/eddyjj92/compay-storefront/internal/chat"
	favsvc "github.com/eddyjj92/compay-storefront/internal/favorites"
	locationsvc "github.com/eddyjj92/compay-storefront/internal/location"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Logg      *logger.Logger
	Client    *compay.Client
	Sessions  *session.Manager
	Renderer  *page.Renderer
	Cart      *cartsvc.Service
	Favorites *favsvc.Service
	Locale    *locationsvc.Service
	Chat      *chat.Gateway
	Store     controllers.Pinger
	Gatherer  prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	logg := deps.Logg
	shared := &controllers.Shared{
		Client:    deps.Client,
		Locale:    deps.Locale,
		Cart:      deps.Cart,
		Favorites: deps.Favorites,
		Logg:      logg,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Recoverer(logg))

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(deps.Store, logg))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)

		r.Get("/", controllers.Home(deps.Client, shared, deps.Renderer, logg))

		r.Get("/products", controllers.ProductsIndex(deps.Client, shared, deps.Renderer, logg))
		r.Get("/product/{id}", controllers.ProductShow(deps.Client, shared, deps.Renderer, logg))
		r.Post("/product/{id}/refresh", controllers.ProductRefresh(deps.Client, shared, logg))

		r.Get("/cart", controllers.CartPage(deps.Cart, shared, deps.Renderer, logg))
		r.Post("/cart", controllers.CartAdd(deps.Cart, shared, logg))
		r.Put("/cart/{productId}", controllers.CartUpdate(deps.Cart, shared, logg))
		r.Delete("/cart/{productId}", controllers.CartRemove(deps.Cart, shared, logg))
		r.Delete("/cart", controllers.CartClear(deps.Cart, logg))
		r.Get("/cart/transportation-cost", controllers.CartTransportationCost(deps.Client, deps.Cart, shared, logg))

		r.Get("/favorites", controllers.FavoritesPage(deps.Favorites, shared, deps.Renderer, logg))
		r.Post("/favorites", controllers.FavoriteToggle(deps.Favorites, logg))
		r.Delete("/favorites/{productId}", controllers.FavoriteRemove(deps.Favorites, logg))
		r.Delete("/favorites", controllers.FavoritesClear(deps.Favorites, logg))

		r.Get("/checkout", controllers.CheckoutPage(deps.Client, deps.Cart, shared, deps.Renderer, logg))
		r.Post("/orders/checkout", controllers.OrdersCheckout(deps.Client, deps.Cart, logg))
		r.Get("/orders", controllers.OrdersIndex(deps.Client, shared, deps.Renderer, logg))

		r.Get("/beneficiaries", controllers.BeneficiariesIndex(deps.Client, logg))
		r.Post("/beneficiaries", controllers.BeneficiaryCreate(deps.Client, logg))
		r.Put("/beneficiaries/{id}", controllers.BeneficiaryUpdate(deps.Client, logg))
		r.Delete("/beneficiaries/{id}", controllers.BeneficiaryDelete(deps.Client, logg))

		r.Route("/conversations", func(r chi.Router) {
			r.Use(middleware.NoCache)
			r.Get("/", controllers.ConversationsIndex(deps.Chat, logg))
			r.Get("/{id}", controllers.ConversationShow(deps.Chat, logg))
			r.Get("/{id}/messages", controllers.ConversationMessages(deps.Chat, logg))
			r.Post("/{id}/messages", controllers.ConversationSendMessage(deps.Chat, logg))
			r.Patch("/{id}/read", controllers.ConversationMarkRead(deps.Chat, logg))
		})

		r.Post("/login", controllers.Login(deps.Client, logg))
		r.Post("/logout", controllers.Logout(logg))
		r.Post("/profile", controllers.ProfileUpdate(deps.Client, logg))

		r.Post("/currency", controllers.CurrencySelect(deps.Client, logg))
		r.Get("/locations", controllers.LocationsIndex(deps.Client, logg))
		r.Post("/locations", controllers.LocationSelect(deps.Client, deps.Locale, logg))

		r.Post("/broadcasting/auth", controllers.BroadcastingAuth(deps.Client, logg))
	})

	return r
}
