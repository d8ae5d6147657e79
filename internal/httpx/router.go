package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront/internal/session"
)

// NewRouter assembles the storefront routes. The session middleware
// wraps only the cart routes; catalog browsing works without a session.
func NewRouter(handler *Handler, sessions session.Store, cookieName string, sessionTTL time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", handler.Landing)
	r.Get("/about", handler.About)

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{slug}", handler.ProductDetail)
	r.Get("/products/{slug}/variant", handler.MatchVariant)

	r.Route("/cart", func(r chi.Router) {
		r.Use(session.Middleware(sessions, cookieName, sessionTTL))

		r.Get("/", handler.CartDetail)
		r.Delete("/", handler.CartClear)
		r.Post("/items/{variantID}", handler.CartAdd)
		r.Delete("/items/{variantID}", handler.CartRemove)
		r.Post("/coupon", handler.ApplyCoupon)
	})

	return r
}
