package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/coupon"
	"github.com/jcmexdev/storefront/internal/pages"
)

// Handler serves the storefront's JSON API: catalog browsing, the
// session cart, coupon application and the landing/about pages.
type Handler struct {
	catalog  *catalog.Service
	pages    *pages.Service
	coupons  coupon.Registry
	cartKeys cart.Keys
}

// NewHandler wires the handler with its domain services. cartKeys names
// the session entries the cart persists under.
func NewHandler(cat *catalog.Service, pg *pages.Service, coupons coupon.Registry, cartKeys cart.Keys) *Handler {
	return &Handler{
		catalog:  cat,
		pages:    pg,
		coupons:  coupons,
		cartKeys: cartKeys,
	}
}

// Landing serves the index page data: popular products and new
// arrivals.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	landing, err := h.pages.Landing(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "landing page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "pages_error", "")
		return
	}
	writeJSON(w, http.StatusOK, landingResponse{
		Popular:     mapSummaries(landing.Popular),
		NewArrivals: mapSummaries(landing.NewArrivals),
	})
}

// About serves the static about payload.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	about := h.pages.About()
	writeJSON(w, http.StatusOK, aboutResponse{Title: about.Title, Body: about.Body})
}
