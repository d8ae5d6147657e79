package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/catalog"
)

// ListProducts serves the filtered, paginated product grid.
//
// Query parameters: category, brand (repeatable), min_price, max_price,
// sort (price | -price | -date), page.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := catalog.ListQuery{
		CategorySlug: r.URL.Query().Get("category"),
		BrandSlugs:   r.URL.Query()["brand"],
		Sort:         r.URL.Query().Get("sort"),
	}

	var err error
	if q.MinPrice, err = parsePrice(r.URL.Query().Get("min_price")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_min_price", err.Error())
		return
	}
	if q.MaxPrice, err = parsePrice(r.URL.Query().Get("max_price")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_max_price", err.Error())
		return
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if q.Page, err = strconv.Atoi(p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page", "page must be an integer")
			return
		}
	}

	listing, err := h.catalog.ListProducts(r.Context(), q)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "category_not_found", q.CategorySlug)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "product listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "")
		return
	}

	resp := listingResponse{
		Products:   mapSummaries(listing.Page.Products),
		Total:      listing.Page.Total,
		Page:       listing.Page.Page,
		PerPage:    listing.Page.PerPage,
		TotalPages: listing.Page.TotalPages(),
		Categories: mapCategories(listing.Categories),
	}
	if listing.Category != nil {
		c := mapCategory(*listing.Category)
		resp.Category = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProductDetail serves one product with its variants, attribute options
// and images.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	detail, err := h.catalog.ProductDetail(r.Context(), slug)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product_not_found", slug)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "product detail failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "")
		return
	}

	writeJSON(w, http.StatusOK, mapDetail(detail))
}

// MatchVariant picks the first variant of a product matching every
// attribute selection in the query string, e.g.
// /products/k3-pro/variant?color=Ionic+White&switch=Brown.
func (h *Handler) MatchVariant(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	selection := make(map[string]string, len(r.URL.Query()))
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			selection[key] = vals[0]
		}
	}

	variant, err := h.catalog.MatchVariant(r.Context(), slug, selection)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "variant_not_found", "")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "variant match failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "")
		return
	}

	writeJSON(w, http.StatusOK, mapVariant(*variant))
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.New("price must be a decimal number")
	}
	return &d, nil
}
