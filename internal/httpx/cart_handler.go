package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/coupon"
	"github.com/jcmexdev/storefront/internal/session"
)

// itemRef carries a purchasable identifier taken from the URL. Remove
// works on the identifier alone so a line whose variant was deleted
// from the catalog can still be taken out of the cart.
type itemRef string

func (r itemRef) PurchasableID() string { return string(r) }

// cartFromRequest builds the per-request cart over the session the
// middleware attached.
func (h *Handler) cartFromRequest(r *http.Request) (*cart.Cart, error) {
	sess := session.FromContext(r.Context())
	return cart.New(sess, h.cartKeys, h.catalog, h.coupons)
}

// CartAdd puts a variant into the cart. The request body carries the
// quantity and whether it replaces the stored one; quantity validation
// happens here, before the cart is touched.
func (h *Handler) CartAdd(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")

	var req cartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be a positive integer")
		return
	}

	variants, err := h.catalog.FindVariantsByID(r.Context(), []string{variantID})
	if err != nil {
		slog.ErrorContext(r.Context(), "variant lookup failed", "variant_id", variantID, "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "")
		return
	}
	if len(variants) == 0 {
		writeError(w, http.StatusNotFound, "variant_not_found", variantID)
		return
	}
	variant := variants[0]

	c, err := h.cartFromRequest(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "cart load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	if err := c.Add(variant, req.Quantity, req.Override); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}

	state, err := h.cartState(r.Context(), c, variant.PurchasableID())
	if err != nil {
		slog.ErrorContext(r.Context(), "cart totals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// CartRemove deletes a line by variant id. Removing an absent line
// still answers 200 with the current state; remove is a no-op then.
func (h *Handler) CartRemove(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")

	c, err := h.cartFromRequest(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "cart load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	if err := c.Remove(itemRef(variantID)); err != nil {
		slog.ErrorContext(r.Context(), "cart remove failed", "variant_id", variantID, "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	state, err := h.cartState(r.Context(), c, "")
	if err != nil {
		slog.ErrorContext(r.Context(), "cart totals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// CartDetail serves the full cart: enriched lines, the applied coupon
// if any, and the totals.
func (h *Handler) CartDetail(w http.ResponseWriter, r *http.Request) {
	c, err := h.cartFromRequest(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "cart load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	items, err := c.Lines(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "cart lines failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	co, err := c.Coupon(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "coupon lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	state, err := h.cartState(r.Context(), c, "")
	if err != nil {
		slog.ErrorContext(r.Context(), "cart totals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	writeJSON(w, http.StatusOK, cartDetailResponse{
		Items:  mapCartItems(items),
		Coupon: mapCoupon(co),
		State:  state,
	})
}

// CartClear empties the cart and drops any applied coupon.
func (h *Handler) CartClear(w http.ResponseWriter, r *http.Request) {
	c, err := h.cartFromRequest(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "cart load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	c.Clear()

	state, err := h.cartState(r.Context(), c, "")
	if err != nil {
		slog.ErrorContext(r.Context(), "cart totals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ApplyCoupon stores a coupon reference in the session after checking
// the code exists, is active and is inside its validity window.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code_required", "")
		return
	}

	co, err := h.coupons.FindByCode(r.Context(), req.Code)
	if err != nil && !errors.Is(err, coupon.ErrNotFound) {
		slog.ErrorContext(r.Context(), "coupon lookup failed", "code", req.Code, "error", err)
		writeError(w, http.StatusInternalServerError, "coupon_error", "")
		return
	}
	if co == nil || !co.Redeemable(time.Now()) {
		writeError(w, http.StatusNotFound, "invalid_coupon", req.Code)
		return
	}

	c, err := h.cartFromRequest(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "cart load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	if err := c.ApplyCoupon(co.ID); err != nil {
		slog.ErrorContext(r.Context(), "coupon apply failed", "coupon_id", co.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}

	state, err := h.cartState(r.Context(), c, "")
	if err != nil {
		slog.ErrorContext(r.Context(), "cart totals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cart_error", "")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// cartState assembles the totals payload. When focusID names a line,
// its quantity and line total are included for the UI widget.
func (h *Handler) cartState(ctx context.Context, c *cart.Cart, focusID string) (cartStateResponse, error) {
	subtotal, err := c.TotalPrice(ctx)
	if err != nil {
		return cartStateResponse{}, err
	}
	discount, err := c.Discount(ctx)
	if err != nil {
		return cartStateResponse{}, err
	}
	total, err := c.TotalAfterDiscount(ctx)
	if err != nil {
		return cartStateResponse{}, err
	}

	state := cartStateResponse{
		UniqueCount:   c.UniqueCount(),
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      subtotal.StringFixed(2),
		Discount:      discount.StringFixed(2),
		Total:         total.StringFixed(2),
	}

	if focusID != "" {
		items, err := c.Lines(ctx)
		if err != nil {
			return cartStateResponse{}, err
		}
		for _, it := range items {
			if it.Variant.PurchasableID() == focusID {
				state.VariantID = focusID
				state.ItemQty = it.Quantity
				state.ItemTotal = it.TotalPrice.StringFixed(2)
				break
			}
		}
	}
	return state, nil
}
