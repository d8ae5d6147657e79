// Package cart implements the session-scoped shopping cart: line items
// keyed by variant id, totals computed against live catalog prices, and
// an optional percentage discount via a referenced coupon.
//
// A Cart is built fresh per request from that request's session and
// discarded with it. Two concurrent requests for the same visitor each
// mutate an independent session snapshot; the last writer wins at the
// session store. That race is an accepted property of the design.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/coupon"
	"github.com/jcmexdev/storefront/internal/session"
)

// ErrInvalidQuantity is returned by Add for quantities below 1. The
// HTTP layer validates input before calling Add; this guard keeps a
// bypassing caller from corrupting stored state.
var ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")

// Line is one stored cart entry. Quantity is at least 1 while the line
// exists; a line is removed outright rather than reduced to 0.
type Line struct {
	Quantity int `json:"quantity"`
}

// Item is an enriched line produced by Lines: the stored quantity
// joined with the live variant and its current price.
type Item struct {
	Variant    catalog.Variant
	Quantity   int
	Price      decimal.Decimal
	TotalPrice decimal.Decimal
}

// Keys names the session entries the cart owns. They come from
// configuration; nothing here hard-codes them.
type Keys struct {
	Cart   string
	Coupon string
}

// Cart is the per-request cart over a session, a catalog and a coupon
// registry.
type Cart struct {
	sess    *session.Session
	keys    Keys
	catalog Catalog
	coupons CouponRegistry

	lines     map[string]Line
	couponID  int64
	hasCoupon bool
}

// New locates the cart mapping in the session, creating and storing an
// empty one when absent, and captures the current coupon reference.
// The coupon reference is captured once; ApplyCoupon is the only way
// it changes within a request.
func New(sess *session.Session, keys Keys, cat Catalog, coupons CouponRegistry) (*Cart, error) {
	c := &Cart{
		sess:    sess,
		keys:    keys,
		catalog: cat,
		coupons: coupons,
		lines:   make(map[string]Line),
	}

	ok, err := sess.Get(keys.Cart, &c.lines)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := sess.Set(keys.Cart, c.lines); err != nil {
			return nil, err
		}
	}

	if ok, err := sess.Get(keys.Coupon, &c.couponID); err != nil {
		return nil, err
	} else if ok {
		c.hasCoupon = true
	}

	return c, nil
}

// Add puts quantity units of item into the cart. With override the
// stored quantity is replaced instead of accumulated.
func (c *Cart) Add(item PurchasableItem, quantity int, override bool) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	id := item.PurchasableID()
	line := c.lines[id] // zero-quantity line when absent

	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	c.lines[id] = line

	return c.save()
}

// Remove deletes item's line entirely. Removing an item that is not in
// the cart is a no-op.
func (c *Cart) Remove(item PurchasableItem) error {
	id := item.PurchasableID()
	if _, ok := c.lines[id]; !ok {
		return nil
	}
	delete(c.lines, id)
	return c.save()
}

// Lines joins the stored entries with the live catalog. Prices are the
// catalog's current prices, so a price change after Add is reflected
// here. Entries whose id no longer resolves are skipped; they still
// count toward UniqueCount until removed. The order is the catalog's
// result order, which need not match insertion order.
func (c *Cart) Lines(ctx context.Context) ([]Item, error) {
	if len(c.lines) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(c.lines))
	for id := range c.lines {
		ids = append(ids, id)
	}

	variants, err := c.catalog.FindVariantsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("cart: resolve lines: %w", err)
	}

	items := make([]Item, 0, len(variants))
	for _, v := range variants {
		line, ok := c.lines[v.PurchasableID()]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		items = append(items, Item{
			Variant:    v,
			Quantity:   line.Quantity,
			Price:      v.Price,
			TotalPrice: v.Price.Mul(qty),
		})
	}
	return items, nil
}

// UniqueCount is the number of distinct lines stored, resolvable or
// not. It deliberately differs from TotalQuantity.
func (c *Cart) UniqueCount() int {
	return len(c.lines)
}

// TotalQuantity is the sum of all stored line quantities.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums price*quantity over the resolvable lines. An empty
// or fully-unresolvable cart totals zero.
func (c *Cart) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	items, err := c.Lines(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total, nil
}

// Coupon resolves the captured coupon reference. Both "no reference"
// and "reference does not resolve" yield (nil, nil).
func (c *Cart) Coupon(ctx context.Context) (*coupon.Coupon, error) {
	if !c.hasCoupon {
		return nil, nil
	}
	co, err := c.coupons.FindByID(ctx, c.couponID)
	if errors.Is(err, coupon.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: resolve coupon %d: %w", c.couponID, err)
	}
	return co, nil
}

// Discount is (discount_percent / 100) * TotalPrice when a coupon
// resolves, zero otherwise.
func (c *Cart) Discount(ctx context.Context) (decimal.Decimal, error) {
	co, err := c.Coupon(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if co == nil {
		return decimal.Zero, nil
	}

	total, err := c.TotalPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	percent := decimal.NewFromInt(co.DiscountPercent)
	return percent.Div(decimal.NewFromInt(100)).Mul(total), nil
}

// TotalAfterDiscount is TotalPrice minus Discount, clamped at zero in
// case the registry ever hands out a discount above 100%.
func (c *Cart) TotalAfterDiscount(ctx context.Context) (decimal.Decimal, error) {
	total, err := c.TotalPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	discount, err := c.Discount(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	result := total.Sub(discount)
	if result.IsNegative() {
		return decimal.Zero, nil
	}
	return result, nil
}

// ApplyCoupon stores a coupon reference in the session and refreshes
// the captured id, so the discount applies within the same request.
func (c *Cart) ApplyCoupon(id int64) error {
	if err := c.sess.Set(c.keys.Coupon, id); err != nil {
		return err
	}
	c.couponID = id
	c.hasCoupon = true
	return nil
}

// Clear removes the cart mapping and the coupon reference from the
// session, so a cleared cart never retains a stale discount.
func (c *Cart) Clear() {
	c.sess.Delete(c.keys.Cart)
	c.sess.Delete(c.keys.Coupon)
	c.lines = make(map[string]Line)
	c.couponID = 0
	c.hasCoupon = false
}

func (c *Cart) save() error {
	return c.sess.Set(c.keys.Cart, c.lines)
}
