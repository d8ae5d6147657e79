package cart

import (
	"context"

	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/coupon"
)

// PurchasableItem is anything that can be added to the cart. The
// catalog's Variant is the concrete shape; price is always read back
// from the Catalog at iteration time, never captured here.
type PurchasableItem interface {
	PurchasableID() string
}

// Catalog resolves stored line identifiers to live variants. Ids with
// no match are silently omitted; the result order is the catalog's,
// not the cart's insertion order.
type Catalog interface {
	FindVariantsByID(ctx context.Context, ids []string) ([]catalog.Variant, error)
}

// CouponRegistry resolves a stored coupon reference. A coupon.ErrNotFound
// result degrades to "no discount"; any other error is surfaced.
type CouponRegistry interface {
	FindByID(ctx context.Context, id int64) (*coupon.Coupon, error)
}
