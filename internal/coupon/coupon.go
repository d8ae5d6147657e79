// Package coupon holds the discount coupon domain and the registry
// port the cart resolves coupon references against.
package coupon

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a coupon id or code does not resolve.
// The cart treats it as "no discount", never as a failure.
var ErrNotFound = errors.New("coupon: not found")

// Coupon is a percentage discount off the cart subtotal. The registry
// guarantees DiscountPercent is within [0, 100].
type Coupon struct {
	ID              int64
	Code            string
	DiscountPercent int64
	Active          bool
	ValidFrom       time.Time
	ValidTo         time.Time
}

// Redeemable reports whether the coupon can be applied at time now:
// active and inside its validity window.
func (c Coupon) Redeemable(now time.Time) bool {
	return c.Active && !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

// Registry is the lookup port. FindByID backs cart discount
// resolution; FindByCode backs the apply-coupon endpoint.
type Registry interface {
	FindByID(ctx context.Context, id int64) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}
