// Package catalog holds the product catalog domain: categories,
// brands, attributes, products, their purchasable variants and images,
// plus the browsing services the HTTP layer composes.
package catalog

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64
	Name string
	Slug string
}

type Brand struct {
	ID   int64
	Name string
	Slug string
}

// Attribute is a configurable axis of a product, e.g. "Color" or
// "Switch".
type Attribute struct {
	ID   int64
	Name string
	Slug string
}

// AttributeValue is one concrete option of an attribute, e.g.
// Color: "Ionic White". AttributeSlug and AttributeName are denormalised
// for display and variant matching.
type AttributeValue struct {
	ID            int64
	AttributeID   int64
	AttributeSlug string
	AttributeName string
	Value         string
}

type Product struct {
	ID          int64
	Name        string
	Slug        string
	CategoryID  int64
	BrandID     int64
	Description string
	Created     time.Time
	Updated     time.Time
}

// Variant is a specific purchasable configuration of a product with its
// own price and stock. It is the one concrete purchasable shape the
// cart accepts.
type Variant struct {
	ID         int64
	ProductID  int64
	SKU        string
	Price      decimal.Decimal
	Stock      int
	Available  bool
	Attributes []AttributeValue
}

// PurchasableID returns the identifier the cart keys its lines by.
func (v Variant) PurchasableID() string {
	return strconv.FormatInt(v.ID, 10)
}

// HasAttribute reports whether the variant carries the given value for
// the given attribute slug.
func (v Variant) HasAttribute(attributeSlug, value string) bool {
	for _, av := range v.Attributes {
		if av.AttributeSlug == attributeSlug && av.Value == value {
			return true
		}
	}
	return false
}

// Image is a product photo. AttributeValueID, when non-zero, binds the
// image to a specific option (e.g. the white-colorway shots).
type Image struct {
	ID               int64
	ProductID        int64
	AttributeValueID int64
	URL              string
	SortOrder        int
}

// Summary is the listing-row projection of a product: the cheapest
// variant price and the main image, ready for a product grid.
type Summary struct {
	Product  Product
	MinPrice decimal.Decimal
	ImageURL string
}
