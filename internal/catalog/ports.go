package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a category, product or variant does not
// resolve.
var ErrNotFound = errors.New("catalog: not found")

// Sort values accepted by ListQuery, mirroring the storefront's sort
// selector.
const (
	SortDefault   = ""       // name ascending
	SortPriceAsc  = "price"  // cheapest variant first
	SortPriceDesc = "-price" // most expensive variant first
	SortNewest    = "-date"  // newest first
)

// ListQuery narrows and orders a product listing. Zero values mean "no
// constraint".
type ListQuery struct {
	CategorySlug string
	BrandSlugs   []string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Sort         string
	Page         int
	PerPage      int
}

// Page is one page of listing results.
type Page struct {
	Products []Summary
	Total    int
	Page     int
	PerPage  int
}

// TotalPages returns the number of pages the query spans.
func (p *Page) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Repository is the persistence port for the catalog.
type Repository interface {
	Categories(ctx context.Context) ([]Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*Category, error)

	ListProducts(ctx context.Context, q ListQuery) (*Page, error)
	ProductBySlug(ctx context.Context, slug string) (*Product, error)
	VariantsByProduct(ctx context.Context, productID int64) ([]Variant, error)
	ImagesByProduct(ctx context.Context, productID int64) ([]Image, error)

	// FindVariantsByID resolves cart line identifiers against the live
	// catalog. Unknown or malformed ids are silently omitted from the
	// result; the order is the store's natural order (ascending variant
	// id), not the caller's.
	FindVariantsByID(ctx context.Context, ids []string) ([]Variant, error)

	PopularProducts(ctx context.Context, limit int) ([]Summary, error)
	NewestProducts(ctx context.Context, limit int) ([]Summary, error)
}
