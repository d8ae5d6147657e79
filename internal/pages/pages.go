// Package pages assembles the data behind the storefront's landing and
// about pages.
package pages

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront/internal/catalog"
)

const featuredCount = 4

// Catalog is the slice of the catalog the landing page needs.
type Catalog interface {
	PopularProducts(ctx context.Context, limit int) ([]catalog.Summary, error)
	NewestProducts(ctx context.Context, limit int) ([]catalog.Summary, error)
}

type Service struct {
	catalog Catalog
}

func NewService(cat Catalog) *Service {
	return &Service{catalog: cat}
}

// Landing is the index page payload: the four most-ordered products and
// the four newest arrivals.
type Landing struct {
	Popular     []catalog.Summary
	NewArrivals []catalog.Summary
}

func (s *Service) Landing(ctx context.Context) (*Landing, error) {
	popular, err := s.catalog.PopularProducts(ctx, featuredCount)
	if err != nil {
		return nil, fmt.Errorf("pages: popular products: %w", err)
	}
	newest, err := s.catalog.NewestProducts(ctx, featuredCount)
	if err != nil {
		return nil, fmt.Errorf("pages: new arrivals: %w", err)
	}
	return &Landing{Popular: popular, NewArrivals: newest}, nil
}

// About is the static about-page payload.
type About struct {
	Title string
	Body  string
}

func (s *Service) About() About {
	return About{
		Title: "About the store",
		Body:  "Independent keyboard storefront. Catalog, carts and coupons; payments and fulfillment live elsewhere.",
	}
}
