package catalog

import (
	"context"
	"fmt"
)

const defaultPerPage = 9

// Service composes repository calls into the payloads the HTTP layer
// renders: filtered listings, product detail with variant options, and
// attribute-based variant matching.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Listing is a product list page plus the navigation context around it.
type Listing struct {
	Page       *Page
	Category   *Category // nil when listing across all categories
	Categories []Category
}

// ListProducts returns one page of products. An unknown category slug
// is ErrNotFound; page and per-page are clamped to sane values.
func (s *Service) ListProducts(ctx context.Context, q ListQuery) (*Listing, error) {
	var category *Category
	if q.CategorySlug != "" {
		c, err := s.repo.CategoryBySlug(ctx, q.CategorySlug)
		if err != nil {
			return nil, err
		}
		category = c
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}

	page, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list categories: %w", err)
	}

	return &Listing{Page: page, Category: category, Categories: categories}, nil
}

// Detail is everything the product page needs: the product, its
// variants, the variant selected by default, the unique attribute
// options across all variants, and the gallery.
type Detail struct {
	Product          Product
	Variants         []Variant
	DefaultVariant   *Variant
	AttributeOptions []AttributeValue
	Images           []Image
}

// ProductDetail loads a product by slug with its variants and images.
func (s *Service) ProductDetail(ctx context.Context, slug string) (*Detail, error) {
	product, err := s.repo.ProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	variants, err := s.repo.VariantsByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: variants of %q: %w", slug, err)
	}

	images, err := s.repo.ImagesByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: images of %q: %w", slug, err)
	}

	detail := &Detail{
		Product:          *product,
		Variants:         variants,
		AttributeOptions: uniqueAttributeValues(variants),
		Images:           images,
	}
	if len(variants) > 0 {
		detail.DefaultVariant = &variants[0]
	}
	return detail, nil
}

// MatchVariant returns the first variant of the product carrying every
// requested attribute value (AND semantics). selection maps attribute
// slug to value, e.g. {"color": "Ionic White", "switch": "Brown"}.
func (s *Service) MatchVariant(ctx context.Context, slug string, selection map[string]string) (*Variant, error) {
	product, err := s.repo.ProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	variants, err := s.repo.VariantsByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: variants of %q: %w", slug, err)
	}

	for i := range variants {
		if matchesSelection(variants[i], selection) {
			return &variants[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindVariantsByID exposes the cart's catalog contract.
func (s *Service) FindVariantsByID(ctx context.Context, ids []string) ([]Variant, error) {
	return s.repo.FindVariantsByID(ctx, ids)
}

func matchesSelection(v Variant, selection map[string]string) bool {
	for attributeSlug, value := range selection {
		if !v.HasAttribute(attributeSlug, value) {
			return false
		}
	}
	return true
}

// uniqueAttributeValues collects the distinct (attribute, value) pairs
// across variants, preserving first-seen order, so the UI renders each
// option button once.
func uniqueAttributeValues(variants []Variant) []AttributeValue {
	type key struct {
		attributeID int64
		value       string
	}
	seen := make(map[key]struct{})
	var out []AttributeValue
	for _, v := range variants {
		for _, av := range v.Attributes {
			k := key{av.AttributeID, av.Value}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, av)
		}
	}
	return out
}
