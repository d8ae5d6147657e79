package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	categories []Category
	products   map[string]*Product
	variants   map[int64][]Variant
	images     map[int64][]Image

	lastQuery ListQuery
}

func (f *fakeRepo) Categories(ctx context.Context) ([]Category, error) {
	return f.categories, nil
}

func (f *fakeRepo) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	for i := range f.categories {
		if f.categories[i].Slug == slug {
			return &f.categories[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListProducts(ctx context.Context, q ListQuery) (*Page, error) {
	f.lastQuery = q
	return &Page{Page: q.Page, PerPage: q.PerPage}, nil
}

func (f *fakeRepo) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	if p, ok := f.products[slug]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) VariantsByProduct(ctx context.Context, productID int64) ([]Variant, error) {
	return f.variants[productID], nil
}

func (f *fakeRepo) ImagesByProduct(ctx context.Context, productID int64) ([]Image, error) {
	return f.images[productID], nil
}

func (f *fakeRepo) FindVariantsByID(ctx context.Context, ids []string) ([]Variant, error) {
	return nil, nil
}

func (f *fakeRepo) PopularProducts(ctx context.Context, limit int) ([]Summary, error) {
	return nil, nil
}

func (f *fakeRepo) NewestProducts(ctx context.Context, limit int) ([]Summary, error) {
	return nil, nil
}

func attr(attributeID int64, slug, value string) AttributeValue {
	return AttributeValue{ID: attributeID*100 + int64(len(value)), AttributeID: attributeID, AttributeSlug: slug, AttributeName: slug, Value: value}
}

func newFakeRepo() *fakeRepo {
	p := &Product{ID: 1, Name: "K3 Pro", Slug: "k3-pro"}
	return &fakeRepo{
		categories: []Category{{ID: 1, Name: "Keyboards", Slug: "keyboards"}},
		products:   map[string]*Product{"k3-pro": p},
		variants: map[int64][]Variant{
			1: {
				{ID: 10, ProductID: 1, SKU: "WHT-BRN", Price: decimal.RequireFromString("99.00"),
					Attributes: []AttributeValue{attr(1, "color", "White"), attr(2, "switch", "Brown")}},
				{ID: 11, ProductID: 1, SKU: "WHT-RED", Price: decimal.RequireFromString("99.00"),
					Attributes: []AttributeValue{attr(1, "color", "White"), attr(2, "switch", "Red")}},
				{ID: 12, ProductID: 1, SKU: "BLK-BRN", Price: decimal.RequireFromString("104.00"),
					Attributes: []AttributeValue{attr(1, "color", "Black"), attr(2, "switch", "Brown")}},
			},
		},
		images: map[int64][]Image{},
	}
}

func TestListProductsClampsPaging(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.ListProducts(context.Background(), ListQuery{Page: -2})
	require.NoError(t, err)
	require.Equal(t, 1, repo.lastQuery.Page)
	require.Equal(t, defaultPerPage, repo.lastQuery.PerPage)
}

func TestListProductsUnknownCategory(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.ListProducts(context.Background(), ListQuery{CategorySlug: "nope"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProductDetailCollectsUniqueOptions(t *testing.T) {
	svc := NewService(newFakeRepo())

	detail, err := svc.ProductDetail(context.Background(), "k3-pro")
	require.NoError(t, err)

	require.NotNil(t, detail.DefaultVariant)
	require.Equal(t, int64(10), detail.DefaultVariant.ID)

	// White, Brown, Red, Black: each option once despite repeats across
	// variants, in first-seen order.
	var values []string
	for _, av := range detail.AttributeOptions {
		values = append(values, av.Value)
	}
	require.Equal(t, []string{"White", "Brown", "Red", "Black"}, values)
}

func TestMatchVariantANDSemantics(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	v, err := svc.MatchVariant(ctx, "k3-pro", map[string]string{"color": "White", "switch": "Red"})
	require.NoError(t, err)
	require.Equal(t, "WHT-RED", v.SKU)

	// Single constraint picks the first of the matching variants.
	v, err = svc.MatchVariant(ctx, "k3-pro", map[string]string{"switch": "Brown"})
	require.NoError(t, err)
	require.Equal(t, "WHT-BRN", v.SKU)

	_, err = svc.MatchVariant(ctx, "k3-pro", map[string]string{"color": "Black", "switch": "Red"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMatchVariantUnknownProduct(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.MatchVariant(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
}
