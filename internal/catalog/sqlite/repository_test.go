package sqlite

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jcmexdev/storefront/internal/catalog"
)

// seed ids kept on the suite so individual tests can reference them.
type RepositoryTestSuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context

	keyboards, accessories int64
	keychron, akko         int64
	colorWhite, colorBlack int64
	switchBrown            int64
	k3, ak75, wristRest    int64
	k3White, k3Black       int64
	ak75Variant            int64
	wristVariant           int64
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	repo, err := Open(":memory:")
	require.NoError(s.T(), err)
	s.repo = repo

	s.seed()
}

func (s *RepositoryTestSuite) TearDownTest() {
	require.NoError(s.T(), s.repo.Close())
}

func (s *RepositoryTestSuite) seed() {
	t := s.T()
	var err error

	s.keyboards, err = s.repo.InsertCategory(s.ctx, "Keyboards", "keyboards")
	require.NoError(t, err)
	s.accessories, err = s.repo.InsertCategory(s.ctx, "Accessories", "accessories")
	require.NoError(t, err)

	s.keychron, err = s.repo.InsertBrand(s.ctx, "Keychron", "keychron")
	require.NoError(t, err)
	s.akko, err = s.repo.InsertBrand(s.ctx, "Akko", "akko")
	require.NoError(t, err)

	color, err := s.repo.InsertAttribute(s.ctx, "Color", "color")
	require.NoError(t, err)
	sw, err := s.repo.InsertAttribute(s.ctx, "Switch", "switch")
	require.NoError(t, err)

	s.colorWhite, err = s.repo.InsertAttributeValue(s.ctx, color, "Ionic White")
	require.NoError(t, err)
	s.colorBlack, err = s.repo.InsertAttributeValue(s.ctx, color, "Black")
	require.NoError(t, err)
	s.switchBrown, err = s.repo.InsertAttributeValue(s.ctx, sw, "Brown")
	require.NoError(t, err)

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	s.k3 = s.insertProduct("K3 Pro", "k3-pro", s.keyboards, s.keychron, base.AddDate(0, 0, 2))
	s.ak75 = s.insertProduct("AK75", "ak75", s.keyboards, s.akko, base.AddDate(0, 0, 1))
	s.wristRest = s.insertProduct("Wrist Rest", "wrist-rest", s.accessories, s.keychron, base)

	s.k3White = s.insertVariant(s.k3, "K3-WHT-BRN", "99.00", 5)
	s.k3Black = s.insertVariant(s.k3, "K3-BLK-BRN", "104.00", 0)
	s.ak75Variant = s.insertVariant(s.ak75, "AK75-STD", "79.99", 12)
	s.wristVariant = s.insertVariant(s.wristRest, "WR-STD", "25.50", 30)

	require.NoError(s.T(), s.repo.AttachVariantAttribute(s.ctx, s.k3White, s.colorWhite))
	require.NoError(s.T(), s.repo.AttachVariantAttribute(s.ctx, s.k3White, s.switchBrown))
	require.NoError(s.T(), s.repo.AttachVariantAttribute(s.ctx, s.k3Black, s.colorBlack))
	require.NoError(s.T(), s.repo.AttachVariantAttribute(s.ctx, s.k3Black, s.switchBrown))

	_, err = s.repo.InsertImage(s.ctx, catalog.Image{ProductID: s.k3, URL: "/img/k3-black.jpg", SortOrder: 1, AttributeValueID: s.colorBlack})
	require.NoError(t, err)
	_, err = s.repo.InsertImage(s.ctx, catalog.Image{ProductID: s.k3, URL: "/img/k3-main.jpg", SortOrder: 0})
	require.NoError(t, err)
}

func (s *RepositoryTestSuite) insertProduct(name, slug string, categoryID, brandID int64, created time.Time) int64 {
	id, err := s.repo.InsertProduct(s.ctx, catalog.Product{
		Name:       name,
		Slug:       slug,
		CategoryID: categoryID,
		BrandID:    brandID,
		Created:    created,
		Updated:    created,
	})
	require.NoError(s.T(), err)
	return id
}

func (s *RepositoryTestSuite) insertVariant(productID int64, sku, price string, stock int) int64 {
	id, err := s.repo.InsertVariant(s.ctx, catalog.Variant{
		ProductID: productID,
		SKU:       sku,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Available: true,
	})
	require.NoError(s.T(), err)
	return id
}

func (s *RepositoryTestSuite) TestCategoryBySlug() {
	c, err := s.repo.CategoryBySlug(s.ctx, "keyboards")
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Keyboards", c.Name)

	_, err = s.repo.CategoryBySlug(s.ctx, "nope")
	require.ErrorIs(s.T(), err, catalog.ErrNotFound)
}

func (s *RepositoryTestSuite) TestListProductsDefaultOrder() {
	page, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{Page: 1, PerPage: 9})
	require.NoError(s.T(), err)

	require.Equal(s.T(), 3, page.Total)
	names := summaryNames(page.Products)
	require.Equal(s.T(), []string{"AK75", "K3 Pro", "Wrist Rest"}, names)
}

func (s *RepositoryTestSuite) TestListProductsCategoryFilter() {
	page, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{CategorySlug: "keyboards", Page: 1, PerPage: 9})
	require.NoError(s.T(), err)

	require.Equal(s.T(), 2, page.Total)
	require.Equal(s.T(), []string{"AK75", "K3 Pro"}, summaryNames(page.Products))
}

func (s *RepositoryTestSuite) TestListProductsBrandFilter() {
	page, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{BrandSlugs: []string{"akko"}, Page: 1, PerPage: 9})
	require.NoError(s.T(), err)

	require.Equal(s.T(), []string{"AK75"}, summaryNames(page.Products))
}

func (s *RepositoryTestSuite) TestListProductsPriceRange() {
	min := decimal.RequireFromString("80")
	page, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{MinPrice: &min, Page: 1, PerPage: 9})
	require.NoError(s.T(), err)

	require.Equal(s.T(), []string{"K3 Pro"}, summaryNames(page.Products))
}

func (s *RepositoryTestSuite) TestListProductsPriceSortUsesCheapestVariant() {
	page, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{Sort: catalog.SortPriceAsc, Page: 1, PerPage: 9})
	require.NoError(s.T(), err)

	require.Equal(s.T(), []string{"Wrist Rest", "AK75", "K3 Pro"}, summaryNames(page.Products))
	require.Equal(s.T(), "25.50", page.Products[0].MinPrice.StringFixed(2))
	// K3 Pro's min price is its cheapest variant, not the black one.
	require.Equal(s.T(), "99.00", page.Products[2].MinPrice.StringFixed(2))
}

func (s *RepositoryTestSuite) TestListProductsNewestSort() {
	page, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{Sort: catalog.SortNewest, Page: 1, PerPage: 9})
	require.NoError(s.T(), err)

	require.Equal(s.T(), []string{"K3 Pro", "AK75", "Wrist Rest"}, summaryNames(page.Products))
}

func (s *RepositoryTestSuite) TestListProductsPagination() {
	page1, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{Page: 1, PerPage: 2})
	require.NoError(s.T(), err)
	require.Len(s.T(), page1.Products, 2)
	require.Equal(s.T(), 3, page1.Total)
	require.Equal(s.T(), 2, page1.TotalPages())

	page2, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{Page: 2, PerPage: 2})
	require.NoError(s.T(), err)
	require.Len(s.T(), page2.Products, 1)
}

func (s *RepositoryTestSuite) TestListingMainImage() {
	page, err := s.repo.ListProducts(s.ctx, catalog.ListQuery{CategorySlug: "keyboards", Page: 1, PerPage: 9})
	require.NoError(s.T(), err)

	byName := map[string]string{}
	for _, p := range page.Products {
		byName[p.Product.Name] = p.ImageURL
	}
	require.Equal(s.T(), "/img/k3-main.jpg", byName["K3 Pro"])
	require.Empty(s.T(), byName["AK75"])
}

func (s *RepositoryTestSuite) TestVariantsByProductLoadsAttributes() {
	variants, err := s.repo.VariantsByProduct(s.ctx, s.k3)
	require.NoError(s.T(), err)
	require.Len(s.T(), variants, 2)

	white := variants[0]
	require.Equal(s.T(), "K3-WHT-BRN", white.SKU)
	require.True(s.T(), white.HasAttribute("color", "Ionic White"))
	require.True(s.T(), white.HasAttribute("switch", "Brown"))
	require.False(s.T(), white.HasAttribute("color", "Black"))
}

func (s *RepositoryTestSuite) TestZeroStockVariantNeverAvailable() {
	variants, err := s.repo.VariantsByProduct(s.ctx, s.k3)
	require.NoError(s.T(), err)

	black := variants[1]
	require.Equal(s.T(), 0, black.Stock)
	require.False(s.T(), black.Available)
}

func (s *RepositoryTestSuite) TestFindVariantsByID() {
	ids := []string{
		"999999", // unknown
		"banana", // malformed
	}
	ids = append(ids, itoa(s.ak75Variant), itoa(s.k3White))

	variants, err := s.repo.FindVariantsByID(s.ctx, ids)
	require.NoError(s.T(), err)
	require.Len(s.T(), variants, 2)
	// Natural store order: ascending variant id, not request order.
	require.Equal(s.T(), s.k3White, variants[0].ID)
	require.Equal(s.T(), s.ak75Variant, variants[1].ID)
}

func (s *RepositoryTestSuite) TestFindVariantsByIDEmpty() {
	variants, err := s.repo.FindVariantsByID(s.ctx, nil)
	require.NoError(s.T(), err)
	require.Empty(s.T(), variants)

	variants, err = s.repo.FindVariantsByID(s.ctx, []string{"not-a-number"})
	require.NoError(s.T(), err)
	require.Empty(s.T(), variants)
}

func (s *RepositoryTestSuite) TestPopularProducts() {
	require.NoError(s.T(), s.repo.AddOrderCount(s.ctx, s.ak75Variant, 7))
	require.NoError(s.T(), s.repo.AddOrderCount(s.ctx, s.wristVariant, 2))

	popular, err := s.repo.PopularProducts(s.ctx, 2)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []string{"AK75", "Wrist Rest"}, summaryNames(popular))
}

func (s *RepositoryTestSuite) TestNewestProducts() {
	newest, err := s.repo.NewestProducts(s.ctx, 2)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []string{"K3 Pro", "AK75"}, summaryNames(newest))
}

func (s *RepositoryTestSuite) TestImagesByProduct() {
	images, err := s.repo.ImagesByProduct(s.ctx, s.k3)
	require.NoError(s.T(), err)
	require.Len(s.T(), images, 2)
	require.Equal(s.T(), "/img/k3-main.jpg", images[0].URL)
	require.Equal(s.T(), s.colorBlack, images[1].AttributeValueID)
}

func (s *RepositoryTestSuite) TestDeleteVariantMakesLineUnresolvable() {
	require.NoError(s.T(), s.repo.DeleteVariant(s.ctx, s.ak75Variant))

	variants, err := s.repo.FindVariantsByID(s.ctx, []string{itoa(s.ak75Variant)})
	require.NoError(s.T(), err)
	require.Empty(s.T(), variants)
}

func summaryNames(ss []catalog.Summary) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Product.Name
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
