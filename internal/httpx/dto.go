package httpx

import (
	"time"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/coupon"
)

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type productSummaryDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	MinPrice string `json:"min_price"`
	ImageURL string `json:"image_url,omitempty"`
}

type listingResponse struct {
	Products   []productSummaryDTO `json:"products"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	TotalPages int                 `json:"total_pages"`
	Category   *categoryDTO        `json:"category,omitempty"`
	Categories []categoryDTO       `json:"categories"`
}

type attributeValueDTO struct {
	ID        int64  `json:"id"`
	Attribute string `json:"attribute"`
	Slug      string `json:"attribute_slug"`
	Value     string `json:"value"`
}

type variantDTO struct {
	ID         int64               `json:"id"`
	SKU        string              `json:"sku"`
	Price      string              `json:"price"`
	Stock      int                 `json:"stock"`
	Available  bool                `json:"available"`
	Attributes []attributeValueDTO `json:"attributes"`
}

type imageDTO struct {
	URL              string `json:"url"`
	SortOrder        int    `json:"sort_order"`
	AttributeValueID int64  `json:"attribute_value_id,omitempty"`
}

type productDetailResponse struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	Description      string              `json:"description"`
	Created          string              `json:"created"`
	Variants         []variantDTO        `json:"variants"`
	DefaultVariantID int64               `json:"default_variant_id,omitempty"`
	AttributeOptions []attributeValueDTO `json:"attribute_options"`
	Images           []imageDTO          `json:"images"`
}

type landingResponse struct {
	Popular     []productSummaryDTO `json:"popular_products"`
	NewArrivals []productSummaryDTO `json:"new_arrivals"`
}

type aboutResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type cartAddRequest struct {
	Quantity int  `json:"quantity"`
	Override bool `json:"override"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type couponDTO struct {
	Code            string `json:"code"`
	DiscountPercent int64  `json:"discount_percent"`
}

// cartStateResponse mirrors the payload the storefront UI updates its
// cart widget from after a mutation.
type cartStateResponse struct {
	UniqueCount   int    `json:"unique_count"`
	TotalQuantity int    `json:"total_quantity"`
	Subtotal      string `json:"cart_subtotal"`
	Discount      string `json:"cart_discount"`
	Total         string `json:"cart_total_price"`
	VariantID     string `json:"variant_id,omitempty"`
	ItemQty       int    `json:"item_qty,omitempty"`
	ItemTotal     string `json:"item_total_price,omitempty"`
}

type cartItemDTO struct {
	VariantID  int64               `json:"variant_id"`
	ProductID  int64               `json:"product_id"`
	SKU        string              `json:"sku"`
	Quantity   int                 `json:"quantity"`
	Price      string              `json:"price"`
	TotalPrice string              `json:"total_price"`
	Attributes []attributeValueDTO `json:"attributes,omitempty"`
}

type cartDetailResponse struct {
	Items  []cartItemDTO     `json:"items"`
	Coupon *couponDTO        `json:"coupon,omitempty"`
	State  cartStateResponse `json:"state"`
}

func mapCategory(c catalog.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func mapCategories(cs []catalog.Category) []categoryDTO {
	out := make([]categoryDTO, len(cs))
	for i, c := range cs {
		out[i] = mapCategory(c)
	}
	return out
}

func mapSummaries(ss []catalog.Summary) []productSummaryDTO {
	out := make([]productSummaryDTO, len(ss))
	for i, s := range ss {
		out[i] = productSummaryDTO{
			ID:       s.Product.ID,
			Name:     s.Product.Name,
			Slug:     s.Product.Slug,
			MinPrice: s.MinPrice.StringFixed(2),
			ImageURL: s.ImageURL,
		}
	}
	return out
}

func mapAttributeValues(avs []catalog.AttributeValue) []attributeValueDTO {
	out := make([]attributeValueDTO, len(avs))
	for i, av := range avs {
		out[i] = attributeValueDTO{
			ID:        av.ID,
			Attribute: av.AttributeName,
			Slug:      av.AttributeSlug,
			Value:     av.Value,
		}
	}
	return out
}

func mapVariant(v catalog.Variant) variantDTO {
	return variantDTO{
		ID:         v.ID,
		SKU:        v.SKU,
		Price:      v.Price.StringFixed(2),
		Stock:      v.Stock,
		Available:  v.Available,
		Attributes: mapAttributeValues(v.Attributes),
	}
}

func mapDetail(d *catalog.Detail) productDetailResponse {
	resp := productDetailResponse{
		ID:               d.Product.ID,
		Name:             d.Product.Name,
		Slug:             d.Product.Slug,
		Description:      d.Product.Description,
		Created:          d.Product.Created.UTC().Format(time.RFC3339),
		AttributeOptions: mapAttributeValues(d.AttributeOptions),
	}
	resp.Variants = make([]variantDTO, len(d.Variants))
	for i, v := range d.Variants {
		resp.Variants[i] = mapVariant(v)
	}
	if d.DefaultVariant != nil {
		resp.DefaultVariantID = d.DefaultVariant.ID
	}
	resp.Images = make([]imageDTO, len(d.Images))
	for i, img := range d.Images {
		resp.Images[i] = imageDTO{
			URL:              img.URL,
			SortOrder:        img.SortOrder,
			AttributeValueID: img.AttributeValueID,
		}
	}
	return resp
}

func mapCartItems(items []cart.Item) []cartItemDTO {
	out := make([]cartItemDTO, len(items))
	for i, it := range items {
		out[i] = cartItemDTO{
			VariantID:  it.Variant.ID,
			ProductID:  it.Variant.ProductID,
			SKU:        it.Variant.SKU,
			Quantity:   it.Quantity,
			Price:      it.Price.StringFixed(2),
			TotalPrice: it.TotalPrice.StringFixed(2),
			Attributes: mapAttributeValues(it.Variant.Attributes),
		}
	}
	return out
}

func mapCoupon(c *coupon.Coupon) *couponDTO {
	if c == nil {
		return nil
	}
	return &couponDTO{Code: c.Code, DiscountPercent: c.DiscountPercent}
}
