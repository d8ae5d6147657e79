package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront/internal/catalog"
)

// Write helpers used by seed tooling and tests. The HTTP surface never
// mutates the catalog; merchandising happens out-of-band.

func (r *Repository) InsertCategory(ctx context.Context, name, slug string) (int64, error) {
	return r.insert(ctx, `INSERT INTO categories (name, slug) VALUES (?, ?)`, name, slug)
}

func (r *Repository) InsertBrand(ctx context.Context, name, slug string) (int64, error) {
	return r.insert(ctx, `INSERT INTO brands (name, slug) VALUES (?, ?)`, name, slug)
}

func (r *Repository) InsertAttribute(ctx context.Context, name, slug string) (int64, error) {
	return r.insert(ctx, `INSERT INTO attributes (name, slug) VALUES (?, ?)`, name, slug)
}

func (r *Repository) InsertAttributeValue(ctx context.Context, attributeID int64, value string) (int64, error) {
	return r.insert(ctx, `INSERT INTO attribute_values (attribute_id, value) VALUES (?, ?)`, attributeID, value)
}

func (r *Repository) InsertProduct(ctx context.Context, p catalog.Product) (int64, error) {
	now := time.Now().UTC()
	if p.Created.IsZero() {
		p.Created = now
	}
	if p.Updated.IsZero() {
		p.Updated = now
	}
	return r.insert(ctx, `
		INSERT INTO products (name, slug, category_id, brand_id, description, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Slug, p.CategoryID, p.BrandID, p.Description,
		p.Created.Format(time.RFC3339Nano), p.Updated.Format(time.RFC3339Nano),
	)
}

func (r *Repository) InsertVariant(ctx context.Context, v catalog.Variant) (int64, error) {
	// A variant with no stock is never available, whatever the caller
	// says.
	available := v.Available
	if v.Stock == 0 {
		available = false
	}
	return r.insert(ctx, `
		INSERT INTO variants (product_id, sku, price, stock, available)
		VALUES (?, ?, ?, ?, ?)`,
		v.ProductID, v.SKU, v.Price.String(), v.Stock, available,
	)
}

func (r *Repository) AttachVariantAttribute(ctx context.Context, variantID, attributeValueID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO variant_attribute_values (variant_id, attribute_value_id)
		VALUES (?, ?)`, variantID, attributeValueID)
	if err != nil {
		return fmt.Errorf("sqlite: attach attribute %d to variant %d: %w", attributeValueID, variantID, err)
	}
	return nil
}

func (r *Repository) InsertImage(ctx context.Context, img catalog.Image) (int64, error) {
	var attributeValueID any
	if img.AttributeValueID != 0 {
		attributeValueID = img.AttributeValueID
	}
	return r.insert(ctx, `
		INSERT INTO product_images (product_id, attribute_value_id, url, sort_order)
		VALUES (?, ?, ?, ?)`,
		img.ProductID, attributeValueID, img.URL, img.SortOrder,
	)
}

// AddOrderCount bumps a variant's popularity counter. Called by the
// order pipeline, which lives outside this service.
func (r *Repository) AddOrderCount(ctx context.Context, variantID int64, n int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE variants SET order_count = order_count + ? WHERE id = ?`, n, variantID)
	if err != nil {
		return fmt.Errorf("sqlite: bump order count of variant %d: %w", variantID, err)
	}
	return nil
}

// DeleteVariant removes a variant. Cart lines referencing it become
// unresolvable and drop out of totals on the next read.
func (r *Repository) DeleteVariant(ctx context.Context, variantID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM variants WHERE id = ?`, variantID)
	if err != nil {
		return fmt.Errorf("sqlite: delete variant %d: %w", variantID, err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	return id, nil
}
