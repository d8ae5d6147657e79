// Package sqlite provides the SQLite-backed catalog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers.
// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
// requirements.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	// Register the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/jcmexdev/storefront/internal/catalog"
)

// schema is the DDL executed once on startup. order_count on variants
// is a denormalised popularity counter maintained by whatever creates
// orders; this service only reads it.
const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    name    TEXT NOT NULL,
    slug    TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS brands (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    name    TEXT NOT NULL,
    slug    TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS attributes (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    name    TEXT NOT NULL,
    slug    TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS attribute_values (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    attribute_id INTEGER NOT NULL REFERENCES attributes(id) ON DELETE CASCADE,
    value        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    slug        TEXT NOT NULL UNIQUE,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    brand_id    INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    description TEXT NOT NULL DEFAULT '',
    created     TEXT NOT NULL,
    updated     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

CREATE TABLE IF NOT EXISTS variants (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    sku         TEXT NOT NULL UNIQUE,
    -- Decimal price kept as TEXT to avoid float drift; CAST to REAL
    -- only for range filters and ordering.
    price       TEXT NOT NULL,
    stock       INTEGER NOT NULL DEFAULT 0,
    available   INTEGER NOT NULL DEFAULT 1,
    order_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_variants_product ON variants(product_id);

CREATE TABLE IF NOT EXISTS variant_attribute_values (
    variant_id         INTEGER NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
    attribute_value_id INTEGER NOT NULL REFERENCES attribute_values(id) ON DELETE CASCADE,
    PRIMARY KEY (variant_id, attribute_value_id)
);

CREATE TABLE IF NOT EXISTS product_images (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id         INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    attribute_value_id INTEGER REFERENCES attribute_values(id) ON DELETE SET NULL,
    url                TEXT NOT NULL,
    sort_order         INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_images_product ON product_images(product_id, sort_order);
`

// summarySelect is the shared projection for listing rows: product
// columns, cheapest variant price, and the main image (lowest sort
// order).
const summarySelect = `
SELECT p.id, p.name, p.slug, p.category_id, p.brand_id, p.description, p.created, p.updated,
       MIN(CAST(v.price AS REAL)) AS min_price,
       COALESCE((SELECT i.url FROM product_images i
                 WHERE i.product_id = p.id
                 ORDER BY i.sort_order, i.id LIMIT 1), '') AS image_url
FROM products p
JOIN variants v ON v.product_id = p.id`

// Repository is the SQLite implementation of catalog.Repository.
type Repository struct {
	db *sql.DB
}

var _ catalog.Repository = (*Repository)(nil)

// Open opens (or creates) the catalog database at the given path and
// applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply catalog schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) CategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	var c catalog.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM categories WHERE slug = ?`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: category %q: %w", slug, err)
	}
	return &c, nil
}

func (r *Repository) ListProducts(ctx context.Context, q catalog.ListQuery) (*catalog.Page, error) {
	where, args := buildListFilter(q)

	countQuery := `SELECT COUNT(DISTINCT p.id) FROM products p JOIN variants v ON v.product_id = p.id` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: count products: %w", err)
	}

	query := summarySelect + where + ` GROUP BY p.id ORDER BY ` + orderClause(q.Sort) + ` LIMIT ? OFFSET ?`
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)

	summaries, err := r.querySummaries(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &catalog.Page{
		Products: summaries,
		Total:    total,
		Page:     q.Page,
		PerPage:  q.PerPage,
	}, nil
}

func (r *Repository) ProductBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, category_id, brand_id, description, created, updated
		FROM   products
		WHERE  slug = ?`, slug)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: product %q: %w", slug, err)
	}
	return p, nil
}

func (r *Repository) VariantsByProduct(ctx context.Context, productID int64) ([]catalog.Variant, error) {
	return r.queryVariants(ctx, `
		SELECT id, product_id, sku, price, stock, available
		FROM   variants
		WHERE  product_id = ?
		ORDER  BY id`, productID)
}

func (r *Repository) ImagesByProduct(ctx context.Context, productID int64) ([]catalog.Image, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, COALESCE(attribute_value_id, 0), url, sort_order
		FROM   product_images
		WHERE  product_id = ?
		ORDER  BY sort_order, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: images of product %d: %w", productID, err)
	}
	defer rows.Close()

	var out []catalog.Image
	for rows.Next() {
		var img catalog.Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.AttributeValueID, &img.URL, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("sqlite: scan image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *Repository) FindVariantsByID(ctx context.Context, ids []string) ([]catalog.Variant, error) {
	// Malformed ids cannot match any row; drop them the same way an
	// unknown id is dropped.
	numeric := make([]any, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		numeric = append(numeric, n)
	}
	if len(numeric) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, product_id, sku, price, stock, available
		FROM   variants
		WHERE  id IN (%s)
		ORDER  BY id`, placeholders(len(numeric)))

	return r.queryVariants(ctx, query, numeric...)
}

func (r *Repository) PopularProducts(ctx context.Context, limit int) ([]catalog.Summary, error) {
	query := summarySelect + ` GROUP BY p.id ORDER BY SUM(v.order_count) DESC, p.id LIMIT ?`
	return r.querySummaries(ctx, query, limit)
}

func (r *Repository) NewestProducts(ctx context.Context, limit int) ([]catalog.Summary, error) {
	query := summarySelect + ` GROUP BY p.id ORDER BY p.created DESC, p.id DESC LIMIT ?`
	return r.querySummaries(ctx, query, limit)
}

func buildListFilter(q catalog.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q.CategorySlug != "" {
		conds = append(conds, `p.category_id IN (SELECT id FROM categories WHERE slug = ?)`)
		args = append(args, q.CategorySlug)
	}
	if len(q.BrandSlugs) > 0 {
		conds = append(conds, fmt.Sprintf(`p.brand_id IN (SELECT id FROM brands WHERE slug IN (%s))`, placeholders(len(q.BrandSlugs))))
		for _, s := range q.BrandSlugs {
			args = append(args, s)
		}
	}
	if q.MinPrice != nil {
		conds = append(conds, `CAST(v.price AS REAL) >= ?`)
		args = append(args, q.MinPrice.InexactFloat64())
	}
	if q.MaxPrice != nil {
		conds = append(conds, `CAST(v.price AS REAL) <= ?`)
		args = append(args, q.MaxPrice.InexactFloat64())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case catalog.SortPriceAsc:
		return `min_price ASC, p.id`
	case catalog.SortPriceDesc:
		return `min_price DESC, p.id`
	case catalog.SortNewest:
		return `p.created DESC, p.id DESC`
	default:
		return `p.name ASC, p.id`
	}
}

func (r *Repository) querySummaries(ctx context.Context, query string, args ...any) ([]catalog.Summary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query summaries: %w", err)
	}
	defer rows.Close()

	var out []catalog.Summary
	for rows.Next() {
		var (
			s        catalog.Summary
			created  string
			updated  string
			minPrice float64
		)
		err := rows.Scan(
			&s.Product.ID, &s.Product.Name, &s.Product.Slug,
			&s.Product.CategoryID, &s.Product.BrandID, &s.Product.Description,
			&created, &updated, &minPrice, &s.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan summary: %w", err)
		}
		if s.Product.Created, err = parseTime(created); err != nil {
			return nil, err
		}
		if s.Product.Updated, err = parseTime(updated); err != nil {
			return nil, err
		}
		s.MinPrice = decimal.NewFromFloat(minPrice).Round(2)
		out = append(out, s)
	}
	return out, rows.Err()
}

// queryVariants runs a variant select and attaches attribute values in
// a second query, keeping the row order of the first.
func (r *Repository) queryVariants(ctx context.Context, query string, args ...any) ([]catalog.Variant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query variants: %w", err)
	}
	defer rows.Close()

	var variants []catalog.Variant
	index := make(map[int64]int)
	for rows.Next() {
		var (
			v     catalog.Variant
			price string
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &price, &v.Stock, &v.Available); err != nil {
			return nil, fmt.Errorf("sqlite: scan variant: %w", err)
		}
		if v.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: variant %d price %q: %w", v.ID, price, err)
		}
		index[v.ID] = len(variants)
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, nil
	}

	ids := make([]any, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
	}

	attrQuery := fmt.Sprintf(`
		SELECT va.variant_id, av.id, av.attribute_id, a.slug, a.name, av.value
		FROM   variant_attribute_values va
		JOIN   attribute_values av ON av.id = va.attribute_value_id
		JOIN   attributes a        ON a.id  = av.attribute_id
		WHERE  va.variant_id IN (%s)
		ORDER  BY va.variant_id, av.id`, placeholders(len(ids)))

	attrRows, err := r.db.QueryContext(ctx, attrQuery, ids...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query variant attributes: %w", err)
	}
	defer attrRows.Close()

	for attrRows.Next() {
		var (
			variantID int64
			av        catalog.AttributeValue
		)
		if err := attrRows.Scan(&variantID, &av.ID, &av.AttributeID, &av.AttributeSlug, &av.AttributeName, &av.Value); err != nil {
			return nil, fmt.Errorf("sqlite: scan variant attribute: %w", err)
		}
		i := index[variantID]
		variants[i].Attributes = append(variants[i].Attributes, av)
	}
	return variants, attrRows.Err()
}

func scanProduct(row *sql.Row) (*catalog.Product, error) {
	var (
		p       catalog.Product
		created string
		updated string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.BrandID, &p.Description, &created, &updated)
	if err != nil {
		return nil, err
	}
	if p.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.Updated, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// parseTime parses the timestamp strings stored in SQLite. SQLite has
// no native datetime type; we store RFC3339 TEXT.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
