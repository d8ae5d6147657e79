// Package sqlite provides the SQLite-backed coupon.Registry. It can
// share a database file with the catalog store; each store applies its
// own schema on Open.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jcmexdev/storefront/internal/coupon"
)

const schema = `
CREATE TABLE IF NOT EXISTS coupons (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    code             TEXT NOT NULL UNIQUE COLLATE NOCASE,
    -- Percentage off the cart subtotal, checked into [0, 100] here so
    -- downstream consumers can rely on it.
    discount_percent INTEGER NOT NULL CHECK (discount_percent BETWEEN 0 AND 100),
    active           INTEGER NOT NULL DEFAULT 1,
    valid_from       TEXT NOT NULL,
    valid_to         TEXT NOT NULL
);
`

// Repository is the SQLite implementation of coupon.Registry.
type Repository struct {
	db *sql.DB
}

var _ coupon.Registry = (*Repository)(nil)

// Open opens (or creates) the coupon store at the given path and
// applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply coupon schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*coupon.Coupon, error) {
	return r.findBy(ctx, `id = ?`, id)
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.findBy(ctx, `code = ?`, strings.TrimSpace(code))
}

func (r *Repository) findBy(ctx context.Context, cond string, arg any) (*coupon.Coupon, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, discount_percent, active, valid_from, valid_to
		FROM   coupons
		WHERE  `+cond, arg)

	var (
		c        coupon.Coupon
		from, to string
	)
	err := row.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.Active, &from, &to)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, coupon.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find coupon: %w", err)
	}

	if c.ValidFrom, err = parseTime(from); err != nil {
		return nil, err
	}
	if c.ValidTo, err = parseTime(to); err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert stores a coupon and returns its id. Used by seed tooling and
// tests.
func (r *Repository) Insert(ctx context.Context, c coupon.Coupon) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO coupons (code, discount_percent, active, valid_from, valid_to)
		VALUES (?, ?, ?, ?, ?)`,
		c.Code, c.DiscountPercent, c.Active,
		c.ValidFrom.UTC().Format(time.RFC3339Nano),
		c.ValidTo.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert coupon %q: %w", c.Code, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	return id, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
