package repos

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/query"
)

type ProductRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db, dialect: DialectOf(db)} }

const productCols = `p.id, p.product_type_id, p.category_id, p.brand_id, p.name, p.description,
    p.price, p.available_on, p.is_published, p.attributes`

var orderColumns = map[string]string{
	"name":     "p.name",
	"price":    "p.price",
	"category": "p.category_id",
}

// GetPublished returns a published product or sql.ErrNoRows.
func (r *ProductRepo) GetPublished(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
  SELECT `+productCols+`
  FROM products p
  WHERE p.id = ? AND p.is_published = ?
`), id, true)
	return p, err
}

// List runs q and returns one page of products.
func (r *ProductRepo) List(ctx context.Context, q query.ProductQuery, limit, offset int) ([]domain.Product, error) {
	where := r.where(q)
	sql := `
  SELECT ` + productCols + `
  FROM products p
  WHERE ` + where.SQL + `
  ORDER BY ` + orderClause(q.OrderBy) + `
  LIMIT ? OFFSET ?`
	stmt, args, err := bind(r.db, sql, append(append([]any{}, where.Args...), limit, offset))
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	err = r.db.SelectContext(ctx, &out, stmt, args...)
	return out, err
}

// Count returns how many products q matches.
func (r *ProductRepo) Count(ctx context.Context, q query.ProductQuery) (int, error) {
	where := r.where(q)
	stmt, args, err := bind(r.db, `SELECT COUNT(*) FROM products p WHERE `+where.SQL, where.Args)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.GetContext(ctx, &n, stmt, args...)
	return n, err
}

func (r *ProductRepo) where(q query.ProductQuery) query.Predicate {
	preds := append([]query.Predicate(nil), q.Where...)
	for _, m := range q.Attributes {
		preds = append(preds, r.attributeMatch(m))
	}
	p := query.And(preds...)
	if p.IsZero() {
		return query.Predicate{SQL: "1 = 1"}
	}
	return p
}

func (r *ProductRepo) attributeMatch(m query.AttributeMatch) query.Predicate {
	if len(m.ValueIDs) == 0 {
		return query.False
	}
	key := strconv.FormatInt(m.AttributeID, 10)
	if m.OnVariants {
		return query.Predicate{
			SQL: `EXISTS (SELECT 1 FROM product_variants v, ` + r.dialect.Unpack("v.attributes") + ` kv
        WHERE v.product_id = p.id AND kv.key = ? AND CAST(kv.value AS TEXT) IN (?))`,
			Args: []any{key, m.ValueIDs},
		}
	}
	return query.Predicate{
		SQL: `EXISTS (SELECT 1 FROM ` + r.dialect.Unpack("p.attributes") + ` kv
        WHERE kv.key = ? AND CAST(kv.value AS TEXT) IN (?))`,
		Args: []any{key, m.ValueIDs},
	}
}

func orderClause(orders []query.Order) string {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		col, ok := orderColumns[o.Field]
		if !ok {
			continue
		}
		if o.Desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	// stable paging
	parts = append(parts, "p.id")
	return strings.Join(parts, ", ")
}

// Variants lists a product's variants by id.
func (r *ProductRepo) Variants(ctx context.Context, productID int64) ([]domain.Variant, error) {
	out := []domain.Variant{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT id, product_id, sku, name, price_override, quantity, attributes
  FROM product_variants
  WHERE product_id = ?
  ORDER BY id
`), productID)
	return out, err
}

// AverageRating is 0 when the product has no ratings.
func (r *ProductRepo) AverageRating(ctx context.Context, productID int64) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg, r.db.Rebind(`
  SELECT COALESCE(AVG(value), 0) FROM product_ratings WHERE product_id = ?
`), productID)
	return avg, err
}
