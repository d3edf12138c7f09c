package repos

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/query"
)

type AttributeRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewAttributeRepo(db *sqlx.DB) *AttributeRepo {
	return &AttributeRepo{db: db, dialect: DialectOf(db)}
}

// Matching returns the distinct attributes satisfying pred, with their values
// preloaded in display order. pred refers to the attribute table as "a".
func (r *AttributeRepo) Matching(ctx context.Context, pred query.Predicate) ([]domain.Attribute, error) {
	where := pred
	if where.IsZero() {
		where = query.Predicate{SQL: "1 = 1"}
	}
	q, args, err := bind(r.db, `
  SELECT DISTINCT a.id, a.name, a.slug
  FROM product_attributes a
  WHERE `+where.SQL+`
  ORDER BY a.id`, where.Args)
	if err != nil {
		return nil, err
	}
	var attrs []domain.Attribute
	if err := r.db.SelectContext(ctx, &attrs, q, args...); err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return attrs, nil
	}

	ids := make([]int64, len(attrs))
	for i, a := range attrs {
		ids[i] = a.ID
	}
	q, args, err = bind(r.db, `
  SELECT id, attribute_id, name, slug
  FROM attribute_values
  WHERE attribute_id IN (?)
  ORDER BY sort_order, id`, []any{ids})
	if err != nil {
		return nil, err
	}
	var vals []domain.AttributeValue
	if err := r.db.SelectContext(ctx, &vals, q, args...); err != nil {
		return nil, err
	}
	byAttr := make(map[int64][]domain.AttributeValue, len(attrs))
	for _, v := range vals {
		byAttr[v.AttributeID] = append(byAttr[v.AttributeID], v)
	}
	for i := range attrs {
		attrs[i].Values = byAttr[attrs[i].ID]
	}
	return attrs, nil
}

// ApplicableValues returns the distinct attribute value ids that occur on
// products in categoryIDs under an attribute whose name is in names.
// Map entries that are not plain integers are ignored.
func (r *AttributeRepo) ApplicableValues(ctx context.Context, categoryIDs []int64, names []string) ([]int64, error) {
	out := []int64{}
	if len(categoryIDs) == 0 || len(names) == 0 {
		return out, nil
	}
	d := r.dialect
	q, args, err := bind(r.db, `
  WITH pairs AS (
    SELECT `+d.SafeInt("kv.key")+` AS attribute_id,
           `+d.SafeInt("kv.value")+` AS value_id
    FROM products p, `+d.Unpack("p.attributes")+` kv
    WHERE p.category_id IN (?)
  )
  SELECT DISTINCT pairs.value_id
  FROM pairs
  JOIN product_attributes a ON a.id = pairs.attribute_id
  WHERE a.name IN (?) AND pairs.value_id IS NOT NULL
  ORDER BY pairs.value_id`, []any{categoryIDs, names})
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

// Describe resolves an attribute map into attribute/value names ordered by
// attribute name. Unknown or mismatched entries are skipped.
func (r *AttributeRepo) Describe(ctx context.Context, m domain.AttrMap) ([]domain.AttributePair, error) {
	out := []domain.AttributePair{}
	var valueIDs []int64
	for _, v := range m {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			valueIDs = append(valueIDs, id)
		}
	}
	if len(valueIDs) == 0 {
		return out, nil
	}
	q, args, err := bind(r.db, `
  SELECT a.id AS attribute_id, v.id AS value_id, a.name AS attribute, v.name AS value
  FROM attribute_values v
  JOIN product_attributes a ON a.id = v.attribute_id
  WHERE v.id IN (?)
  ORDER BY a.name, v.sort_order`, []any{valueIDs})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		AttributeID int64 `db:"attribute_id"`
		ValueID     int64 `db:"value_id"`
		domain.AttributePair
	}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if m[strconv.FormatInt(row.AttributeID, 10)] == strconv.FormatInt(row.ValueID, 10) {
			out = append(out, row.AttributePair)
		}
	}
	return out, nil
}
