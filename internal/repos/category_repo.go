package repos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, parent_id, name, slug, description`

func (r *CategoryRepo) Get(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+categoryCols+` FROM categories WHERE id = ?`), id)
	return c, err
}

// Roots lists top-level categories by name.
func (r *CategoryRepo) Roots(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.SelectContext(ctx, &out, `
  SELECT `+categoryCols+`
  FROM categories
  WHERE parent_id IS NULL
  ORDER BY name
`)
	return out, err
}

// ByIDs returns the categories in ids ordered by name.
func (r *CategoryRepo) ByIDs(ctx context.Context, ids []int64) ([]domain.Category, error) {
	out := []domain.Category{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := bind(r.db, `SELECT `+categoryCols+` FROM categories WHERE id IN (?) ORDER BY name, id`, []any{ids})
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

// Descendants walks the parent->child relation below id and returns every
// reachable category id once, ascending. With includeSelf the root id is
// prepended. The walk has no cycle guard: category parents are trusted to
// form a forest.
func (r *CategoryRepo) Descendants(ctx context.Context, id int64, includeSelf bool) ([]int64, error) {
	var found []int64
	err := r.db.SelectContext(ctx, &found, r.db.Rebind(`
  WITH RECURSIVE descendants(id) AS (
    SELECT id FROM categories WHERE parent_id = ?
    UNION ALL
    SELECT c.id FROM categories c JOIN descendants d ON c.parent_id = d.id
  )
  SELECT DISTINCT id FROM descendants ORDER BY id
`), id)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(found)+1)
	if includeSelf {
		out = append(out, id)
	}
	return append(out, found...), nil
}

// FullPath joins the slugs from the root down to id with "/".
// It returns sql.ErrNoRows for an unknown id.
func (r *CategoryRepo) FullPath(ctx context.Context, id int64) (string, error) {
	var slugs []string
	err := r.db.SelectContext(ctx, &slugs, r.db.Rebind(`
  WITH RECURSIVE ancestors(id, parent_id, slug, depth) AS (
    SELECT id, parent_id, slug, 0 FROM categories WHERE id = ?
    UNION ALL
    SELECT c.id, c.parent_id, c.slug, a.depth + 1
    FROM categories c JOIN ancestors a ON c.id = a.parent_id
  )
  SELECT slug FROM ancestors ORDER BY depth DESC
`), id)
	if err != nil {
		return "", err
	}
	if len(slugs) == 0 {
		return "", sql.ErrNoRows
	}
	return strings.Join(slugs, "/"), nil
}
