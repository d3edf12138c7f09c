package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type BrandRepo struct{ db *sqlx.DB }

func NewBrandRepo(db *sqlx.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) Get(ctx context.Context, id int64) (domain.Brand, error) {
	var b domain.Brand
	err := r.db.GetContext(ctx, &b, r.db.Rebind(`SELECT id, name, slug FROM brands WHERE id = ?`), id)
	return b, err
}

func (r *BrandRepo) List(ctx context.Context) ([]domain.Brand, error) {
	var out []domain.Brand
	err := r.db.SelectContext(ctx, &out, `SELECT id, name, slug FROM brands ORDER BY name`)
	return out, err
}

// CategoryIDs lists the distinct categories the brand's products live in.
func (r *BrandRepo) CategoryIDs(ctx context.Context, id int64) ([]int64, error) {
	out := []int64{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT DISTINCT category_id FROM products
  WHERE brand_id = ?
  ORDER BY category_id
`), id)
	return out, err
}
