package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CollectionRepo struct{ db *sqlx.DB }

func NewCollectionRepo(db *sqlx.DB) *CollectionRepo { return &CollectionRepo{db: db} }

func (r *CollectionRepo) Get(ctx context.Context, id int64) (domain.Collection, error) {
	var c domain.Collection
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT id, name, slug FROM collections WHERE id = ?`), id)
	return c, err
}

func (r *CollectionRepo) List(ctx context.Context) ([]domain.Collection, error) {
	var out []domain.Collection
	err := r.db.SelectContext(ctx, &out, `SELECT id, name, slug FROM collections ORDER BY name`)
	return out, err
}
