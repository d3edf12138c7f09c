package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartItemRow struct {
	VariantID  int64           `db:"variant_id"`
	ProductID  int64           `db:"product_id"`
	Product    string          `db:"product"`
	Variant    string          `db:"variant"`
	Qty        int             `db:"qty"`
	PriceAtAdd decimal.Decimal `db:"price_at_add"`
}

func (r CartItemRow) Subtotal() decimal.Decimal {
	return r.PriceAtAdd.Mul(decimal.NewFromInt(int64(r.Qty)))
}

func (r *CartRepo) EnsureCart(ctx context.Context, sessionID string) (string, error) {
	var cartID string
	if err := r.db.GetContext(ctx, &cartID, r.db.Rebind(`SELECT id FROM carts WHERE session_id = ?`), sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)`),
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// Qty is the quantity of variantID already in the cart (0 when absent).
func (r *CartRepo) Qty(ctx context.Context, cartID string, variantID int64) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty, r.db.Rebind(`
	  SELECT COALESCE(SUM(qty), 0) FROM cart_items WHERE cart_id = ? AND variant_id = ?
	`), cartID, variantID)
	return qty, err
}

func (r *CartRepo) UpsertItem(ctx context.Context, cartID string, variantID int64, qty int, price decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO cart_items(cart_id,variant_id,qty,price_at_add,created_at)
		VALUES(?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,variant_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`), cartID, variantID, qty, price.String())
	return err
}

func (r *CartRepo) View(ctx context.Context, cartID string) ([]CartItemRow, decimal.Decimal, error) {
	rows := []CartItemRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
	  SELECT ci.variant_id, p.id AS product_id, p.name AS product, v.name AS variant,
	         ci.qty, ci.price_at_add
	  FROM cart_items ci
	  JOIN product_variants v ON v.id = ci.variant_id
	  JOIN products p ON p.id = v.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY p.name, v.id
	`), cartID); err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	for _, it := range rows {
		total = total.Add(it.Subtotal())
	}
	return rows, total, nil
}
