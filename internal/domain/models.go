package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"storefront/internal/slug"
)

type Category struct {
	ID          int64         `db:"id"`
	ParentID    sql.NullInt64 `db:"parent_id"`
	Name        string        `db:"name"`
	Slug        string        `db:"slug"`
	Description string        `db:"description"`
}

type Brand struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

// FullPath is the brand's canonical path segment.
func (b Brand) FullPath() string { return b.Slug }

type Collection struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type Attribute struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Slug   string `db:"slug"`
	Values []AttributeValue
}

type AttributeValue struct {
	ID          int64  `db:"id"`
	AttributeID int64  `db:"attribute_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
}

type Product struct {
	ID            int64           `db:"id"`
	ProductTypeID int64           `db:"product_type_id"`
	CategoryID    int64           `db:"category_id"`
	BrandID       sql.NullInt64   `db:"brand_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Price         decimal.Decimal `db:"price"`
	AvailableOn   sql.NullString  `db:"available_on"` // YYYY-MM-DD
	Published     bool            `db:"is_published"`
	Attributes    AttrMap         `db:"attributes"`
}

// FallbackSlug stands in for names with no Latin letters or digits.
const FallbackSlug = "product"

// Slug is derived from the name; it is what the canonical product URL carries.
// It is never empty.
func (p Product) Slug() string {
	if s := slug.Make(p.Name); s != "" {
		return s
	}
	return FallbackSlug
}

type Variant struct {
	ID            int64               `db:"id"`
	ProductID     int64               `db:"product_id"`
	SKU           string              `db:"sku"`
	Name          string              `db:"name"`
	PriceOverride decimal.NullDecimal `db:"price_override"`
	Quantity      int                 `db:"quantity"`
	Attributes    AttrMap             `db:"attributes"`
}

// Price falls back to the product price when the variant has no override.
func (v Variant) Price(p Product) decimal.Decimal {
	if v.PriceOverride.Valid {
		return v.PriceOverride.Decimal
	}
	return p.Price
}

// AttributePair is one resolved attribute of a product, ready for display.
type AttributePair struct {
	Attribute string `db:"attribute"`
	Value     string `db:"value"`
}
