package filters

import "storefront/internal/query"

// attributesUsedBy selects attributes linked (through table) to the product
// type of at least one product matching scope. scope refers to products as "p".
func attributesUsedBy(table string, scope query.Predicate) query.Predicate {
	if scope.SQL == query.False.SQL {
		return query.False
	}
	return query.Predicate{
		SQL: `a.id IN (SELECT t.attribute_id FROM ` + table + ` t
      JOIN products p ON p.product_type_id = t.product_type_id
      WHERE ` + scope.SQL + `)`,
		Args: scope.Args,
	}
}

const (
	productTypeAttrs = "product_type_product_attributes"
	variantTypeAttrs = "product_type_variant_attributes"
)

// ByCategory offers the allowlisted attributes used in a category subtree,
// restricted to the values that actually occur there.
type ByCategory struct {
	categories []int64
	names      []string
	values     []int64
}

func NewByCategory(categoryIDs []int64, attributeNames []string, valueIDs []int64) ByCategory {
	return ByCategory{categories: categoryIDs, names: attributeNames, values: valueIDs}
}

func (l ByCategory) ProductAttributes() query.Predicate {
	return query.And(attributesUsedBy(productTypeAttrs, query.InInts("p.category_id", l.categories)),
		query.InStrings("a.name", l.names))
}

func (l ByCategory) VariantAttributes() query.Predicate {
	return query.And(attributesUsedBy(variantTypeAttrs, query.InInts("p.category_id", l.categories)),
		query.InStrings("a.name", l.names))
}

func (l ByCategory) AllowedValues() []int64 { return l.values }
func (l ByCategory) CategoryIDs() []int64   { return l.categories }

// ByBrand offers the allowlisted attributes used in the brand's categories,
// with every value of each attribute.
type ByBrand struct {
	categories []int64
	names      []string
}

// NewByBrand takes the brand attribute allowlist from configuration.
func NewByBrand(categoryIDs []int64, attributeNames []string) ByBrand {
	return ByBrand{categories: categoryIDs, names: attributeNames}
}

func (l ByBrand) ProductAttributes() query.Predicate {
	return query.And(attributesUsedBy(productTypeAttrs, query.InInts("p.category_id", l.categories)),
		query.InStrings("a.name", l.names))
}

func (l ByBrand) VariantAttributes() query.Predicate {
	return query.And(attributesUsedBy(variantTypeAttrs, query.InInts("p.category_id", l.categories)),
		query.InStrings("a.name", l.names))
}

func (l ByBrand) CategoryIDs() []int64 { return l.categories }

// ByCollection offers every attribute used by the collection's products.
type ByCollection struct {
	collection int64
}

func NewByCollection(collectionID int64) ByCollection {
	return ByCollection{collection: collectionID}
}

func (l ByCollection) scope() query.Predicate {
	return query.Predicate{
		SQL:  "p.id IN (SELECT pc.product_id FROM product_collections pc WHERE pc.collection_id = ?)",
		Args: []any{l.collection},
	}
}

func (l ByCollection) ProductAttributes() query.Predicate {
	return attributesUsedBy(productTypeAttrs, l.scope())
}

func (l ByCollection) VariantAttributes() query.Predicate {
	return attributesUsedBy(variantTypeAttrs, l.scope())
}
