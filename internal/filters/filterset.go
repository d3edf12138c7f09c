// Package filters assembles the user-facing filter set for a product listing:
// one multi-choice filter per applicable attribute, an optional category
// filter, a price range and the sort order.
package filters

import (
	"context"
	"errors"
	"net/url"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/query"
)

// ErrNoLookup is returned by Build when no attribute lookup is supplied.
var ErrNoLookup = errors.New("filters: attribute lookup is required")

// Lookup decides which attributes a listing offers. Both predicates are
// evaluated against product_attributes aliased as "a".
type Lookup interface {
	// ProductAttributes selects attributes stored on the products themselves.
	ProductAttributes() query.Predicate
	// VariantAttributes selects attributes stored on product variants.
	VariantAttributes() query.Predicate
}

// ValueScope is implemented by lookups that only offer some attribute values.
type ValueScope interface {
	AllowedValues() []int64
}

// CategoryScope is implemented by lookups that offer a category filter.
type CategoryScope interface {
	CategoryIDs() []int64
}

type AttributeSource interface {
	Matching(ctx context.Context, pred query.Predicate) ([]domain.Attribute, error)
}

type CategorySource interface {
	ByIDs(ctx context.Context, ids []int64) ([]domain.Category, error)
}

type Sources struct {
	Attributes AttributeSource
	Categories CategorySource
}

// FilterSet is the bound, validated set of filters for one request.
type FilterSet struct {
	filters []*Filter
}

// Build discovers the applicable attributes through lookup and binds every
// filter to params. Invalid input never fails Build: it is recorded on the
// offending filter, which then leaves the listing untouched.
func Build(ctx context.Context, src Sources, lookup Lookup, params url.Values) (*FilterSet, error) {
	if lookup == nil {
		return nil, ErrNoLookup
	}
	productAttrs, err := src.Attributes.Matching(ctx, lookup.ProductAttributes())
	if err != nil {
		return nil, err
	}
	variantAttrs, err := src.Attributes.Matching(ctx, lookup.VariantAttributes())
	if err != nil {
		return nil, err
	}

	byKey := map[string]*Filter{
		SortKey:  newSortFilter(),
		PriceKey: newPriceFilter(),
	}

	if cs, ok := lookup.(CategoryScope); ok && len(cs.CategoryIDs()) > 0 {
		cats, err := src.Categories.ByIDs(ctx, cs.CategoryIDs())
		if err != nil {
			return nil, err
		}
		byKey[CategoryKey] = newCategoryFilter(cats)
	}

	var allowed map[int64]bool
	if vs, ok := lookup.(ValueScope); ok {
		allowed = make(map[int64]bool)
		for _, id := range vs.AllowedValues() {
			allowed[id] = true
		}
	}
	for _, a := range productAttrs {
		byKey[a.Slug] = newAttributeFilter(a, false, allowed)
	}
	for _, a := range variantAttrs {
		byKey[a.Slug] = newAttributeFilter(a, true, allowed)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fs := &FilterSet{filters: make([]*Filter, 0, len(keys))}
	for _, k := range keys {
		f := byKey[k]
		f.bind(params)
		fs.filters = append(fs.filters, f)
	}
	return fs, nil
}

// Filters returns the filters sorted by key.
func (fs *FilterSet) Filters() []*Filter { return fs.filters }

// Get returns the filter for key, or nil.
func (fs *FilterSet) Get(key string) *Filter {
	for _, f := range fs.filters {
		if f.Key == key {
			return f
		}
	}
	return nil
}

func (fs *FilterSet) Keys() []string {
	out := make([]string, len(fs.filters))
	for i, f := range fs.filters {
		out[i] = f.Key
	}
	return out
}

// Valid reports whether every filter accepted its input.
func (fs *FilterSet) Valid() bool { return len(fs.Errors()) == 0 }

// Errors maps filter keys to their validation messages.
func (fs *FilterSet) Errors() map[string][]string {
	out := map[string][]string{}
	for _, f := range fs.filters {
		if len(f.Errors) > 0 {
			out[f.Key] = append([]string(nil), f.Errors...)
		}
	}
	return out
}

// Apply narrows and orders base by every valid, non-empty filter.
func (fs *FilterSet) Apply(base query.ProductQuery) query.ProductQuery {
	q := base
	for _, f := range fs.filters {
		if f.apply != nil {
			q = f.apply(q)
		}
	}
	return q
}

// Sort reports the active sort field and direction, if any.
func (fs *FilterSet) Sort() (field string, desc bool) {
	f := fs.Get(SortKey)
	if f == nil || f.apply == nil {
		return "", false
	}
	for _, c := range f.Choices {
		if c.Selected {
			return c.Value, f.desc
		}
	}
	return "", false
}
