package filters

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/query"
)

const (
	SortKey     = "sort_by"
	PriceKey    = "price"
	CategoryKey = "category"

	PriceMinParam = "price_min"
	PriceMaxParam = "price_max"
)

// SortFields is the closed set of sortable fields, in display order.
var SortFields = []string{"name", "price"}

type Kind int

const (
	KindChoice Kind = iota
	KindSort
	KindRange
)

type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// Filter is one user-selectable constraint on a listing.
type Filter struct {
	Key     string
	Label   string
	Kind    Kind
	Choices []Choice
	// Min and Max echo the raw range input back to the form.
	Min, Max string
	Errors   []string

	desc  bool
	bind  func(params url.Values)
	apply func(query.ProductQuery) query.ProductQuery
}

// Active reports whether the filter changes the listing.
func (f *Filter) Active() bool { return f.apply != nil }

func (f *Filter) choiceSet() map[string]int {
	out := make(map[string]int, len(f.Choices))
	for i, c := range f.Choices {
		out[c.Value] = i
	}
	return out
}

// selectChoices validates raw against the choices. On any unknown value it
// records an error and selects nothing.
func (f *Filter) selectChoices(raw []string) []string {
	idx := f.choiceSet()
	var picked []string
	seen := map[string]bool{}
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		if _, ok := idx[v]; !ok {
			f.Errors = append(f.Errors, fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", v))
			continue
		}
		seen[v] = true
		picked = append(picked, v)
	}
	if len(f.Errors) > 0 {
		return nil
	}
	for _, v := range picked {
		f.Choices[idx[v]].Selected = true
	}
	return picked
}

func newAttributeFilter(a domain.Attribute, onVariants bool, allowed map[int64]bool) *Filter {
	f := &Filter{Key: a.Slug, Label: a.Name, Kind: KindChoice}
	for _, v := range a.Values {
		if allowed != nil && !allowed[v.ID] {
			continue
		}
		f.Choices = append(f.Choices, Choice{Value: strconv.FormatInt(v.ID, 10), Label: v.Name})
	}
	attrID := a.ID
	f.bind = func(params url.Values) {
		picked := f.selectChoices(params[f.Key])
		if len(picked) == 0 {
			return
		}
		f.apply = func(q query.ProductQuery) query.ProductQuery {
			return q.MatchAttribute(query.AttributeMatch{AttributeID: attrID, ValueIDs: picked, OnVariants: onVariants})
		}
	}
	return f
}

func newCategoryFilter(cats []domain.Category) *Filter {
	f := &Filter{Key: CategoryKey, Label: "Category", Kind: KindChoice}
	for _, c := range cats {
		f.Choices = append(f.Choices, Choice{Value: strconv.FormatInt(c.ID, 10), Label: c.Name})
	}
	f.bind = func(params url.Values) {
		picked := f.selectChoices(params[f.Key])
		if len(picked) == 0 {
			return
		}
		ids := make([]int64, 0, len(picked))
		for _, v := range picked {
			id, _ := strconv.ParseInt(v, 10, 64)
			ids = append(ids, id)
		}
		f.apply = func(q query.ProductQuery) query.ProductQuery {
			return q.Filter(query.InInts("p.category_id", ids))
		}
	}
	return f
}

func newSortFilter() *Filter {
	f := &Filter{Key: SortKey, Label: "Sort by", Kind: KindSort}
	for _, s := range SortFields {
		f.Choices = append(f.Choices, Choice{Value: s, Label: s})
	}
	f.bind = func(params url.Values) {
		raw := strings.TrimSpace(params.Get(f.Key))
		if raw == "" {
			return
		}
		field := strings.TrimPrefix(raw, "-")
		idx, ok := f.choiceSet()[field]
		if !ok {
			f.Errors = append(f.Errors, fmt.Sprintf("%s is not a valid sorting option", raw))
			return
		}
		f.Choices[idx].Selected = true
		f.desc = strings.HasPrefix(raw, "-")
		order := query.Order{Field: field, Desc: f.desc}
		f.apply = func(q query.ProductQuery) query.ProductQuery {
			return q.Sorted(order)
		}
	}
	return f
}

func newPriceFilter() *Filter {
	f := &Filter{Key: PriceKey, Label: "Price", Kind: KindRange}
	f.bind = func(params url.Values) {
		f.Min = strings.TrimSpace(params.Get(PriceMinParam))
		f.Max = strings.TrimSpace(params.Get(PriceMaxParam))
		var preds []query.Predicate
		for _, side := range []struct {
			raw, op string
		}{{f.Min, ">="}, {f.Max, "<="}} {
			if side.raw == "" {
				continue
			}
			d, err := decimal.NewFromString(side.raw)
			if err != nil {
				f.Errors = append(f.Errors, fmt.Sprintf("Enter a number. %s is not a valid price.", side.raw))
				continue
			}
			preds = append(preds, query.Predicate{SQL: "p.price " + side.op + " ?", Args: []any{d.InexactFloat64()}})
		}
		if len(f.Errors) > 0 || len(preds) == 0 {
			return
		}
		pred := query.And(preds...)
		f.apply = func(q query.ProductQuery) query.ProductQuery {
			return q.Filter(pred)
		}
	}
	return f
}
