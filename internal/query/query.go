// Package query describes product listing queries as data. Repositories turn
// a ProductQuery into SQL for their dialect; nothing here touches a database.
package query

import "strings"

// Predicate is a boolean SQL fragment with `?` placeholders. Slice arguments
// are expanded by sqlx.In before execution.
type Predicate struct {
	SQL  string
	Args []any
}

// False never matches. It stands in for `IN ()`, which is not valid SQL.
var False = Predicate{SQL: "1 = 0"}

func (p Predicate) IsZero() bool { return p.SQL == "" }

// And joins predicates, skipping zero ones.
func And(ps ...Predicate) Predicate {
	var parts []string
	var args []any
	for _, p := range ps {
		if p.IsZero() {
			continue
		}
		parts = append(parts, "("+p.SQL+")")
		args = append(args, p.Args...)
	}
	if len(parts) == 0 {
		return Predicate{}
	}
	return Predicate{SQL: strings.Join(parts, " AND "), Args: args}
}

// InInts matches column against ids. An empty list matches nothing.
func InInts(column string, ids []int64) Predicate {
	if len(ids) == 0 {
		return False
	}
	return Predicate{SQL: column + " IN (?)", Args: []any{ids}}
}

// InStrings matches column against vals. An empty list matches nothing.
func InStrings(column string, vals []string) Predicate {
	if len(vals) == 0 {
		return False
	}
	return Predicate{SQL: column + " IN (?)", Args: []any{vals}}
}

// AttributeMatch keeps products whose attribute map (or, with OnVariants, the
// map of at least one of their variants) holds one of ValueIDs under AttributeID.
type AttributeMatch struct {
	AttributeID int64
	ValueIDs    []string
	OnVariants  bool
}

// Order is a whitelisted sort key.
type Order struct {
	Field string // name | price | category
	Desc  bool
}

// ProductQuery is an immutable description of a product listing. Every method
// returns a modified copy so a base query can be shared between handlers.
type ProductQuery struct {
	Where      []Predicate
	Attributes []AttributeMatch
	OrderBy    []Order
}

func (q ProductQuery) Filter(p Predicate) ProductQuery {
	q.Where = append(append([]Predicate(nil), q.Where...), p)
	return q
}

func (q ProductQuery) MatchAttribute(m AttributeMatch) ProductQuery {
	q.Attributes = append(append([]AttributeMatch(nil), q.Attributes...), m)
	return q
}

// Sorted replaces the ordering.
func (q ProductQuery) Sorted(o ...Order) ProductQuery {
	q.OrderBy = append([]Order(nil), o...)
	return q
}
