package repos_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"storefront/internal/domain"
	"storefront/internal/query"
	"storefront/internal/repos"
)

// memdb builds an empty catalog schema and loads fixture into it.
func memdb(t *testing.T, fixture string) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(fixture); err != nil {
		t.Fatal(err)
	}
	return db
}

const treeFixture = `
INSERT INTO categories(id,parent_id,name,slug) VALUES
  (1,NULL,'Home','home'),
  (5,NULL,'Garden','garden'),
  (6,5,'Tools','tools'),
  (7,5,'Plants','plants'),
  (8,6,'Shovels','shovels'),
  (9,8,'Spades','spades');
`

func TestDescendants(t *testing.T) {
	ctx := context.Background()
	cats := repos.NewCategoryRepo(memdb(t, treeFixture))

	cases := []struct {
		id          int64
		includeSelf bool
		want        []int64
	}{
		{5, false, []int64{6, 7, 8, 9}},
		{5, true, []int64{5, 6, 7, 8, 9}},
		{6, false, []int64{8, 9}},
		{9, false, []int64{}},
		{9, true, []int64{9}},
		{1, false, []int64{}},
		// unknown ids have no descendants
		{404, false, []int64{}},
	}
	for _, tc := range cases {
		got, err := cats.Descendants(ctx, tc.id, tc.includeSelf)
		if err != nil {
			t.Fatalf("Descendants(%d): %v", tc.id, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Descendants(%d, %v) = %v, want %v", tc.id, tc.includeSelf, got, tc.want)
		}
	}
}

func TestDescendantsAreDistinctAndExcludeSelf(t *testing.T) {
	ctx := context.Background()
	cats := repos.NewCategoryRepo(memdb(t, treeFixture))

	for _, id := range []int64{1, 5, 6, 7, 8, 9} {
		got, err := cats.Descendants(ctx, id, false)
		if err != nil {
			t.Fatal(err)
		}
		seen := map[int64]bool{}
		for _, d := range got {
			if d == id {
				t.Fatalf("Descendants(%d) contains itself", id)
			}
			if seen[d] {
				t.Fatalf("Descendants(%d) repeats %d", id, d)
			}
			seen[d] = true
		}
	}
}

func TestFullPath(t *testing.T) {
	ctx := context.Background()
	cats := repos.NewCategoryRepo(memdb(t, treeFixture))

	path, err := cats.FullPath(ctx, 9)
	if err != nil {
		t.Fatal(err)
	}
	if path != "garden/tools/shovels/spades" {
		t.Fatalf("unexpected path %q", path)
	}
	if path, _ := cats.FullPath(ctx, 5); path != "garden" {
		t.Fatalf("root path should be its slug, got %q", path)
	}
	if _, err := cats.FullPath(ctx, 404); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

const catalogFixture = treeFixture + `
INSERT INTO product_attributes(id,name,slug) VALUES
  (1,'Color','color'),(2,'Material','material'),(3,'Size','size');
INSERT INTO attribute_values(id,attribute_id,name,slug,sort_order) VALUES
  (1,1,'Green','green',1),(2,1,'Grey','grey',0),
  (3,2,'Steel','steel',0),(4,2,'Wood','wood',1),
  (5,3,'Small','small',0),(6,3,'Large','large',1);
INSERT INTO product_types(id,name) VALUES (1,'Tool'),(2,'Plant');
INSERT INTO product_type_product_attributes(product_type_id,attribute_id) VALUES (1,1),(1,2),(2,1);
INSERT INTO product_type_variant_attributes(product_type_id,attribute_id) VALUES (1,3);
INSERT INTO products(id,product_type_id,category_id,name,price,is_published,attributes) VALUES
  (1,1,8,'Spade',20,1,'{"1":"2","2":"3"}'),
  (2,1,8,'Trowel',8.5,1,'{"1":"1","2":"4","x":"1","2 ":"3","1x":"1"}'),
  (3,2,7,'Fern',12,1,'{"1":"1"}'),
  (4,1,6,'Rake',15,0,'{"1":"2"}'),
  (5,1,9,'Odd',1,1,'{"1":"abc","2":""}');
INSERT INTO product_variants(id,product_id,sku,name,quantity,attributes) VALUES
  (1,1,'SP-S','Small',3,'{"3":"5"}'),
  (2,1,'SP-L','Large',0,'{"3":"6"}'),
  (3,2,'TR-S','Small',4,'{"3":"5"}');
`

func TestApplicableValues(t *testing.T) {
	ctx := context.Background()
	attrs := repos.NewAttributeRepo(memdb(t, catalogFixture))

	got, err := attrs.ApplicableValues(ctx, []int64{6, 8, 9}, []string{"Color", "Material"})
	if err != nil {
		t.Fatal(err)
	}
	// malformed keys and values on products 2 and 5 are dropped
	if want := []int64{1, 2, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ApplicableValues = %v, want %v", got, want)
	}

	got, err = attrs.ApplicableValues(ctx, []int64{7}, []string{"Color"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("plants = %v, want %v", got, want)
	}

	got, err = attrs.ApplicableValues(ctx, []int64{6, 8}, []string{"Material"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{3, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("material only = %v, want %v", got, want)
	}

	for _, args := range []struct {
		cats  []int64
		names []string
	}{{nil, []string{"Color"}}, {[]int64{8}, nil}, {[]int64{404}, []string{"Color"}}} {
		got, err := attrs.ApplicableValues(ctx, args.cats, args.names)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no values for %v/%v, got %v", args.cats, args.names, got)
		}
	}
}

func TestMatchingLoadsOrderedValues(t *testing.T) {
	ctx := context.Background()
	attrs := repos.NewAttributeRepo(memdb(t, catalogFixture))

	got, err := attrs.Matching(ctx, query.InStrings("a.name", []string{"Color", "Size"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Slug != "color" || got[1].Slug != "size" {
		t.Fatalf("unexpected attributes %+v", got)
	}
	// sort_order puts Grey before Green
	if v := got[0].Values; len(v) != 2 || v[0].Name != "Grey" || v[1].Name != "Green" {
		t.Fatalf("unexpected color values %+v", v)
	}

	none, err := attrs.Matching(ctx, query.False)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("query.False should match nothing, got %+v", none)
	}
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()
	attrs := repos.NewAttributeRepo(memdb(t, catalogFixture))

	got, err := attrs.Describe(ctx, domain.AttrMap{"1": "2", "2": "3", "3": "1", "9": "zzz"})
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.AttributePair{{Attribute: "Color", Value: "Grey"}, {Attribute: "Material", Value: "Steel"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Describe = %+v, want %+v", got, want)
	}
}

func names(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestProductQuery(t *testing.T) {
	ctx := context.Background()
	prods := repos.NewProductRepo(memdb(t, catalogFixture))
	published := query.Predicate{SQL: "p.is_published = ?", Args: []any{true}}

	base := query.ProductQuery{}.Filter(published).Sorted(query.Order{Field: "name"})
	all, err := prods.List(ctx, base, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Fern", "Odd", "Spade", "Trowel"}; !reflect.DeepEqual(names(all), want) {
		t.Fatalf("List = %v, want %v", names(all), want)
	}

	byPrice := base.Sorted(query.Order{Field: "price", Desc: true})
	got, _ := prods.List(ctx, byPrice, 2, 1)
	if want := []string{"Fern", "Trowel"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("price desc page = %v, want %v", names(got), want)
	}

	green := base.MatchAttribute(query.AttributeMatch{AttributeID: 1, ValueIDs: []string{"1"}})
	got, _ = prods.List(ctx, green, 10, 0)
	if want := []string{"Fern", "Trowel"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("green = %v, want %v", names(got), want)
	}

	greenWood := green.MatchAttribute(query.AttributeMatch{AttributeID: 2, ValueIDs: []string{"4"}})
	if n, _ := prods.Count(ctx, greenWood); n != 1 {
		t.Fatalf("green+wood count = %d, want 1", n)
	}

	large := base.MatchAttribute(query.AttributeMatch{AttributeID: 3, ValueIDs: []string{"6"}, OnVariants: true})
	got, _ = prods.List(ctx, large, 10, 0)
	if want := []string{"Spade"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("large variants = %v, want %v", names(got), want)
	}

	if n, _ := prods.Count(ctx, base.Filter(query.InInts("p.category_id", nil))); n != 0 {
		t.Fatalf("empty category set should match nothing, got %d", n)
	}
	if n, _ := prods.Count(ctx, base.MatchAttribute(query.AttributeMatch{AttributeID: 1})); n != 0 {
		t.Fatalf("empty value set should match nothing, got %d", n)
	}
}

func TestCorruptAttributeMapIsSkipped(t *testing.T) {
	ctx := context.Background()
	db := memdb(t, catalogFixture+`
INSERT INTO products(id,product_type_id,category_id,name,price,is_published,attributes) VALUES
  (6,1,8,'Broken',5,1,'not json');
INSERT INTO product_variants(id,product_id,sku,name,quantity,attributes) VALUES
  (4,6,'BR-1','One',1,'{"3":');
`)
	prods := repos.NewProductRepo(db)
	attrs := repos.NewAttributeRepo(db)
	published := query.Predicate{SQL: "p.is_published = ?", Args: []any{true}}
	base := query.ProductQuery{}.Filter(published).Filter(query.InInts("p.category_id", []int64{8})).Sorted(query.Order{Field: "name"})

	all, err := prods.List(ctx, base, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Broken", "Spade", "Trowel"}; !reflect.DeepEqual(names(all), want) {
		t.Fatalf("List = %v, want %v", names(all), want)
	}
	if len(all[0].Attributes) != 0 {
		t.Fatalf("corrupt map should scan empty, got %v", all[0].Attributes)
	}

	grey := base.MatchAttribute(query.AttributeMatch{AttributeID: 1, ValueIDs: []string{"2"}})
	if n, err := prods.Count(ctx, grey); err != nil || n != 1 {
		t.Fatalf("grey count = %d, %v; want 1", n, err)
	}
	small := base.MatchAttribute(query.AttributeMatch{AttributeID: 3, ValueIDs: []string{"5"}, OnVariants: true})
	if n, err := prods.Count(ctx, small); err != nil || n != 2 {
		t.Fatalf("small variants count = %d, %v; want 2", n, err)
	}

	got, err := attrs.ApplicableValues(ctx, []int64{8}, []string{"Color"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ApplicableValues = %v, want %v", got, want)
	}

	vs, err := prods.Variants(ctx, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 1 || len(vs[0].Attributes) != 0 {
		t.Fatalf("variants = %+v", vs)
	}
}

func TestProductDetailsQueries(t *testing.T) {
	ctx := context.Background()
	prods := repos.NewProductRepo(memdb(t, catalogFixture+`INSERT INTO product_ratings(product_id,value) VALUES (1,3),(1,4);`))

	p, err := prods.GetPublished(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Price.Equal(decimal.NewFromInt(20)) || p.Attributes["2"] != "3" {
		t.Fatalf("unexpected product %+v", p)
	}
	if _, err := prods.GetPublished(ctx, 4); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unpublished product should be hidden, got %v", err)
	}

	vs, err := prods.Variants(ctx, 1)
	if err != nil || len(vs) != 2 || vs[0].SKU != "SP-S" {
		t.Fatalf("unexpected variants %+v (%v)", vs, err)
	}
	if avg, _ := prods.AverageRating(ctx, 1); avg != 3.5 {
		t.Fatalf("average rating = %v, want 3.5", avg)
	}
	if avg, _ := prods.AverageRating(ctx, 2); avg != 0 {
		t.Fatalf("unrated product average = %v, want 0", avg)
	}
}

func TestCartUpsertAccumulates(t *testing.T) {
	ctx := context.Background()
	carts := repos.NewCartRepo(memdb(t, catalogFixture))

	id, err := carts.EnsureCart(ctx, "sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := carts.EnsureCart(ctx, "sid-1"); again != id {
		t.Fatalf("EnsureCart should be idempotent, got %q then %q", id, again)
	}
	price := decimal.RequireFromString("8.50")
	if err := carts.UpsertItem(ctx, id, 3, 1, price); err != nil {
		t.Fatal(err)
	}
	if err := carts.UpsertItem(ctx, id, 3, 2, price); err != nil {
		t.Fatal(err)
	}
	if qty, _ := carts.Qty(ctx, id, 3); qty != 3 {
		t.Fatalf("qty = %d, want 3", qty)
	}
	items, total, err := carts.View(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Product != "Trowel" {
		t.Fatalf("unexpected items %+v", items)
	}
	if !total.Equal(decimal.RequireFromString("25.5")) {
		t.Fatalf("total = %s, want 25.5", total)
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := repos.OpenDB("mysql", "whatever"); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestOpenDBSeedsSQLite(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("expected the demo catalog to be seeded")
	}
	if repos.DialectOf(db).Name() != "sqlite" {
		t.Fatalf("unexpected dialect %q", repos.DialectOf(db).Name())
	}
}
