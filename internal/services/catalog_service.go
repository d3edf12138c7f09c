package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/filters"
	"storefront/internal/query"
	"storefront/internal/repos"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidPage = errors.New("invalid page")
)

type CatalogService struct {
	Cats        *repos.CategoryRepo
	Brands      *repos.BrandRepo
	Collections *repos.CollectionRepo
	Attrs       *repos.AttributeRepo
	Prods       *repos.ProductRepo
	Catalog     config.Catalog
	// Now is the clock listings are filtered by; nil means time.Now.
	Now func() time.Time
}

func NewCatalogService(cats *repos.CategoryRepo, brands *repos.BrandRepo, cols *repos.CollectionRepo,
	attrs *repos.AttributeRepo, prods *repos.ProductRepo, catalog config.Catalog) *CatalogService {
	return &CatalogService{Cats: cats, Brands: brands, Collections: cols, Attrs: attrs, Prods: prods, Catalog: catalog}
}

// Listing is one page of a filtered product list plus what the filter form needs.
type Listing struct {
	Products     []domain.Product
	FilterSet    *filters.FilterSet
	Page         int
	Pages        int
	Total        int
	NowSortedBy  string
	IsDescending bool
}

func (l Listing) HasPrev() bool { return l.Page > 1 }
func (l Listing) HasNext() bool { return l.Page < l.Pages }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func (s *CatalogService) today() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// visible matches published products whose available_on date has been reached.
func (s *CatalogService) visible() query.Predicate {
	return query.Predicate{
		SQL:  "p.is_published = ? AND (p.available_on IS NULL OR p.available_on <= ?)",
		Args: []any{true, s.today().Format("2006-01-02")},
	}
}

// Category resolves a category and its canonical path.
func (s *CatalogService) Category(ctx context.Context, id int64) (domain.Category, string, error) {
	c, err := s.Cats.Get(ctx, id)
	if err != nil {
		return c, "", notFound(err)
	}
	path, err := s.Cats.FullPath(ctx, id)
	if err != nil {
		return c, "", notFound(err)
	}
	return c, path, nil
}

// CategoryListing lists the published products of the category and all of
// its descendants, filtered by params.
func (s *CatalogService) CategoryListing(ctx context.Context, c domain.Category, params url.Values) (Listing, error) {
	cats, err := s.Cats.Descendants(ctx, c.ID, true)
	if err != nil {
		return Listing{}, err
	}
	names := s.Catalog.Filters.CategoryAttributes
	values, err := s.Attrs.ApplicableValues(ctx, cats, names)
	if err != nil {
		return Listing{}, err
	}
	base := query.ProductQuery{}.
		Filter(s.visible()).
		Filter(query.InInts("p.category_id", cats)).
		Sorted(query.Order{Field: "category"}, query.Order{Field: "name"})
	return s.list(ctx, base, filters.NewByCategory(cats, names, values), params)
}

func (s *CatalogService) Brand(ctx context.Context, id int64) (domain.Brand, error) {
	b, err := s.Brands.Get(ctx, id)
	return b, notFound(err)
}

func (s *CatalogService) BrandListing(ctx context.Context, b domain.Brand, params url.Values) (Listing, error) {
	cats, err := s.Brands.CategoryIDs(ctx, b.ID)
	if err != nil {
		return Listing{}, err
	}
	base := query.ProductQuery{}.
		Filter(s.visible()).
		Filter(query.Predicate{SQL: "p.brand_id = ?", Args: []any{b.ID}}).
		Sorted(query.Order{Field: "name"})
	return s.list(ctx, base, filters.NewByBrand(cats, s.Catalog.Filters.BrandAttributes), params)
}

func (s *CatalogService) Collection(ctx context.Context, id int64) (domain.Collection, error) {
	c, err := s.Collections.Get(ctx, id)
	return c, notFound(err)
}

func (s *CatalogService) CollectionListing(ctx context.Context, c domain.Collection, params url.Values) (Listing, error) {
	base := query.ProductQuery{}.
		Filter(s.visible()).
		Filter(query.Predicate{
			SQL:  "p.id IN (SELECT pc.product_id FROM product_collections pc WHERE pc.collection_id = ?)",
			Args: []any{c.ID},
		}).
		Sorted(query.Order{Field: "name"})
	return s.list(ctx, base, filters.NewByCollection(c.ID), params)
}

func (s *CatalogService) list(ctx context.Context, base query.ProductQuery, lookup filters.Lookup, params url.Values) (Listing, error) {
	fs, err := filters.Build(ctx, filters.Sources{Attributes: s.Attrs, Categories: s.Cats}, lookup, params)
	if err != nil {
		return Listing{}, err
	}
	q := fs.Apply(base)

	total, err := s.Prods.Count(ctx, q)
	if err != nil {
		return Listing{}, err
	}
	size := s.Catalog.Listing.PageSize
	if size <= 0 {
		size = 24
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page, err := strconv.Atoi(params.Get("page"))
	if err != nil {
		page = 1
	}
	if page < 1 || page > pages {
		return Listing{}, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	products, err := s.Prods.List(ctx, q, size, (page-1)*size)
	if err != nil {
		return Listing{}, err
	}
	sortedBy, desc := fs.Sort()
	return Listing{
		Products:     products,
		FilterSet:    fs,
		Page:         page,
		Pages:        pages,
		Total:        total,
		NowSortedBy:  sortedBy,
		IsDescending: desc,
	}, nil
}

type ProductDetails struct {
	Product    domain.Product
	Variants   []domain.Variant
	Attributes []domain.AttributePair
	Rating     float64
	// IsVisible is false until the product's available_on date.
	IsVisible bool
}

func (s *CatalogService) Product(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.Prods.GetPublished(ctx, id)
	return p, notFound(err)
}

func (s *CatalogService) ProductDetails(ctx context.Context, p domain.Product, today time.Time) (ProductDetails, error) {
	variants, err := s.Prods.Variants(ctx, p.ID)
	if err != nil {
		return ProductDetails{}, err
	}
	attrs, err := s.Attrs.Describe(ctx, p.Attributes)
	if err != nil {
		return ProductDetails{}, err
	}
	rating, err := s.Prods.AverageRating(ctx, p.ID)
	if err != nil {
		return ProductDetails{}, err
	}
	return ProductDetails{
		Product:    p,
		Variants:   variants,
		Attributes: attrs,
		Rating:     rating,
		IsVisible:  isVisible(p, today),
	}, nil
}

// Purchasable reports whether p can be added to a cart today.
func (s *CatalogService) Purchasable(p domain.Product) bool { return isVisible(p, s.today()) }

func isVisible(p domain.Product, today time.Time) bool {
	if !p.AvailableOn.Valid || p.AvailableOn.String == "" {
		return true
	}
	on, err := time.Parse("2006-01-02", p.AvailableOn.String)
	if err != nil {
		return true
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return !on.After(day)
}

// Home lists the storefront's entry points.
type Home struct {
	Categories  []domain.Category
	Brands      []domain.Brand
	Collections []domain.Collection
}

func (s *CatalogService) Home(ctx context.Context) (Home, error) {
	var h Home
	var err error
	if h.Categories, err = s.Cats.Roots(ctx); err != nil {
		return h, err
	}
	if h.Brands, err = s.Brands.List(ctx); err != nil {
		return h, err
	}
	h.Collections, err = s.Collections.List(ctx)
	return h, err
}
