package handlers

import (
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	HomeHandler       *HomeHandler
	CategoryHandler   *CategoryHandler
	BrandHandler      *BrandHandler
	CollectionHandler *CollectionHandler
	ProductHandler    *ProductHandler
	CartHandler       *CartHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	brandRepo := repos.NewBrandRepo(db)
	colRepo := repos.NewCollectionRepo(db)
	attrRepo := repos.NewAttributeRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, brandRepo, colRepo, attrRepo, prodRepo, cfg.Catalog)
	cartSvc := services.NewCartService(cartRepo, prodRepo)

	return &Deps{
		HomeHandler:       &HomeHandler{Catalog: catalogSvc},
		CategoryHandler:   &CategoryHandler{Catalog: catalogSvc},
		BrandHandler:      &BrandHandler{Catalog: catalogSvc},
		CollectionHandler: &CollectionHandler{Catalog: catalogSvc},
		ProductHandler:    &ProductHandler{Catalog: catalogSvc, Cart: cartSvc},
		CartHandler:       &CartHandler{Cart: cartSvc},
	}
}

// Register mounts the storefront pages on r.
func (d *Deps) Register(r fiber.Router) {
	r.Get("/", d.HomeHandler.Home)
	r.Get("/category/*", d.CategoryHandler.Index)
	r.Get("/brand/*", d.BrandHandler.Index)
	r.Get("/collection/:slug/:id", d.CollectionHandler.Index)

	r.Get("/product/:slug/:id", d.ProductHandler.Detail)
	r.Get("/product/:slug/:id/add-to-cart", d.ProductHandler.AddToCart)
	r.Post("/product/:slug/:id/add-to-cart", d.ProductHandler.AddToCart)

	r.Get("/cart", d.CartHandler.View)

	r.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	r.Get("/metrics", metrics.Handler())
}

// NotFound is the catch-all mounted after every other route.
func NotFound(c *fiber.Ctx) error {
	return notFound(c, "Page not found")
}
