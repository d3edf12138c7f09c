package handlers

import (
	"storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/urls"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CollectionHandler struct {
	Catalog *services.CatalogService
}

func (h *CollectionHandler) Index(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "collection"})
		return notFound(c, "Collection not found")
	}
	ctx := c.UserContext()
	col, err := h.Catalog.Collection(ctx, id)
	if err != nil {
		return lookupFailed(c, err, "Collection not found")
	}
	self := urls.Collection(col.Slug, col.ID)
	if c.Params("slug") != col.Slug {
		return c.Redirect(withQuery(self, c.Request().URI().QueryString()), fiber.StatusMovedPermanently)
	}

	params := queryValues(c)
	listing, err := h.Catalog.CollectionListing(ctx, col, params)
	if err != nil {
		return lookupFailed(c, err, "Page not found")
	}
	metrics.RecordListing("collection", listing.Total)
	return render(c, "collection", fiber.Map{
		"Collection": col,
		"Self":       self,
		"L":          newListingView(listing, self, params),
	})
}
