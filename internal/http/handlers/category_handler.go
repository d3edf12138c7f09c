package handlers

import (
	"storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/urls"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// Index serves /category/<path>/<id>/. A stale or mistyped path is answered
// with a permanent redirect to the canonical one.
func (h *CategoryHandler) Index(c *fiber.Ctx) error {
	path, id, ok := validate.SplitPathID(c.Params("*"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, "Category not found")
	}
	ctx := c.UserContext()
	cat, canonical, err := h.Catalog.Category(ctx, id)
	if err != nil {
		return lookupFailed(c, err, "Category not found")
	}
	self := urls.Category(canonical, cat.ID)
	if path != canonical {
		return c.Redirect(withQuery(self, c.Request().URI().QueryString()), fiber.StatusMovedPermanently)
	}

	params := queryValues(c)
	listing, err := h.Catalog.CategoryListing(ctx, cat, params)
	if err != nil {
		return lookupFailed(c, err, "Page not found")
	}
	metrics.RecordListing("category", listing.Total)
	if !listing.FilterSet.Valid() {
		log.Info(c, "filters.invalid", map[string]any{"errors": listing.FilterSet.Errors()})
	}
	return render(c, "category", fiber.Map{
		"Category": cat,
		"Path":     canonical,
		"Self":     self,
		"L":        newListingView(listing, self, params),
	})
}
