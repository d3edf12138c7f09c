package handlers

import (
	"storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/urls"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type BrandHandler struct {
	Catalog *services.CatalogService
}

func (h *BrandHandler) Index(c *fiber.Ctx) error {
	path, id, ok := validate.SplitPathID(c.Params("*"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "brand"})
		return notFound(c, "Brand not found")
	}
	ctx := c.UserContext()
	brand, err := h.Catalog.Brand(ctx, id)
	if err != nil {
		return lookupFailed(c, err, "Brand not found")
	}
	self := urls.Brand(brand.FullPath(), brand.ID)
	if path != brand.FullPath() {
		return c.Redirect(withQuery(self, c.Request().URI().QueryString()), fiber.StatusMovedPermanently)
	}

	params := queryValues(c)
	listing, err := h.Catalog.BrandListing(ctx, brand, params)
	if err != nil {
		return lookupFailed(c, err, "Page not found")
	}
	metrics.RecordListing("brand", listing.Total)
	return render(c, "brand", fiber.Map{
		"Brand": brand,
		"Self":  self,
		"L":     newListingView(listing, self, params),
	})
}
