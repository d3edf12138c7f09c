package handlers

import (
	"storefront/internal/services"
	"storefront/internal/urls"

	"github.com/gofiber/fiber/v2"
)

type HomeHandler struct {
	Catalog *services.CatalogService
}

type link struct {
	Name string
	URL  string
}

func (h *HomeHandler) Home(c *fiber.Ctx) error {
	home, err := h.Catalog.Home(c.UserContext())
	if err != nil {
		return err
	}
	var cats, brands, cols []link
	for _, cat := range home.Categories {
		cats = append(cats, link{Name: cat.Name, URL: urls.Category(cat.Slug, cat.ID)})
	}
	for _, b := range home.Brands {
		brands = append(brands, link{Name: b.Name, URL: urls.Brand(b.FullPath(), b.ID)})
	}
	for _, col := range home.Collections {
		cols = append(cols, link{Name: col.Name, URL: urls.Collection(col.Slug, col.ID)})
	}
	return render(c, "home", fiber.Map{"Categories": cats, "Brands": brands, "Collections": cols})
}
