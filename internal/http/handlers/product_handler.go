package handlers

import (
	"time"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/urls"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
}

const productGone = "This item is no longer available"

// product resolves the :id param and reports whether :slug is canonical.
func (h *ProductHandler) product(c *fiber.Ctx) (domain.Product, bool, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return domain.Product{}, false, services.ErrNotFound
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return p, false, err
	}
	return p, c.Params("slug") == p.Slug(), nil
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, canonical, err := h.product(c)
	if err != nil {
		return lookupFailed(c, err, productGone)
	}
	if !canonical {
		return c.Redirect(urls.Product(p.Slug(), p.ID), fiber.StatusMovedPermanently)
	}
	return h.renderDetail(c, p, services.AddForm{}, nil)
}

func (h *ProductHandler) renderDetail(c *fiber.Ctx, p domain.Product, form services.AddForm, errs services.FormErrors) error {
	details, err := h.Catalog.ProductDetails(c.UserContext(), p, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		c.Status(fiber.StatusBadRequest)
	}
	return render(c, "product", fiber.Map{
		"D":      details,
		"Price":  p.Price.StringFixed(2),
		"AddURL": urls.AddToCart(p.Slug(), p.ID),
		"Form":   form,
		"Errors": errs,
	})
}

// AddToCart puts a variant of the product into the session cart. GET only
// bounces back to the product page. XHR callers get JSON instead of a page.
func (h *ProductHandler) AddToCart(c *fiber.Ctx) error {
	p, _, err := h.product(c)
	if err != nil {
		return lookupFailed(c, err, productGone)
	}
	if c.Method() != fiber.MethodPost {
		return c.Redirect(urls.Product(p.Slug(), p.ID))
	}
	if !h.Catalog.Purchasable(p) {
		return notFound(c, productGone)
	}

	form := services.AddForm{Variant: c.FormValue("variant"), Quantity: c.FormValue("quantity")}
	errs, err := h.Cart.Add(c.UserContext(), sessionID(c), p, form)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		log.Info(c, "cart.add.invalid", map[string]any{"product": p.ID, "errors": errs})
		if c.XHR() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errs})
		}
		return h.renderDetail(c, p, form, errs)
	}

	log.Audit(c, "cart.add", map[string]any{"product": p.ID, "variant": form.Variant})
	if c.XHR() {
		return c.JSON(fiber.Map{"next": urls.Cart})
	}
	return c.Redirect(urls.Cart)
}
