package handlers

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CartHandler struct {
	Cart *services.CartService
}

// sessionID returns the anonymous cart session, issuing one on first use.
func sessionID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{Name: "sid", Value: sid, Path: "/", HTTPOnly: true, SameSite: "Lax"})
	}
	return sid
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return render(c, "cart", fiber.Map{"Cart": cv, "Total": cv.Total.StringFixed(2)})
}
