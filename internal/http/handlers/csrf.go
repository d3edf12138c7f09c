package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"storefront/internal/log"
)

const (
	csrfField   = "csrf"
	csrfCookie  = "csrf_"
	csrfLocal   = "csrf"
	csrfHeader  = "X-CSRF-Token"
	csrfFailMsg = "Security check failed. Please refresh and try again."
)

// CSRF is the double-submit cookie guard for unsafe methods. The token is
// read from the X-CSRF-Token header when present, otherwise from the csrf
// form field.
func CSRF() fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:" + csrfField,
		CookieName:     csrfCookie,
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     csrfLocal,
		Extractor:      csrfExtractor,
		ErrorHandler:   csrfFailed,
	})
}

func csrfExtractor(c *fiber.Ctx) (string, error) {
	if tok := c.Get(csrfHeader); tok != "" {
		return tok, nil
	}
	return csrf.CsrfFromForm(csrfField)(c)
}

func csrfFailed(c *fiber.Ctx, err error) error {
	log.Security(c, "csrf.fail", map[string]any{"error": err.Error()})
	if c.XHR() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": csrfFailMsg})
	}
	return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": csrfFailMsg})
}
