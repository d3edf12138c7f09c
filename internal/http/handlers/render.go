package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals(csrfLocal).(string)
	if tok == "" {
		// fall back to the cookie when Locals wasn't populated
		tok = c.Cookies(csrfCookie)
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

// lookupFailed turns a service error into the right response.
func lookupFailed(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidPage) {
		return notFound(c, msg)
	}
	return err
}

func queryValues(c *fiber.Ctx) url.Values {
	v, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "query"})
		return url.Values{}
	}
	return v
}

// ErrorHandler logs the failure and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		if fe.Code == fiber.StatusNotFound {
			return notFound(c, "Page not found")
		}
		log.Security(c, "request.reject", map[string]any{"status": fe.Code})
		return c.Status(fe.Code).Render("notfound", fiber.Map{"Message": fe.Message})
	}
	log.Error(c, "server.error", err, nil)
	if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
		"Message": "Something went wrong. Please try again.",
	}); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
	}
	return nil
}
