package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		DBDriver:     "sqlite",
		DBDSN:        ":memory:",
		TemplatesDir: "../../web/templates",
		Catalog:      config.DefaultCatalog(),
	}
}

// newStorefrontApp wires the real routes against a freshly seeded in-memory
// catalog. extra middleware runs before the CSRF check.
func newStorefrontApp(t *testing.T, cfg config.Config, extra ...fiber.Handler) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	engine := html.New(cfg.TemplatesDir, ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	for _, h := range extra {
		app.Use(h)
	}
	app.Use(handlers.CSRF())

	deps := handlers.NewDeps(db, cfg)
	deps.Register(app)
	app.Use(handlers.NotFound)
	return app, db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func httptestGet(target string) *http.Request {
	return httptest.NewRequest("GET", target, nil)
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// csrfToken loads a page so the CSRF middleware issues a token cookie.
func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, _ := get(t, app, "/")
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func postForm(t *testing.T, app *fiber.App, target, csrfTok string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	form.Set("csrf", csrfTok)
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	return resp
}
