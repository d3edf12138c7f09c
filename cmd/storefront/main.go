package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.L().Warn("log.file.open", zap.String("file", cfg.LogFile), zap.Error(err))
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Set(applog.New(out, cfg.LogLevel))
	defer func() { _ = applog.L().Sync() }()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		applog.L().Fatal("db.open", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: out}))
	app.Use(helmet.New())
	app.Use(metrics.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || p == "/metrics" || p == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
	}))
	app.Use(handlers.CSRF())

	// ---------- Static assets ----------
	app.Static("/static", cfg.StaticDir)

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg)
	deps.Register(app)
	app.Use(handlers.NotFound)

	applog.L().Info("server.start", zap.String("port", cfg.Port), zap.String("driver", cfg.DBDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.L().Fatal("server.stop", zap.Error(err))
	}
}
