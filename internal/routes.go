package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	v1 "devicescan/api/v1"
	"devicescan/internal/http"
	"devicescan/internal/http/middleware"
)

// publicCORSConfig is shared by every API route; browsers post scans from
// arbitrary origins.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, User-Agent",
}

// MountAppRoutes registers middleware and the /api/v1 routes.
func MountAppRoutes(app *Application) {
	cfg := app.Config
	server := app.Server

	server.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))

	// Production only.
	conditionalRateLimiter := func(limit fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limit(c)
			}
			return c.Next()
		}
	}

	// Must stay below ip-api's 45 requests per minute.
	scanRateLimiter := conditionalRateLimiter(limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
				"code":  "RATE_LIMITED",
			})
		},
	}))

	h := &v1.Handler{
		Scanner:   app.Scanner,
		Resolver:  app.Resolver,
		Providers: app.Providers,
		Logger:    app.Logger,
	}

	resolving := []fiber.Handler{scanRateLimiter}
	if cfg.ResolveClientIP {
		resolving = append(resolving, middleware.ClientTarget(app.Logger))
	}
	with := func(handler fiber.Handler) []fiber.Handler {
		chain := make([]fiber.Handler, 0, len(resolving)+1)
		chain = append(chain, resolving...)
		return append(chain, handler)
	}

	api := server.Group("/api/v1", cors.New(publicCORSConfig))
	api.Get("/health", http.HealthIndexAction(app.Providers))
	api.Get("/providers", h.ProvidersAction)
	api.Post("/hash", h.HashAction)
	api.Post("/scan", with(h.ScanAction)...)
	api.Get("/network", with(h.NetworkAction)...)
}
