package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"devicescan/internal/network"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Providers int       `json:"providers"`
	GeoIP     string    `json:"geoip"`
}

// HealthIndexAction reports the size of the provider list and whether the
// offline database is in it. Resolution never fails, so status is always ok.
func HealthIndexAction(providers []network.Spec) fiber.Handler {
	geoStatus := "disabled"
	for _, spec := range providers {
		if spec.Type == network.TypeMMDB {
			geoStatus = "enabled"
		}
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(HealthStatus{
			Status:    "ok",
			Timestamp: time.Now(),
			Providers: len(providers),
			GeoIP:     geoStatus,
		})
	}
}
