// Package v1 serves the public scan API.
package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"devicescan/internal/entropy"
	"devicescan/internal/network"
	"devicescan/internal/pkg/user_agent"
	"devicescan/internal/scan"
	"devicescan/internal/visitors"
)

const (
	errInvalidReport  = "Invalid client report"
	errInvalidSources = "Sources must be strings, numbers, booleans or null"
	errScanFailed     = "Scan failed, please try again"

	maxTimezoneLength = 64
)

// Handler serves the scan endpoints.
type Handler struct {
	Scanner   *scan.Scanner
	Resolver  scan.Resolver
	Providers []network.Spec
	Logger    *slog.Logger
}

// ScanAction assembles a fingerprint from a posted client report and
// resolves the caller's network. A report from a known automation client is
// flagged as a bot even when it does not admit to webdriver.
func (h *Handler) ScanAction(c *fiber.Ctx) error {
	report, err := entropy.DecodeClientReport(bytes.NewReader(c.Body()))
	if err != nil {
		h.Logger.Debug("Rejected client report", slog.Any("error", err))
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": errInvalidReport,
			"code":  "INVALID_REPORT",
		})
	}

	sources := report.Sources()
	if client, automated := user_agent.DetectAutomation(c.Get(fiber.HeaderUserAgent)); automated {
		h.Logger.Debug("Automated client detected", slog.String("client", client))
		sources.Bot = func() bool { return true }
	}

	ctx := withTimezone(c.UserContext(), report.Timezone)
	result, err := h.Scanner.Scan(ctx, sources)
	if err != nil {
		h.Logger.Error("Scan failed", slog.Any("error", err), slog.String("path", c.Path()))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": errScanFailed,
			"code":  "SCAN_FAILED",
			"retry": true,
		})
	}

	return c.JSON(result)
}

// NetworkAction resolves the caller's network only. The optional tz query
// parameter feeds local inference.
func (h *Handler) NetworkAction(c *fiber.Ctx) error {
	ctx := withTimezone(c.UserContext(), c.Query("tz"))
	return c.JSON(h.Resolver.Resolve(ctx, h.Providers))
}

type hashRequest struct {
	Sources []any `json:"sources"`
}

// HashAction returns the visitor id for an arbitrary source tuple.
func (h *Handler) HashAction(c *fiber.Ctx) error {
	var req hashRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	for _, src := range req.Sources {
		switch src.(type) {
		case string, float64, bool, nil:
		default:
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": errInvalidSources,
				"code":  "INVALID_SOURCES",
			})
		}
	}

	visitorID := visitors.SynthesizeID(req.Sources...)
	return c.JSON(fiber.Map{
		"visitorId": visitorID,
		"alias":     visitors.VisitorAlias(visitorID),
	})
}

// ProvidersAction lists the effective provider list in precedence order.
func (h *Handler) ProvidersAction(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"providers": h.Providers})
}

func withTimezone(ctx context.Context, tz string) context.Context {
	tz = strings.TrimSpace(tz)
	if tz == "" || len(tz) > maxTimezoneLength {
		return ctx
	}
	return network.WithTimezone(ctx, tz)
}
