// Package internal wires configuration, logging, the resolver and the HTTP
// server into an application.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"

	"devicescan/internal/config"
	"devicescan/internal/logging"
	"devicescan/internal/network"
	"devicescan/internal/pkg/geoip"
	"devicescan/internal/scan"
)

// Application holds the long-lived components shared by the server and the
// CLI.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Providers []network.Spec
	Resolver  *network.Resolver
	Scanner   *scan.Scanner
	Server    *fiber.App

	geoDB     *geoip.DB
	logCloser io.Closer
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger, logCloser := logging.NewLogger(cfg)

	providers, err := LoadProviders(cfg)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to load providers: %w", err)
	}

	geoDB, err := geoip.Open(cfg.GeoDBPath, logger)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}

	opts := []network.Option{
		network.WithLogger(logger),
		network.WithTimeout(cfg.ProviderTimeout()),
		network.WithUserAgent(cfg.UserAgent),
	}
	if geoDB != nil {
		providers = network.WithGeoIP(providers)
		opts = append(opts, network.WithGeoLookup(geoDB))
	}
	resolver := network.NewResolver(opts...)

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Providers: providers,
		Resolver:  resolver,
		Scanner: &scan.Scanner{
			Resolver:           resolver,
			Providers:          providers,
			Logger:             logger,
			ComputedConfidence: cfg.ComputedConfidence,
		},
		Server: fiber.New(fiber.Config{
			AppName:               cfg.AppName,
			DisableStartupMessage: true,
			ErrorHandler:          jsonErrorHandler(logger),
		}),
		geoDB:     geoDB,
		logCloser: logCloser,
	}
	MountAppRoutes(app)

	names := make([]string, len(providers))
	for i, spec := range providers {
		names[i] = spec.Name
	}
	logger.Info("Application initialized",
		slog.String("environment", cfg.Environment),
		slog.Any("providers", names),
		slog.Duration("provider_timeout", cfg.ProviderTimeout()))

	return app, nil
}

// LoadProviders returns the provider list from the configured file, or the
// built-in list when none is configured.
func LoadProviders(cfg *config.Config) ([]network.Spec, error) {
	if cfg.ProvidersFile == "" {
		return network.DefaultProviders(), nil
	}
	return network.LoadProviders(cfg.ProvidersFile)
}

// StartAsync starts serving on the configured port and returns once the
// listener is bound.
func (a *Application) StartAsync() error {
	ln, err := net.Listen("tcp", ":"+a.Config.GetPort())
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", a.Config.GetPort(), err)
	}

	go func() {
		if err := a.Server.Listener(ln); err != nil {
			a.Logger.Error("Server stopped with error", slog.Any("error", err))
		}
	}()

	a.Logger.Info("Server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// ReloadGeoIP reopens the GeoLite2 database after it was replaced on disk.
// It is a no-op when no database was loaded at startup.
func (a *Application) ReloadGeoIP() error {
	if a.geoDB == nil {
		a.Logger.Info("GeoIP reload skipped - no database loaded")
		return nil
	}
	if err := a.geoDB.Reload(); err != nil {
		return fmt.Errorf("reload geoip database: %w", err)
	}
	return nil
}

// Shutdown stops the server and releases the GeoIP database and log file.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if a.geoDB != nil {
		if err := a.geoDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close geoip database: %w", err))
		}
	}
	if err := a.logCloser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

func jsonErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			logger.Error("Unhandled request error",
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
			"code":  code,
		})
	}
}
