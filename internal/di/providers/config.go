// Package providers contains dependency injection providers for the sync server and the desk CLI.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/logger"
)

// ProvideConfig provides the sync server configuration from flags, environment and .env.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// LoggerHandle wraps the logger so its rotating file is closed on shutdown.
type LoggerHandle struct {
	*logger.Logger
}

// Shutdown implements do.Shutdownable.
func (h *LoggerHandle) Shutdown() error {
	return h.Close()
}

// ProvideLogger provides the structured logger for the sync server.
func ProvideLogger(i do.Injector) (*LoggerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		File:        cfg.Logger.File,
	})

	log.Info("Starting Editorial Desk sync server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
	)

	return &LoggerHandle{Logger: log}, nil
}

// ProvideDeskLogger provides the desk CLI's logger. Without a log file it writes to stderr
// so command output on stdout stays machine-readable.
func ProvideDeskLogger(i do.Injector) (*LoggerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
		File:        cfg.Logger.File,
	})

	log.Debug("Desk starting",
		"data_path", cfg.Storage.DataPath,
		"remote_url", cfg.Remote.URL,
		"write_through", cfg.Remote.WriteThrough,
	)

	return &LoggerHandle{Logger: log}, nil
}
