// Package di provides dependency injection configuration for the sync server and the desk CLI.
package di

import (
	"github.com/samber/do/v2"

	"github.com/inkwellpress/editorial-desk/internal/backup"
	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/di/providers"
	"github.com/inkwellpress/editorial-desk/internal/media"
	"github.com/inkwellpress/editorial-desk/internal/remote"
	"github.com/inkwellpress/editorial-desk/internal/resolver"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

// NewServerContainer creates the DI container for the sync server.
func NewServerContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideDocumentDB)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// BootstrapServer initializes the server's services and starts listening.
func BootstrapServer(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.LoggerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SSEManagerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.DocumentDBHandle](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}

// NewDeskContainer creates the DI container for the desk CLI.
// cfg comes from the CLI's flags; alerter receives failed-save warnings.
func NewDeskContainer(cfg *config.Config, alerter store.Alerter) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, alerter)
	do.Provide(injector, providers.ProvideDeskLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideLocalStore)
	do.Provide(injector, providers.ProvideMediaStore)

	// Sync layer
	do.Provide(injector, providers.ProvideRemoteClient)
	do.Provide(injector, providers.ProvideResolver)
	do.Provide(injector, providers.ProvideWorkspace)

	// Services
	do.Provide(injector, providers.ProvideBackupService)

	return injector
}

// Desk is the set of services the desk CLI works with.
type Desk struct {
	Config    *config.Config
	Store     *store.Store
	Media     *media.Store
	Remote    *remote.Client
	Workspace *resolver.Workspace
	Backup    *backup.Service
}

// ResolveDesk invokes every desk service.
func ResolveDesk(injector do.Injector) (*Desk, error) {
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return nil, err
	}
	docs, err := do.Invoke[*providers.LocalStoreHandle](injector)
	if err != nil {
		return nil, err
	}
	mediaStore, err := do.Invoke[*providers.MediaStoreHandle](injector)
	if err != nil {
		return nil, err
	}
	client, err := do.Invoke[*remote.Client](injector)
	if err != nil {
		return nil, err
	}
	ws, err := do.Invoke[*resolver.Workspace](injector)
	if err != nil {
		return nil, err
	}
	backupSvc, err := do.Invoke[*backup.Service](injector)
	if err != nil {
		return nil, err
	}

	return &Desk{
		Config:    cfg,
		Store:     docs.Store,
		Media:     mediaStore.Store,
		Remote:    client,
		Workspace: ws,
		Backup:    backupSvc,
	}, nil
}
