package providers

import (
	"github.com/samber/do/v2"

	"github.com/inkwellpress/editorial-desk/internal/backup"
	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/remote"
	"github.com/inkwellpress/editorial-desk/internal/resolver"
)

// ProvideRemoteClient provides the sync server client. An empty URL yields a client
// whose every call reports the server unreachable.
func ProvideRemoteClient(i do.Injector) (*remote.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return remote.New(cfg.Remote.URL, cfg.Remote.Timeout, log.Logger.Logger), nil
}

// ProvideResolver provides the source resolver.
func ProvideResolver(i do.Injector) (*resolver.Resolver, error) {
	docs := do.MustInvoke[*LocalStoreHandle](i)
	client := do.MustInvoke[*remote.Client](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return resolver.New(docs.Store, client, log.Logger.Logger), nil
}

// ProvideWorkspace provides the workspace that tracks the resolved document and source.
func ProvideWorkspace(i do.Injector) (*resolver.Workspace, error) {
	cfg := do.MustInvoke[*config.Config](i)
	r := do.MustInvoke[*resolver.Resolver](i)

	return resolver.NewWorkspace(r, cfg.Remote.WriteThrough), nil
}

// ProvideBackupService provides JSON and archive backup.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	docs := do.MustInvoke[*LocalStoreHandle](i)
	mediaStore := do.MustInvoke[*MediaStoreHandle](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return backup.NewService(docs.Store, mediaStore.Store, log.Logger.Logger), nil
}
