package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/media"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

// LocalStoreHandle wraps the desk's document store with shutdown capability.
type LocalStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *LocalStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideLocalStore provides the store over the desk's bbolt slot.
// Failed saves are reported through the injected store.Alerter.
func ProvideLocalStore(i do.Injector) (*LocalStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)
	alerter := do.MustInvoke[store.Alerter](i)

	path := cfg.Storage.DocumentPath()
	slot, err := store.OpenBoltSlot(path, cfg.Storage.LocalQuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("document slot: %w", err)
	}

	s := store.New(slot, log.Logger.Logger)
	s.SetAlerter(alerter)

	log.Debug("Document slot opened", "path", path, "quota_bytes", cfg.Storage.LocalQuotaBytes)

	return &LocalStoreHandle{Store: s}, nil
}

// MediaStoreHandle wraps the media store with shutdown capability.
type MediaStoreHandle struct {
	*media.Store
}

// Shutdown implements do.Shutdownable.
func (h *MediaStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideMediaStore provides the media store. The badger directory is opened on first use.
func ProvideMediaStore(i do.Injector) (*MediaStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return &MediaStoreHandle{Store: media.New(cfg.Storage.MediaPath(), log.Logger.Logger)}, nil
}
