package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/sse"
	"github.com/inkwellpress/editorial-desk/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*LoggerHandle](i)

	manager := sse.NewManager(log.Logger.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// DocumentDBHandle wraps the server's SQLite store with shutdown capability.
type DocumentDBHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *DocumentDBHandle) Shutdown() error {
	return h.Close()
}

// ProvideDocumentDB provides the SQLite store holding the server's singleton document.
func ProvideDocumentDB(i do.Injector) (*DocumentDBHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)

	if err := ensureDir(cfg.Storage.DataPath); err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.RemoteDBPath()
	db, err := sqlite.Open(dbPath, log.Logger.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Document database initialized", "path", dbPath)

	return &DocumentDBHandle{Store: db}, nil
}
