package resolver

import (
	"context"
	"log/slog"

	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/remote"
)

// DocumentStore is the local persistence the resolver reads and mirrors into.
// *store.Store implements it.
type DocumentStore interface {
	GetData(ctx context.Context) *domain.AppData
	SaveData(ctx context.Context, doc *domain.AppData) error
}

// RemoteClient is the server the resolver probes and pushes to.
// *remote.Client implements it.
type RemoteClient interface {
	Fetch(ctx context.Context) remote.FetchResult
	Push(ctx context.Context, doc *domain.AppData) bool
}

// Resolver combines the local store and the server into one fetch contract.
// It keeps no mode between calls: connectivity is probed fresh every time.
type Resolver struct {
	docs   DocumentStore
	remote RemoteClient
	logger *slog.Logger
}

// New creates a Resolver.
func New(docs DocumentStore, remote RemoteClient, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		docs:   docs,
		remote: remote,
		logger: logger,
	}
}

// FetchData probes the server, reads the local copy and classifies the pair.
// When the server is authoritative its document is mirrored into the local store so the
// offline fallback stays current. A failed mirror (typically a server document larger than
// the local quota) keeps the server source but leaves Mirrored unset.
func (r *Resolver) FetchData(ctx context.Context) Result {
	probe := r.remote.Fetch(ctx)
	res := Classify(probe, r.docs.GetData(ctx))

	if res.Source == SourceServer {
		if err := r.docs.SaveData(ctx, res.Data); err != nil {
			r.logger.Warn("Failed to mirror server document locally", "error", err)
		} else {
			res.Mirrored = true
		}
	}

	r.logger.Debug("Data source resolved", "source", res.Source)
	return res
}

// ForcePushToServer replaces the server's document with the local one.
// This overwrites whatever the server holds; it is only ever called on explicit request.
func (r *Resolver) ForcePushToServer(ctx context.Context) bool {
	local := r.docs.GetData(ctx)
	ok := r.remote.Push(ctx, local)
	if ok {
		r.logger.Info("Local document pushed to server", "counts", local.Counts())
	} else {
		r.logger.Warn("Push to server failed")
	}
	return ok
}
