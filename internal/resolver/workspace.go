package resolver

import (
	"context"
	"log/slog"
	"sync"
)

// Workspace holds the document a view is showing and the source it came from.
// The active snapshot is only ever replaced as a whole.
type Workspace struct {
	resolver     *Resolver
	docs         DocumentStore
	writeThrough bool
	logger       *slog.Logger

	mu      sync.RWMutex
	current Result
	loaded  bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Result)
}

// NewWorkspace creates a Workspace. With writeThrough set, mutations made while the
// server is authoritative are pushed before the snapshot is refreshed, so the refresh
// reads them back instead of the server's older copy. The push only happens when the
// local copy was mirrored from the server on the last refresh; pushing an unmirrored
// local copy would replace the server's document with a stale one.
func NewWorkspace(resolver *Resolver, writeThrough bool) *Workspace {
	return &Workspace{
		resolver:     resolver,
		docs:         resolver.docs,
		writeThrough: writeThrough,
		logger:       resolver.logger,
		subs:         make(map[int]func(Result)),
	}
}

// Current returns the active snapshot. Before the first Refresh it reads the local store.
func (w *Workspace) Current(ctx context.Context) Result {
	w.mu.RLock()
	cur, loaded := w.current, w.loaded
	w.mu.RUnlock()
	if loaded {
		return cur
	}
	return Result{Data: w.docs.GetData(ctx), Source: SourceLocal}
}

// Refresh re-resolves the data source and replaces the active snapshot.
func (w *Workspace) Refresh(ctx context.Context) Result {
	res := w.resolver.FetchData(ctx)
	w.set(res)
	return res
}

// Mutate runs fn, which writes through the Document Store, then refreshes.
// Subscribers see the locally saved document right away, before the server round trip.
// If fn fails the snapshot is left as it was. A Workspace that was never refreshed resolves
// its source first, so a server-mode edit starts from the server's copy.
func (w *Workspace) Mutate(ctx context.Context, fn func(ctx context.Context) error) (Result, error) {
	w.mu.RLock()
	loaded := w.loaded
	w.mu.RUnlock()
	if !loaded {
		w.Refresh(ctx)
	}

	if err := fn(ctx); err != nil {
		return w.Current(ctx), err
	}

	prev := w.Current(ctx)
	w.set(Result{Data: w.docs.GetData(ctx), Source: prev.Source, Mirrored: prev.Mirrored})

	if w.writeThrough && prev.Source == SourceServer {
		switch {
		case !prev.Mirrored:
			w.logger.Warn("Write-through skipped: the local copy does not mirror the server document")
		case !w.resolver.ForcePushToServer(ctx):
			w.logger.Warn("Write-through push failed; change is saved locally only")
		}
	}

	return w.Refresh(ctx), nil
}

// PushToServer promotes the local document to the server and refreshes.
func (w *Workspace) PushToServer(ctx context.Context) (Result, bool) {
	ok := w.resolver.ForcePushToServer(ctx)
	return w.Refresh(ctx), ok
}

// Subscribe registers fn to receive every new snapshot. Each call gets its own copy.
// The returned function removes the subscription.
func (w *Workspace) Subscribe(fn func(Result)) (cancel func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()

	id := w.nextID
	w.nextID++
	w.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.subMu.Lock()
			defer w.subMu.Unlock()
			delete(w.subs, id)
		})
	}
}

func (w *Workspace) set(res Result) {
	w.mu.Lock()
	prev, loaded := w.current, w.loaded
	w.current, w.loaded = res, true
	w.mu.Unlock()

	if loaded && prev.Source != res.Source {
		w.logger.Info("Data source changed", "from", prev.Source, "to", res.Source)
	}

	w.subMu.Lock()
	fns := make([]func(Result), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.subMu.Unlock()

	for _, fn := range fns {
		fn(Result{Data: res.Data.Clone(), Source: res.Source})
	}
}
