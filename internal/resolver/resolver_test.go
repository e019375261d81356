package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/remote"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

// fakeRemote is an in-process stand-in for the sync server.
type fakeRemote struct {
	mu        sync.Mutex
	reachable bool
	rejects   bool
	doc       *domain.AppData
	fetches   int
	pushes    int
}

func (f *fakeRemote) Fetch(context.Context) remote.FetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if !f.reachable {
		return remote.FetchResult{}
	}
	return remote.FetchResult{Data: f.doc.Clone(), Reachable: true}
}

func (f *fakeRemote) Push(_ context.Context, doc *domain.AppData) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes++
	if !f.reachable || f.rejects {
		return false
	}
	f.doc = doc.Clone()
	return true
}

func (f *fakeRemote) stored() *domain.AppData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc.Clone()
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.NewMemorySlot(0), nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func serverDocument() *domain.AppData {
	doc := domain.Seed()
	doc.Books = []domain.Book{{ID: "srv-b1", Title: "From the server"}}
	doc.Settings.BrandName = "Server Press"
	return doc
}

func TestClassify(t *testing.T) {
	local := domain.Seed()
	local.Tasks = []domain.Task{{ID: "t-1", Title: "local only"}}
	srv := serverDocument()

	tests := []struct {
		name   string
		probe  remote.FetchResult
		local  *domain.AppData
		want   Source
		wantEq *domain.AppData
	}{
		{"unreachable", remote.FetchResult{}, local, SourceLocal, local},
		{"unreachable ignores stray data", remote.FetchResult{Data: srv}, local, SourceLocal, local},
		{"reachable empty", remote.FetchResult{Reachable: true}, local, SourceEmptyServer, local},
		{"reachable with document", remote.FetchResult{Data: srv, Reachable: true}, local, SourceServer, srv},
		{"nil local falls back to seed", remote.FetchResult{}, nil, SourceLocal, domain.Seed()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.probe, tt.local)
			assert.Equal(t, tt.want, res.Source)
			assert.Equal(t, tt.wantEq, res.Data)
		})
	}
}

func TestSource_Banner(t *testing.T) {
	assert.Contains(t, SourceLocal.Banner(), "Disconnected")
	assert.Contains(t, SourceEmptyServer.Banner(), "push")
	assert.Contains(t, SourceServer.Banner(), "Connected")
	assert.Equal(t, "Unknown source", Source("bogus").Banner())
}

func TestFetchData_UnreachableReturnsLocalCopy(t *testing.T) {
	ctx := context.Background()
	docs := setupStore(t)
	require.NoError(t, docs.Tasks.Add(ctx, domain.Task{ID: "t-1", Title: "Write blurb"}))

	r := New(docs, &fakeRemote{}, nil)
	res := r.FetchData(ctx)

	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, docs.GetData(ctx), res.Data)
}

func TestFetchData_EmptyServer(t *testing.T) {
	ctx := context.Background()
	docs := setupStore(t)

	r := New(docs, &fakeRemote{reachable: true}, nil)
	res := r.FetchData(ctx)

	assert.Equal(t, SourceEmptyServer, res.Source)
	assert.Equal(t, domain.Seed(), res.Data)
}

func TestFetchData_ServerDocumentIsMirroredLocally(t *testing.T) {
	ctx := context.Background()
	docs := setupStore(t)
	srv := serverDocument()

	r := New(docs, &fakeRemote{reachable: true, doc: srv}, nil)
	res := r.FetchData(ctx)

	assert.Equal(t, SourceServer, res.Source)
	assert.True(t, res.Mirrored)
	assert.Equal(t, srv, res.Data)
	assert.Equal(t, srv, docs.GetData(ctx))
}

func TestFetchData_MirrorFailureKeepsServerSource(t *testing.T) {
	ctx := context.Background()
	docs := store.New(store.NewMemorySlot(16), nil)
	t.Cleanup(func() { _ = docs.Close() })
	srv := serverDocument()

	r := New(docs, &fakeRemote{reachable: true, doc: srv}, nil)
	res := r.FetchData(ctx)

	assert.Equal(t, SourceServer, res.Source)
	assert.False(t, res.Mirrored)
	assert.Equal(t, srv, res.Data)
	assert.Equal(t, domain.Seed(), docs.GetData(ctx))
}

func TestFetchData_ServerErrorIsLocal(t *testing.T) {
	ctx := context.Background()
	docs := setupStore(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"database is locked"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	r := New(docs, remote.New(srv.URL, time.Second, nil), nil)

	var res Result
	assert.NotPanics(t, func() { res = r.FetchData(ctx) })
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, docs.GetData(ctx), res.Data)
}

func TestFetchData_ReprobesEveryCall(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{}
	r := New(setupStore(t), fake, nil)

	assert.Equal(t, SourceLocal, r.FetchData(ctx).Source)

	fake.mu.Lock()
	fake.reachable = true
	fake.mu.Unlock()
	assert.Equal(t, SourceEmptyServer, r.FetchData(ctx).Source)

	fake.mu.Lock()
	fake.doc = serverDocument()
	fake.mu.Unlock()
	assert.Equal(t, SourceServer, r.FetchData(ctx).Source)

	assert.Equal(t, 3, fake.fetches)
}

func TestForcePushToServer_NextFetchIsServer(t *testing.T) {
	ctx := context.Background()
	docs := setupStore(t)
	require.NoError(t, docs.Books.Add(ctx, domain.Book{ID: "b1", Title: "Local draft"}))
	fake := &fakeRemote{reachable: true}
	r := New(docs, fake, nil)

	require.Equal(t, SourceEmptyServer, r.FetchData(ctx).Source)

	require.True(t, r.ForcePushToServer(ctx))
	pushed := docs.GetData(ctx)
	assert.Equal(t, pushed, fake.stored())

	res := r.FetchData(ctx)
	assert.Equal(t, SourceServer, res.Source)
	assert.Equal(t, pushed, res.Data)
}

func TestForcePushToServer_Failure(t *testing.T) {
	ctx := context.Background()

	assert.False(t, New(setupStore(t), &fakeRemote{}, nil).ForcePushToServer(ctx))

	fake := &fakeRemote{reachable: true, rejects: true}
	assert.False(t, New(setupStore(t), fake, nil).ForcePushToServer(ctx))
	assert.Nil(t, fake.stored())
}

func TestFetchData_NeverPushesOnItsOwn(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRemote{reachable: true}
	r := New(setupStore(t), fake, nil)

	r.FetchData(ctx)
	r.FetchData(ctx)

	assert.Zero(t, fake.pushes)
}
