package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

func openTestBoltSlot(t *testing.T, path string, quota int64) *store.BoltSlot {
	t.Helper()
	slot, err := store.OpenBoltSlot(path, quota)
	require.NoError(t, err)
	return slot
}

func TestBoltSlot_EmptyRead(t *testing.T) {
	slot := openTestBoltSlot(t, filepath.Join(t.TempDir(), "desk.db"), 0)
	defer slot.Close()

	_, err := slot.Read(context.Background())
	assert.ErrorIs(t, err, store.ErrSlotEmpty)
}

func TestBoltSlot_WriteRead(t *testing.T) {
	ctx := context.Background()
	slot := openTestBoltSlot(t, filepath.Join(t.TempDir(), "nested", "desk.db"), 0)
	defer slot.Close()

	require.NoError(t, slot.Write(ctx, []byte(`{"books":[]}`)))
	require.NoError(t, slot.Write(ctx, []byte(`{"books":[{"id":"b1"}]}`)))

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"books":[{"id":"b1"}]}`, string(got))
}

func TestBoltSlot_Quota(t *testing.T) {
	ctx := context.Background()
	slot := openTestBoltSlot(t, filepath.Join(t.TempDir(), "desk.db"), 16)
	defer slot.Close()

	require.NoError(t, slot.Write(ctx, []byte(`{"a":1}`)))

	err := slot.Write(ctx, []byte(strings.Repeat("x", 17)))
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestBoltSlot_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "desk.db")

	s := store.New(openTestBoltSlot(t, path, 0), nil)
	doc := sampleDocument()
	require.NoError(t, s.SaveData(ctx, doc))
	require.NoError(t, s.Close())

	reopened := store.New(openTestBoltSlot(t, path, 0), nil)
	defer reopened.Close()

	assert.Equal(t, doc, reopened.GetData(ctx))
}

func TestBoltSlot_StoreFallsBackToSeedOnCorruptValue(t *testing.T) {
	ctx := context.Background()
	slot := openTestBoltSlot(t, filepath.Join(t.TempDir(), "desk.db"), 0)
	s := store.New(slot, nil)
	defer s.Close()

	require.NoError(t, slot.Write(ctx, []byte("not-json")))

	assert.Equal(t, domain.Seed(), s.GetData(ctx))
}

func TestBoltSlot_TwoHandlesShareTheFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "desk.db")

	watcher := openTestBoltSlot(t, path, 0)
	defer watcher.Close()
	editor := openTestBoltSlot(t, path, 0)
	defer editor.Close()

	require.NoError(t, editor.Write(ctx, []byte(`{"books":[{"id":"b1"}]}`)))
	got, err := watcher.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"books":[{"id":"b1"}]}`, string(got))

	require.NoError(t, watcher.Write(ctx, []byte(`{"books":[]}`)))
	got, err = editor.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"books":[]}`, string(got))
}

func TestBoltSlot_ConcurrentHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "desk.db")

	a := openTestBoltSlot(t, path, 0)
	defer a.Close()
	b := openTestBoltSlot(t, path, 0)
	defer b.Close()
	require.NoError(t, a.Write(ctx, []byte(`{"n":0}`)))

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := range 20 {
		wg.Go(func() {
			_, err := a.Read(ctx)
			errs <- err
		})
		wg.Go(func() {
			errs <- b.Write(ctx, []byte(fmt.Sprintf(`{"n":%d}`, i)))
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestBoltSlot_Closed(t *testing.T) {
	slot := openTestBoltSlot(t, filepath.Join(t.TempDir(), "desk.db"), 0)
	require.NoError(t, slot.Close())

	_, err := slot.Read(context.Background())
	assert.ErrorIs(t, err, store.ErrSlotClosed)
	assert.ErrorIs(t, slot.Write(context.Background(), []byte(`{}`)), store.ErrSlotClosed)
}
