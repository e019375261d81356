package backup_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellpress/editorial-desk/internal/backup"
	"github.com/inkwellpress/editorial-desk/internal/domain"
	domainerrors "github.com/inkwellpress/editorial-desk/internal/errors"
	"github.com/inkwellpress/editorial-desk/internal/media"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

const logoURL = "data:image/png;base64,iVBORw0KGgo="

// testSetup creates a store over an in-memory slot and an in-memory media store.
func testSetup(t *testing.T) (*store.Store, *media.Store, *backup.Service) {
	t.Helper()
	docs := store.New(store.NewMemorySlot(0), nil)
	blobs := media.New("", nil)
	t.Cleanup(func() {
		_ = blobs.Close()
		_ = docs.Close()
	})
	return docs, blobs, backup.NewService(docs, blobs, nil)
}

func populated(t *testing.T, docs *store.Store) *domain.AppData {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, docs.Books.Add(ctx, domain.Book{ID: "b1", Title: "Ember Tide", Tags: []string{"sea"}}))
	require.NoError(t, docs.Sales.Add(ctx, domain.Sale{ID: "s1", BookID: "b1", Units: 4, Revenue: 11.96}))
	return docs.GetData(ctx)
}

func TestExport_WritesIndentedDocument(t *testing.T) {
	docs, _, svc := testSetup(t)
	want := populated(t, docs)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))

	assert.Contains(t, buf.String(), "\n  \"imprints\"")
	var got domain.AppData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, want, got.Normalize())
}

func TestImport_AppendsOneHistoryRecordAndSaves(t *testing.T) {
	ctx := context.Background()
	src, _, srcSvc := testSetup(t)
	want := populated(t, src)
	var buf bytes.Buffer
	require.NoError(t, srcSvc.Export(ctx, &buf))

	docs, _, svc := testSetup(t)
	var changes int
	defer docs.Subscribe(func(store.Change) { changes++ })()

	imported, err := svc.Import(ctx, &buf)
	require.NoError(t, err)

	require.Len(t, imported.History, 1)
	rec := imported.History[0]
	assert.Equal(t, store.ActionImport, rec.Action)
	assert.Contains(t, rec.Details, "1 books")
	assert.False(t, rec.Timestamp.IsZero())

	got := docs.GetData(ctx)
	assert.Equal(t, imported, got)
	assert.Equal(t, want.Books, got.Books)
	assert.Equal(t, want.Sales, got.Sales)
	assert.Equal(t, 1, changes, "import saves exactly once")
}

func TestImport_RejectsInvalidDocuments(t *testing.T) {
	docs, _, svc := testSetup(t)
	before := docs.GetData(context.Background())

	for name, body := range map[string]string{
		"not json":     "hello",
		"array":        "[]",
		"null":         "null",
		"missing id":   `{"books":[{"title":"x"}]}`,
		"duplicate id": `{"imprints":[{"id":"i"},{"id":"i"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), strings.NewReader(body))
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}

	assert.Equal(t, before, docs.GetData(context.Background()))
}

func TestImport_SaveFailure(t *testing.T) {
	docs := store.New(store.NewMemorySlot(32), nil)
	t.Cleanup(func() { _ = docs.Close() })
	svc := backup.NewService(docs, nil, nil)

	_, err := svc.Import(context.Background(), strings.NewReader(`{"books":[{"id":"b1","title":"Too big for the slot"}]}`))
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
}

func TestArchive_RoundTripWithMedia(t *testing.T) {
	ctx := context.Background()
	src, srcBlobs, srcSvc := testSetup(t)
	want := populated(t, src)
	require.NoError(t, srcBlobs.Save(ctx, media.KeyBrandLogo, logoURL))
	require.NoError(t, srcBlobs.Save(ctx, "ps-1", logoURL))

	var buf bytes.Buffer
	manifest, err := srcSvc.ExportArchive(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, backup.FormatVersion, manifest.Version)
	assert.Equal(t, 2, manifest.MediaCount)
	assert.Equal(t, 1, manifest.Counts[domain.CollectionBooks])

	docs, blobs, svc := testSetup(t)
	result, err := svc.ImportArchive(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	assert.Equal(t, 2, result.MediaSaved)
	assert.Zero(t, result.MediaFailed)
	assert.Equal(t, want.Books, docs.GetData(ctx).Books)
	assert.Len(t, docs.GetData(ctx).History, 1)

	all, err := blobs.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{media.KeyBrandLogo: logoURL, "ps-1": logoURL}, all)
}

func TestArchive_WithoutMediaStore(t *testing.T) {
	ctx := context.Background()
	docs := store.New(store.NewMemorySlot(0), nil)
	t.Cleanup(func() { _ = docs.Close() })
	svc := backup.NewService(docs, nil, nil)

	var buf bytes.Buffer
	manifest, err := svc.ExportArchive(ctx, &buf)
	require.NoError(t, err)
	assert.False(t, manifest.IncludesMedia)

	result, err := svc.ImportArchive(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Zero(t, result.MediaSaved)
}

// archive builds a zip from name/content pairs.
func archive(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestImportArchive_Errors(t *testing.T) {
	_, _, svc := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{"no manifest", map[string]string{"document.json": "{}"}, backup.ErrInvalidManifest},
		{"future version", map[string]string{"manifest.json": `{"version":"2.0"}`, "document.json": "{}"}, backup.ErrVersionMismatch},
		{"no document", map[string]string{"manifest.json": `{"version":"1.0"}`}, backup.ErrCorruptedBackup},
		{"count mismatch", map[string]string{
			"manifest.json": `{"version":"1.0","counts":{"books":2}}`,
			"document.json": `{"books":[{"id":"b1"}]}`,
		}, backup.ErrCorruptedBackup},
		{"invalid document", map[string]string{
			"manifest.json": `{"version":"1.0"}`,
			"document.json": `{"books":[{"title":"no id"}]}`,
		}, domainerrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := archive(t, tt.files)
			_, err := svc.ImportArchive(ctx, r, r.Size())
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := svc.ImportArchive(ctx, strings.NewReader("not a zip"), 9)
	assert.ErrorIs(t, err, backup.ErrCorruptedBackup)
}

func TestImportArchive_BadMediaDoesNotFailImport(t *testing.T) {
	docs, blobs, svc := testSetup(t)
	ctx := context.Background()

	r := archive(t, map[string]string{
		"manifest.json": `{"version":"1.0","includes_media":true}`,
		"document.json": `{"books":[{"id":"b1","title":"Kept"}]}`,
		"media.jsonl": `{"key":"ps-1","dataUrl":"` + logoURL + `"}` + "\n" +
			`{"key":"imp-1","dataUrl":"https://not-a-data-url"}` + "\n" +
			"garbage\n",
	})
	result, err := svc.ImportArchive(ctx, r, r.Size())
	require.NoError(t, err)

	assert.Equal(t, 1, result.MediaSaved)
	assert.Equal(t, 2, result.MediaFailed)
	assert.Len(t, docs.GetData(ctx).Books, 1)

	_, ok, err := blobs.Get(ctx, "ps-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
