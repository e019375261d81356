package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellpress/editorial-desk/internal/media"
)

func TestMedia_PutGetInspectRemove(t *testing.T) {
	d := newDesk(t)
	assert.Equal(t, "No media.\n", d.must("media", "ls"))

	photo := writePNG(t, t.TempDir(), 40, 20)
	out := d.must("media", "put", "ps-1", photo)
	assert.Equal(t, "Saved ps-1 (image/png, "+sizeOf(t, photo)+" bytes, 40x20)\n", out)

	dataURL := strings.TrimSpace(d.must("media", "get", "ps-1"))
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"), dataURL)

	entry := decode[MediaEntry](t, d.must("media", "inspect", "ps-1", "--format=json"))
	require.NotNil(t, entry.Info)
	assert.Equal(t, "image/png", entry.MIME)
	assert.Equal(t, 40, entry.Width)
	assert.Equal(t, 20, entry.Height)
	assert.NotEmpty(t, entry.BlurHash)

	d.must("media", "rm", "ps-1", "never-stored")
	res := d.run("media", "get", "ps-1")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
}

func TestMedia_PutSVGUsesExtension(t *testing.T) {
	d := newDesk(t)
	path := filepath.Join(t.TempDir(), "logo.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), 0o600))

	entry := decode[MediaEntry](t, d.must("media", "put", media.KeyBrandLogo, path, "--format=json"))
	require.NotNil(t, entry.Info)
	assert.Equal(t, "image/svg+xml", entry.MIME)
	assert.Zero(t, entry.Width)
}

func TestMedia_ResetBrandingKeepsOtherBlobs(t *testing.T) {
	d := newDesk(t)
	photo := writePNG(t, t.TempDir(), 4, 4)
	d.must("media", "put", media.KeyBrandLogo, photo)
	d.must("media", "put", media.KeyFavicon, photo)
	d.must("media", "put", "imp-1", photo)

	assert.Equal(t, "Branding reset\n", d.must("media", "reset-branding"))

	entries := decode[[]MediaEntry](t, d.must("media", "ls", "--format=json"))
	require.Len(t, entries, 1)
	assert.Equal(t, "imp-1", entries[0].Key)
}

func TestMedia_ClearNeedsConfirmation(t *testing.T) {
	d := newDesk(t)
	d.must("media", "put", "imp-1", writePNG(t, t.TempDir(), 4, 4))

	res := d.run("media", "clear")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))

	d.must("media", "clear", "--yes")
	assert.Equal(t, "No media.\n", d.must("media", "ls"))
}

func TestToDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQI=", toDataURL("a.PNG", []byte{1, 2}))
	assert.Equal(t, "data:text/plain;base64,aGk=", toDataURL("notes", []byte("hi")))
}

func sizeOf(t *testing.T, path string) string {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return strconv.FormatInt(info.Size(), 10)
}
