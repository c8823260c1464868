package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediastash/mediastash/media"
	"github.com/mediastash/mediastash/storage"
)

func newTestDeleter(t *testing.T) (*Deleter, storage.Layout) {
	t.Helper()
	layout := storage.NewLayout(t.TempDir())
	require.NoError(t, layout.EnsureRoots())
	return NewDeleter(layout, zap.NewNop().Sugar()), layout
}

func TestDeleteRequiresBothFields(t *testing.T) {
	d, _ := newTestDeleter(t)
	assert.ErrorIs(t, d.Delete("", "u1"), media.ErrInvalidInput)
	assert.ErrorIs(t, d.Delete("u1-1-abcd1234.png", ""), media.ErrInvalidInput)
}

func TestDeleteRejectsPathEscape(t *testing.T) {
	d, _ := newTestDeleter(t)
	assert.ErrorIs(t, d.Delete("u1-../../etc/passwd", "u1"), media.ErrInvalidInput)
}

func TestDeleteForbiddenBeforeLookup(t *testing.T) {
	d, _ := newTestDeleter(t)
	// The asset does not exist either; ownership must still win.
	err := d.Delete("u2-123-abcd1234.png", "u1")
	assert.ErrorIs(t, err, media.ErrForbidden)
	assert.NotErrorIs(t, err, media.ErrNotFound)
}

func TestDeleteForbiddenKeepsFile(t *testing.T) {
	d, layout := newTestDeleter(t)
	path := layout.OriginalPath("u2-123-abcd1234.png")
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))

	assert.ErrorIs(t, d.Delete("u2-123-abcd1234.png", "u1"), media.ErrForbidden)

	_, err := os.Stat(path)
	assert.NoError(t, err, "file untouched on forbidden delete")
}

func TestDeleteImage(t *testing.T) {
	d, layout := newTestDeleter(t)
	path := layout.OriginalPath("u1-123-abcd1234.png")
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))

	require.NoError(t, d.Delete("u1-123-abcd1234.png", "u1"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteImageNotFound(t *testing.T) {
	d, _ := newTestDeleter(t)
	assert.ErrorIs(t, d.Delete("u1-123-abcd1234.png", "u1"), media.ErrNotFound)
}

func TestDeleteVideoRendition(t *testing.T) {
	d, layout := newTestDeleter(t)
	dir, err := layout.EnsureRenditionDir("u1-123-abcd1234.mp4")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.ManifestName), []byte("#EXTM3U\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index0.ts"), []byte("seg"), 0o644))

	require.NoError(t, d.Delete("u1-123-abcd1234.mp4", "u1"))

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "rendition directory fully removed")
}

func TestDeleteVideoNotFound(t *testing.T) {
	d, _ := newTestDeleter(t)
	assert.ErrorIs(t, d.Delete("u1-123-abcd1234.mp4", "u1"), media.ErrNotFound)
}

func TestDeleteUnsupportedFallsThroughToRendition(t *testing.T) {
	d, _ := newTestDeleter(t)
	// Non-image extensions are deleted by rendition lookup, and no
	// rendition ever exists for unsupported uploads.
	assert.ErrorIs(t, d.Delete("u1-123-abcd1234.pdf", "u1"), media.ErrNotFound)
}
