package storage

import (
	"os"
	"path"
	"path/filepath"

	"github.com/mediastash/mediastash/media"
)

// ManifestName is the playlist filename inside every rendition directory.
const ManifestName = "index.m3u8"

// Layout maps asset names onto the on-disk arrangement:
//
//	<root>/originals/<name>          image files and transient video sources
//	<root>/renditions/<stem>/        HLS manifest plus segments per video
//
// Servable references handed back to clients are relative to the /view
// mount, so they always use forward slashes.
type Layout struct {
	root string
}

func NewLayout(root string) Layout {
	return Layout{root: root}
}

func (l Layout) OriginalsRoot() string {
	return filepath.Join(l.root, "originals")
}

func (l Layout) RenditionsRoot() string {
	return filepath.Join(l.root, "renditions")
}

// OriginalPath is where the uploaded bytes for name are stored.
func (l Layout) OriginalPath(name string) string {
	return filepath.Join(l.OriginalsRoot(), name)
}

// RenditionDir is the per-video output directory, keyed by the name's stem.
// Name uniqueness guarantees two assets never share a directory.
func (l Layout) RenditionDir(name string) string {
	return filepath.Join(l.RenditionsRoot(), media.Stem(name))
}

// ManifestPath is the absolute path of the HLS playlist for name.
func (l Layout) ManifestPath(name string) string {
	return filepath.Join(l.RenditionDir(name), ManifestName)
}

// ImageRef is the servable reference for a stored image.
func (l Layout) ImageRef(name string) string {
	return name
}

// ManifestRef is the servable reference for a transcoded video.
func (l Layout) ManifestRef(name string) string {
	return path.Join(media.Stem(name), ManifestName)
}

// EnsureRoots creates the originals and renditions roots if absent.
func (l Layout) EnsureRoots() error {
	for _, dir := range []string{l.OriginalsRoot(), l.RenditionsRoot()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// EnsureRenditionDir creates the rendition directory for name if absent and
// returns its path. Safe to call repeatedly; existing segments are kept.
func (l Layout) EnsureRenditionDir(name string) (string, error) {
	dir := l.RenditionDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
