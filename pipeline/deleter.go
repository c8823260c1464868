package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mediastash/mediastash/media"
	"github.com/mediastash/mediastash/storage"
)

// Deleter removes an asset after checking that the requester's user id
// matches the owner prefix embedded in the asset name.
type Deleter struct {
	layout storage.Layout
	log    *zap.SugaredLogger
}

func NewDeleter(layout storage.Layout, log *zap.SugaredLogger) *Deleter {
	return &Deleter{layout: layout, log: log}
}

// Delete removes the asset called name on behalf of ownerID. Ownership is
// checked before any filesystem lookup, so a wrong owner always gets
// ErrForbidden, never ErrNotFound. Images are removed as single files;
// every other extension is removed by rendition directory.
func (d *Deleter) Delete(name, ownerID string) error {
	if name == "" || ownerID == "" {
		return fmt.Errorf("%w: filename and userId are required", media.ErrInvalidInput)
	}
	// Asset names never contain separators; reject anything that tries to
	// escape the storage roots.
	if name != filepath.Base(name) {
		return fmt.Errorf("%w: invalid filename", media.ErrInvalidInput)
	}
	if !media.OwnedBy(name, ownerID) {
		return media.ErrForbidden
	}

	if media.Classify(name) == media.CategoryImage {
		originalPath := d.layout.OriginalPath(name)
		if _, err := os.Stat(originalPath); err != nil {
			if os.IsNotExist(err) {
				return media.ErrNotFound
			}
			return err
		}
		if err := os.Remove(originalPath); err != nil {
			return err
		}
		d.log.Infow("deleted image", "asset", name, "owner", ownerID)
		return nil
	}

	// Any non-image extension is deleted by rendition-directory lookup,
	// including unsupported ones. Unsupported assets never have a rendition,
	// so those requests end in ErrNotFound. Kept as-is deliberately; see
	// DESIGN.md before changing.
	renditionDir := d.layout.RenditionDir(name)
	if _, err := os.Stat(renditionDir); err != nil {
		if os.IsNotExist(err) {
			return media.ErrNotFound
		}
		return err
	}
	if err := os.RemoveAll(renditionDir); err != nil {
		return err
	}
	d.log.Infow("deleted rendition", "asset", name, "owner", ownerID)
	return nil
}
