package media

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// randomSuffixBytes is hex-encoded into the asset name, so the suffix is
// twice this many characters wide.
const randomSuffixBytes = 4

// NewAssetName builds the stored name for an uploaded file:
// {ownerID}-{unix millis}-{random hex}{ext}. The owner prefix is what later
// authorizes deletion, so an empty owner must be rejected before anything is
// written to disk. The extension is taken from originalFilename as-is.
func NewAssetName(ownerID, originalFilename string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	buf := make([]byte, randomSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate asset name: %w", err)
	}

	ext := filepath.Ext(originalFilename)
	return fmt.Sprintf("%s-%d-%s%s", ownerID, time.Now().UnixMilli(), hex.EncodeToString(buf), ext), nil
}

// OwnedBy reports whether name carries ownerID as its owner prefix. This is
// the whole access-control model for deletes.
func OwnedBy(name, ownerID string) bool {
	return ownerID != "" && strings.HasPrefix(name, ownerID+"-")
}

// Stem returns name without its extension. Rendition directories are named
// by stem.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
