package utils

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mediastash/mediastash/media"
	"github.com/mediastash/mediastash/storage"
)

// StartFailedSourceSweeper launches a background goroutine that periodically
// deletes video sources left in the originals directory by failed
// transcodes, once they are older than ttl. Failed sources are retained by
// default for manual inspection; this sweeper only runs when explicitly
// enabled. Image files are never touched. Best-effort, failures are logged.
func StartFailedSourceSweeper(layout storage.Layout, ttl, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing in-flight transcodes at startup
			time.Sleep(interval)
			sweepFailedSources(layout, ttl)
		}
	}()
}

func sweepFailedSources(layout storage.Layout, ttl time.Duration) {
	entries, err := os.ReadDir(layout.OriginalsRoot())
	if err != nil {
		Sugar.Warnf("source sweeper: read originals dir failed: %v", err)
		return
	}

	cutoff := time.Now().Add(-ttl)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Images are the servable artifact and persist indefinitely. Only
		// video sources are transient; any video still here either failed
		// to transcode or is mid-flight, and the ttl guards the latter.
		if media.Classify(entry.Name()) != media.CategoryVideo {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(layout.OriginalsRoot(), entry.Name())
		if err := os.Remove(path); err != nil {
			Sugar.Warnf("source sweeper: remove %s failed: %v", path, err)
			continue
		}
		Sugar.Infof("source sweeper: removed stale video source %s", entry.Name())
	}
}
