package media

import (
	"path/filepath"
	"strings"
)

// Category decides how an asset is stored, served and deleted. It is derived
// from the extension only; no content sniffing.
type Category string

const (
	CategoryImage       Category = "image"
	CategoryVideo       Category = "video"
	CategoryUnsupported Category = "unsupported"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

var videoExts = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
	".avi": true,
}

// Classify maps a filename (or bare extension) to its Category,
// case-insensitively. Both the upload and delete paths use this, so the two
// always agree on where an asset lives.
func Classify(filename string) Category {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExts[ext]:
		return CategoryImage
	case videoExts[ext]:
		return CategoryVideo
	default:
		return CategoryUnsupported
	}
}
