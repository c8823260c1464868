package pipeline

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mediastash/mediastash/media"
	"github.com/mediastash/mediastash/models"
	"github.com/mediastash/mediastash/storage"
)

// Engine converts the video at sourcePath into an HLS rendition inside
// renditionDir, blocking until the encoder exits. On success it also removes
// the source file.
type Engine interface {
	Transcode(ctx context.Context, sourcePath, renditionDir string) error
}

// Error strings surfaced in per-file result entries.
const (
	ErrorTranscodeFailed = "TranscodeFailed"
	ErrorUnsupportedType = "UnsupportedType"
	ErrorInternalFailure = "InternalFailure"
)

// Processor drives one upload batch: store each file under a fresh asset
// name, classify it, transcode videos, and collect one result per input in
// input order. A file's failure never touches its siblings.
type Processor struct {
	layout  storage.Layout
	engine  Engine
	workers int
	log     *zap.SugaredLogger
}

// NewProcessor wires a batch processor. workers bounds how many files of one
// batch are handled at once; 1 means strictly serial.
func NewProcessor(layout storage.Layout, engine Engine, workers int, log *zap.SugaredLogger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		layout:  layout,
		engine:  engine,
		workers: workers,
		log:     log,
	}
}

// Process handles a batch of uploaded files for ownerID. The returned slice
// always has len(files) entries in input order. An error is returned only
// when the request itself is malformed, before any file is written.
func (p *Processor) Process(ctx context.Context, ownerID string, files []*multipart.FileHeader) ([]models.UploadResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: userId is required", media.ErrInvalidInput)
	}
	if len(files) == 0 {
		return nil, media.ErrNoFilesProvided
	}

	results := make([]models.UploadResult, len(files))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			results[i] = p.processOne(ctx, ownerID, fh)
			return nil
		})
	}
	// Workers only write their own slot and never return errors.
	_ = g.Wait()

	return results, nil
}

func (p *Processor) processOne(ctx context.Context, ownerID string, fh *multipart.FileHeader) models.UploadResult {
	// The stored name keeps the original extension, so classifying either
	// name gives the same answer.
	category := media.Classify(fh.Filename)

	name, err := media.NewAssetName(ownerID, fh.Filename)
	if err != nil {
		p.log.Errorw("failed to generate asset name", "filename", fh.Filename, "error", err)
		return models.UploadResult{Type: string(category), Error: ErrorInternalFailure}
	}

	originalPath := p.layout.OriginalPath(name)
	if err := saveUpload(fh, originalPath); err != nil {
		p.log.Errorw("failed to store upload", "asset", name, "error", err)
		return models.UploadResult{Type: string(category), Error: ErrorInternalFailure}
	}

	switch category {
	case media.CategoryImage:
		// The stored original is the servable artifact.
		return models.UploadResult{Type: string(category), URL: p.layout.ImageRef(name)}

	case media.CategoryVideo:
		renditionDir, err := p.layout.EnsureRenditionDir(name)
		if err != nil {
			p.log.Errorw("failed to create rendition dir", "asset", name, "error", err)
			return models.UploadResult{Type: string(category), Error: ErrorTranscodeFailed}
		}
		if err := p.engine.Transcode(ctx, originalPath, renditionDir); err != nil {
			return models.UploadResult{Type: string(category), Error: ErrorTranscodeFailed}
		}
		return models.UploadResult{Type: string(category), URL: p.layout.ManifestRef(name)}

	default:
		// Unsupported uploads leave nothing on disk.
		if err := os.Remove(originalPath); err != nil {
			p.log.Warnw("failed to remove unsupported upload", "asset", name, "error", err)
		}
		return models.UploadResult{Type: string(category), Error: ErrorUnsupportedType}
	}
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
