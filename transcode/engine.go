package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/floostack/transcoder/ffmpeg"
	"go.uber.org/zap"

	"github.com/mediastash/mediastash/media"
	"github.com/mediastash/mediastash/storage"
)

// FFmpeg converts one video source into a single HLS rendition: an
// index.m3u8 playlist plus .ts segments inside the rendition directory.
// Fixed configuration, no bitrate ladder: baseline profile, level 3.0,
// 10 second segments, unbounded playlist (full VOD list).
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	log         *zap.SugaredLogger
}

// NewFFmpeg builds an engine around the ffmpeg/ffprobe binaries at the given
// paths. A timeout of zero disables the deadline and restores the
// wait-forever behavior.
func NewFFmpeg(ffmpegPath, ffprobePath string, timeout time.Duration, log *zap.SugaredLogger) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		log:         log,
	}
}

// Transcode blocks until the encoder exits, then removes the source file.
// Every encoder failure (missing binary, corrupt input, non-zero exit,
// timeout) collapses into ErrTranscodeFailed; the diagnostic text is only
// logged. On failure the source file is left in place for inspection.
func (f *FFmpeg) Transcode(ctx context.Context, sourcePath, renditionDir string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	manifestPath := filepath.Join(renditionDir, storage.ManifestName)

	progress, err := ffmpeg.
		New(&ffmpeg.Config{
			FfmpegBinPath:   f.ffmpegPath,
			FfprobeBinPath:  f.ffprobePath,
			ProgressEnabled: true,
		}).
		Input(sourcePath).
		Output(manifestPath).
		WithContext(&ctx).
		Start(hlsOptions())
	if err != nil {
		f.log.Errorw("transcode failed",
			"source", sourcePath,
			"rendition_dir", renditionDir,
			"error", err,
		)
		return media.ErrTranscodeFailed
	}

	// The progress channel closes when the encoder exits, but the exit
	// status is not carried through it. Completion is verified from the
	// playlist instead.
	for range progress {
	}

	if ctx.Err() != nil {
		f.log.Errorw("transcode aborted",
			"source", sourcePath,
			"rendition_dir", renditionDir,
			"error", ctx.Err(),
		)
		return media.ErrTranscodeFailed
	}
	if err := verifyManifest(manifestPath); err != nil {
		f.log.Errorw("transcode failed",
			"source", sourcePath,
			"rendition_dir", renditionDir,
			"error", err,
		)
		return media.ErrTranscodeFailed
	}

	// The source is transient once a rendition exists. Removal is
	// best-effort; the rendition is complete either way.
	if err := os.Remove(sourcePath); err != nil {
		f.log.Warnw("failed to delete transcoded source", "source", sourcePath, "error", err)
	}

	f.log.Infow("transcode complete", "source", sourcePath, "manifest", manifestPath)
	return nil
}

// verifyManifest confirms the encoder finished cleanly. ffmpeg writes the
// playlist incrementally and appends the end marker only on a normal exit,
// so a missing or unterminated manifest means the encode failed or was
// killed partway through.
func verifyManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !bytes.Contains(data, []byte("#EXT-X-ENDLIST")) {
		return fmt.Errorf("playlist %s is not finalized", path)
	}
	return nil
}

func hlsOptions() ffmpeg.Options {
	videoProfile := "baseline"
	outputFormat := "hls"
	segmentDuration := 10
	listSize := 0
	overwrite := true

	return ffmpeg.Options{
		VideoProfile:       &videoProfile,
		OutputFormat:       &outputFormat,
		HlsSegmentDuration: &segmentDuration,
		HlsListSize:        &listSize,
		Overwrite:          &overwrite,
		ExtraArgs: map[string]interface{}{
			"-level":        "3.0",
			"-start_number": 0,
		},
	}
}
