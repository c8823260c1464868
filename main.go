package main

import (
	"time"

	"github.com/mediastash/mediastash/config"
	"github.com/mediastash/mediastash/routes"
	"github.com/mediastash/mediastash/storage"
	"github.com/mediastash/mediastash/transcode"
	"github.com/mediastash/mediastash/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	layout := storage.NewLayout(cfg.StorageDir)
	if err := layout.EnsureRoots(); err != nil {
		utils.Sugar.Fatalf("failed to create storage directories: %v", err)
	}

	engine := transcode.NewFFmpeg(
		cfg.FFmpegPath,
		cfg.FFprobePath,
		time.Duration(cfg.TranscodeTimeoutSec)*time.Second,
		utils.Sugar,
	)

	r := routes.SetupRouter(layout, engine)

	// Failed video sources are kept for inspection unless the sweeper is
	// explicitly enabled.
	if cfg.SweepFailedSources {
		utils.StartFailedSourceSweeper(layout, time.Duration(cfg.SweepAfterMinutes)*time.Minute, time.Hour)
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
