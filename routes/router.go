package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mediastash/mediastash/config"
	"github.com/mediastash/mediastash/controllers"
	"github.com/mediastash/mediastash/middleware"
	"github.com/mediastash/mediastash/pipeline"
	"github.com/mediastash/mediastash/storage"
	"github.com/mediastash/mediastash/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(layout storage.Layout, engine pipeline.Engine) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}
	r.Use(middleware.RequestID())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	processor := pipeline.NewProcessor(layout, engine, cfg.TranscodeWorkers, utils.Sugar)
	deleter := pipeline.NewDeleter(layout, utils.Sugar)
	mediaController := controllers.NewMediaController(
		processor,
		deleter,
		int64(cfg.MaxUploadMB)<<20,
		cfg.MaxBatchFiles,
	)

	limited := r.Group("")
	limited.Use(middleware.RateLimitMiddleware())
	limited.POST("/upload", mediaController.Upload)
	limited.DELETE("/delete", mediaController.Delete)

	// Serve originals (images) and renditions (HLS playlists + segments)
	// under one read-only mount, the way clients received their refs.
	r.GET("/view/*filepath", viewHandler(layout))

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

// viewHandler resolves a /view reference against the originals root first,
// then the renditions root. Image refs are bare filenames; video refs are
// <stem>/index.m3u8 and segment paths inside the same directory.
func viewHandler(layout storage.Layout) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rel := strings.TrimPrefix(ctx.Param("filepath"), "/")
		if rel == "" || strings.Contains(rel, "..") {
			utils.Error(ctx, http.StatusNotFound, 40402, "file not found")
			return
		}

		for _, root := range []string{layout.OriginalsRoot(), layout.RenditionsRoot()} {
			p := filepath.Join(root, filepath.FromSlash(rel))
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				ctx.File(p)
				return
			}
		}
		utils.Error(ctx, http.StatusNotFound, 40402, "file not found")
	}
}
