package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
type AppConfig struct {
	AppPort        string
	AllowedOrigins []string

	// Media pipeline
	StorageDir          string
	FFmpegPath          string
	FFprobePath         string
	MaxUploadMB         int
	MaxBatchFiles       int
	TranscodeTimeoutSec int // 0 waits forever
	TranscodeWorkers    int // per-batch concurrency, 1 = serial
	SweepFailedSources  bool
	SweepAfterMinutes   int

	RateLimitPerMinute int

	// HTTP server timeouts; 0 disables. Upload requests wait for the
	// encoder, so the write timeout must outlast the longest transcode.
	ReadTimeoutSec  int
	WriteTimeoutSec int

	// Gin framework configuration
	GinMode string
	GinPath string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during
// boot. Precedence: config/config.json -> defaults -> environment overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for
// invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
		if v := getInt(app, "ReadTimeoutSec"); v != 0 {
			out.ReadTimeoutSec = v
		}
		if v := getInt(app, "WriteTimeoutSec"); v != 0 {
			out.WriteTimeoutSec = v
		}
	}

	if m, ok := raw["media"].(map[string]any); ok {
		out.StorageDir = getString(m, "StorageDir")
		out.FFmpegPath = getString(m, "FFmpegPath")
		out.FFprobePath = getString(m, "FFprobePath")
		if v := getInt(m, "MaxUploadMB"); v != 0 {
			out.MaxUploadMB = v
		}
		if v := getInt(m, "MaxBatchFiles"); v != 0 {
			out.MaxBatchFiles = v
		}
		if v := getInt(m, "TranscodeTimeoutSec"); v != 0 {
			out.TranscodeTimeoutSec = v
		}
		if v := getInt(m, "TranscodeWorkers"); v != 0 {
			out.TranscodeWorkers = v
		}
		out.SweepFailedSources = getBool(m, "SweepFailedSources")
		if v := getInt(m, "SweepAfterMinutes"); v != 0 {
			out.SweepAfterMinutes = v
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "4444"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.StorageDir == "" {
		c.StorageDir = "uploads"
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 512
	}
	if c.MaxBatchFiles == 0 {
		c.MaxBatchFiles = 30
	}
	if c.TranscodeTimeoutSec == 0 {
		c.TranscodeTimeoutSec = 30 * 60
	}
	if c.TranscodeWorkers == 0 {
		c.TranscodeWorkers = 1
	}
	if c.SweepAfterMinutes == 0 {
		c.SweepAfterMinutes = 24 * 60
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when
// present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("STORAGE_DIR", ""); v != "" {
		c.StorageDir = v
	}
	if v := getEnv("FFMPEG_PATH", ""); v != "" {
		c.FFmpegPath = v
	}
	if v := getEnv("FFPROBE_PATH", ""); v != "" {
		c.FFprobePath = v
	}
	if v := getEnv("MAX_UPLOAD_MB", ""); v != "" {
		c.MaxUploadMB = mustParseInt(v)
	}
	if v := getEnv("MAX_BATCH_FILES", ""); v != "" {
		c.MaxBatchFiles = mustParseInt(v)
	}
	if v := getEnv("TRANSCODE_TIMEOUT_SEC", ""); v != "" {
		c.TranscodeTimeoutSec = mustParseInt(v)
	}
	if v := getEnv("TRANSCODE_WORKERS", ""); v != "" {
		c.TranscodeWorkers = mustParseInt(v)
	}
	if v := getEnv("SWEEP_FAILED_SOURCES", ""); v != "" {
		c.SweepFailedSources = v == "true"
	}
	if v := getEnv("SWEEP_AFTER_MINUTES", ""); v != "" {
		c.SweepAfterMinutes = mustParseInt(v)
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("READ_TIMEOUT_SEC", ""); v != "" {
		c.ReadTimeoutSec = mustParseInt(v)
	}
	if v := getEnv("WRITE_TIMEOUT_SEC", ""); v != "" {
		c.WriteTimeoutSec = mustParseInt(v)
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
