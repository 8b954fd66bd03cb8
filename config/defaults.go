package config

const (
	defaultListenAddr    = "127.0.0.1:8080"
	defaultDataDir       = "./data"
	defaultServeDir      = "./serve"
	defaultLogLevel      = "info"
	defaultFFmpegPath    = "ffmpeg"
	defaultFFprobePath   = "ffprobe"
	defaultRetentionDays = 30
)

const (
	envListenAddr    = "STILLREEL_LISTEN_ADDR"
	envDataDir       = "STILLREEL_DATA_DIR"
	envServeDir      = "STILLREEL_SERVE_DIR"
	envLogLevel      = "STILLREEL_LOG_LEVEL"
	envLogFile       = "STILLREEL_LOG_FILE"
	envFFmpegPath    = "STILLREEL_FFMPEG"
	envFFprobePath   = "STILLREEL_FFPROBE"
	envJWTSecret     = "STILLREEL_JWT_SECRET"
	envRetentionDays = "STILLREEL_RETENTION_DAYS"
)
