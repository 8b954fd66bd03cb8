package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"stillreel/utils"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds every runtime setting. Values are resolved in order:
// defaults, TOML file, .env file, STILLREEL_* environment variables.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
	// DataDir is where stillreel stores its pebble databases and lock file.
	DataDir  string `toml:"data_dir"`
	ServeDir string `toml:"serve_dir"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`

	// JWTSecret signs and verifies admin tokens. Admin routes are disabled when empty.
	JWTSecret     string `toml:"jwt_secret"`
	RetentionDays int    `toml:"retention_days"`
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		ListenAddr:    defaultListenAddr,
		DataDir:       defaultDataDir,
		ServeDir:      defaultServeDir,
		LogLevel:      defaultLogLevel,
		FFmpegPath:    defaultFFmpegPath,
		FFprobePath:   defaultFFprobePath,
		RetentionDays: defaultRetentionDays,
	}
}

// Load resolves the configuration. An empty path means "no TOML file"; a path
// that does not exist is an error because the user asked for it explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env only fills variables that are not already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		envListenAddr:  &c.ListenAddr,
		envDataDir:     &c.DataDir,
		envServeDir:    &c.ServeDir,
		envLogLevel:    &c.LogLevel,
		envLogFile:     &c.LogFile,
		envFFmpegPath:  &c.FFmpegPath,
		envFFprobePath: &c.FFprobePath,
		envJWTSecret:   &c.JWTSecret,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv(envRetentionDays); ok {
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", envRetentionDays, err)
		}
		c.RetentionDays = days
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("listen_addr must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir must not be empty")
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		return errors.New("ffmpeg_path must not be empty")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must be >= 0, got %d", c.RetentionDays)
	}
	if c.JWTSecret != "" {
		if err := utils.CheckSecret([]byte(c.JWTSecret)); err != nil {
			return fmt.Errorf("jwt_secret: %w", err)
		}
	}
	return nil
}

// HistoryDBPath returns the path to the run history database.
// Path: {DataDir}/history.db
func (c Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// CredentialsDBPath returns the path to the export credentials database.
// Path: {DataDir}/credentials.db
func (c Config) CredentialsDBPath() string {
	return filepath.Join(c.DataDir, "credentials.db")
}

// LockPath is the advisory lock taken by the server for the data directory.
func (c Config) LockPath() string {
	return filepath.Join(c.DataDir, "stillreel.lock")
}

// AdminEnabled reports whether admin routes can verify tokens.
func (c Config) AdminEnabled() bool {
	return c.JWTSecret != ""
}
