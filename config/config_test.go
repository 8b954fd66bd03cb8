package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stillreel/utils"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.AdminEnabled() {
		t.Error("admin routes should be disabled without a secret")
	}
	if got, want := cfg.HistoryDBPath(), filepath.Join(defaultDataDir, "history.db"); got != want {
		t.Errorf("HistoryDBPath = %q, want %q", got, want)
	}
}

func TestLoadTOMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "stillreel.toml")
	body := `
listen_addr = "0.0.0.0:9000"
data_dir = "/var/lib/stillreel"
ffmpeg_path = "/opt/ffmpeg/bin/ffmpeg"
retention_days = 7
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envListenAddr, "127.0.0.1:9100")
	t.Setenv(envJWTSecret, "a-long-enough-admin-secret-for-hs256")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9100" {
		t.Errorf("env should override file, got %q", cfg.ListenAddr)
	}
	if cfg.DataDir != "/var/lib/stillreel" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d", cfg.RetentionDays)
	}
	if !cfg.AdminEnabled() {
		t.Error("expected admin routes to be enabled")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STILLREEL_FFPROBE=/usr/local/bin/ffprobe\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(envFFprobePath) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FFprobePath != "/usr/local/bin/ffprobe" {
		t.Errorf("FFprobePath = %q", cfg.FFprobePath)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv(envRetentionDays, "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric retention")
	}

	t.Setenv(envRetentionDays, "-1")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for negative retention")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envJWTSecret, "my-admin-secret-1234")

	_, err := Load("")
	if !errors.Is(err, utils.ErrSecretTooShort) {
		t.Fatalf("Load err = %v, want ErrSecretTooShort", err)
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("error should name the setting: %v", err)
	}

	t.Setenv(envJWTSecret, strings.Repeat("k", utils.MinSecretBytes))
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with %d-byte secret: %v", utils.MinSecretBytes, err)
	}
	if !cfg.AdminEnabled() {
		t.Error("admin routes should be enabled")
	}
}
