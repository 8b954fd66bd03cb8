package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"stillreel/logger"
)

// Flags prepended to every Execute call. -y lets a later run replace output.mp4.
var globalArgs = []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}

// FFmpeg runs a local ffmpeg binary against a private temp workspace.
type FFmpeg struct {
	binary string

	mu      sync.Mutex
	path    string
	version string
	workDir string
}

func NewFFmpeg(binary string) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary}
}

// Initialize resolves the binary, checks that it runs and creates the workspace.
// Later calls are no-ops; a failed call can be retried.
func (f *FFmpeg) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.workDir != "" {
		return nil
	}

	path, err := exec.LookPath(f.binary)
	if err != nil {
		return fmt.Errorf("ffmpeg binary %q not found: %w", f.binary, err)
	}

	out, err := exec.CommandContext(ctx, path, "-hide_banner", "-version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg -version: %w: %s", err, strings.TrimSpace(string(out)))
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")

	dir, err := os.MkdirTemp("", "stillreel-engine-*")
	if err != nil {
		return fmt.Errorf("create engine workspace: %w", err)
	}

	f.path = path
	f.version = version
	f.workDir = dir
	logger.Infof("engine ready: %s (workspace %s)", version, dir)
	return nil
}

// Version returns the first line of `ffmpeg -version`, empty before Initialize.
func (f *FFmpeg) Version() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}

func (f *FFmpeg) WriteInput(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.resolve(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	logger.Debugf("engine: wrote %s (%d bytes)", name, len(data))
	return nil
}

func (f *FFmpeg) Execute(ctx context.Context, args []string) error {
	f.mu.Lock()
	path, dir := f.path, f.workDir
	f.mu.Unlock()
	if dir == "" {
		return ErrNotInitialized
	}

	cmd := exec.CommandContext(ctx, path, append(append([]string{}, globalArgs...), args...)...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debugf("engine: ffmpeg %s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLines(stderr.String(), 5))
	}
	return nil
}

func (f *FFmpeg) ReadOutput(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Close removes the workspace. The engine can be initialized again afterwards.
func (f *FFmpeg) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.workDir == "" {
		return nil
	}
	err := os.RemoveAll(f.workDir)
	f.workDir = ""
	if err != nil {
		return fmt.Errorf("remove engine workspace: %w", err)
	}
	return nil
}

// resolve maps a workspace name to a path, rejecting anything that is not a plain file name.
func (f *FFmpeg) resolve(name string) (string, error) {
	f.mu.Lock()
	dir := f.workDir
	f.mu.Unlock()
	if dir == "" {
		return "", ErrNotInitialized
	}
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(dir, name), nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}
