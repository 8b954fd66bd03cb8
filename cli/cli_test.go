package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"stillreel/history"
	"stillreel/models"
	"stillreel/utils"
)

const stubFFmpeg = `#!/bin/sh
for a in "$@"; do
  if [ "$a" = "-version" ]; then echo "ffmpeg version 6.1-stub"; exit 0; fi
done
for last; do :; done
printf 'fake-mp4' > "$last"
`

const cliSecret = "cli-secret-long-enough-for-hs256-signing"

func writeStub(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(stubFFmpeg), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// isolate points every config path into a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STILLREEL_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("STILLREEL_FFPROBE", "")
	t.Setenv("STILLREEL_JWT_SECRET", "")
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCreateWritesOutput(t *testing.T) {
	dir := isolate(t)
	t.Setenv("STILLREEL_FFMPEG", writeStub(t))

	image := filepath.Join(dir, "cover.png")
	audio := filepath.Join(dir, "song.mp3")
	out := filepath.Join(dir, "clip.mp4")
	os.WriteFile(image, []byte("png"), 0o644)
	os.WriteFile(audio, []byte("mp3"), 0o644)

	stdout, err := runCommand(t, "create", "--image", image, "--audio", audio, "--out", out)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "fake-mp4" {
		t.Fatalf("output file: %q %v", data, err)
	}
	if !strings.Contains(stdout, "Wrote "+out) {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestCreateRequiresBothInputs(t *testing.T) {
	dir := isolate(t)
	t.Setenv("STILLREEL_FFMPEG", writeStub(t))
	image := filepath.Join(dir, "cover.png")
	os.WriteFile(image, []byte("png"), 0o644)

	_, err := runCommand(t, "create", "--image", image, "--out", filepath.Join(dir, "clip.mp4"))
	if err == nil || !strings.Contains(err.Error(), "Please upload both an image and a sound file!") {
		t.Fatalf("expected missing input error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "clip.mp4")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("no output should be written on failure")
	}
}

func TestRunsRendersHistory(t *testing.T) {
	dir := isolate(t)
	dataDir := filepath.Join(dir, "data")
	os.MkdirAll(dataDir, 0o755)

	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	started := time.Now().Add(-time.Minute)
	store.Record(history.RunRecord{
		ID:         "run-ok",
		Outcome:    history.OutcomeSucceeded,
		Image:      models.SlotInfo{Selected: true, Name: "cover.png"},
		Audio:      models.SlotInfo{Selected: true, Name: "song.mp3"},
		OutputSize: 2048,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	})
	store.Record(history.RunRecord{
		ID:         "run-bad",
		Outcome:    history.OutcomeFailed,
		Step:       "execute",
		StartedAt:  started.Add(time.Second),
		FinishedAt: started.Add(2 * time.Second),
	})
	store.Close()

	stdout, err := runCommand(t, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	for _, want := range []string{"run-ok", "run-bad", "cover.png", "execute", "2048"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table missing %q:\n%s", want, stdout)
		}
	}
	if strings.Index(stdout, "run-bad") > strings.Index(stdout, "run-ok") {
		t.Error("expected newest run first")
	}

	stdout, err = runCommand(t, "runs", "--json", "-n", "1")
	if err != nil {
		t.Fatalf("runs --json: %v", err)
	}
	if !strings.Contains(stdout, `"id": "run-bad"`) || strings.Contains(stdout, "run-ok") {
		t.Errorf("unexpected json output:\n%s", stdout)
	}
}

func TestCheckReportsMissingBinary(t *testing.T) {
	isolate(t)
	t.Setenv("STILLREEL_FFMPEG", "definitely-not-ffmpeg-binary")

	stdout, err := runCommand(t, "check")
	if err == nil {
		t.Fatal("expected error for missing ffmpeg")
	}
	if !strings.Contains(stdout, "missing") || !strings.Contains(stdout, "definitely-not-ffmpeg-binary") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestCheckPassesWithStub(t *testing.T) {
	isolate(t)
	t.Setenv("STILLREEL_FFMPEG", writeStub(t))

	stdout, err := runCommand(t, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "missing (optional)") {
		t.Errorf("ffprobe should be reported as optional:\n%s", stdout)
	}
}

func TestTokenVerifies(t *testing.T) {
	isolate(t)
	t.Setenv("STILLREEL_JWT_SECRET", cliSecret)

	stdout, err := runCommand(t, "token", "--subject", "ops", "--scope", "runs", "--scope", "export", "--ttl", "1h")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	claims, err := utils.VerifyAdminJWT(strings.TrimSpace(stdout), utils.VerifyConfig{SecretKey: []byte(cliSecret)})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "ops" || !claims.HasScope("export") || claims.HasScope("credentials") {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	isolate(t)
	if _, err := runCommand(t, "token"); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestTokenRejectsShortSecret(t *testing.T) {
	isolate(t)
	t.Setenv("STILLREEL_JWT_SECRET", "my-admin-secret-1234")

	stdout, err := runCommand(t, "token")
	if !errors.Is(err, utils.ErrSecretTooShort) {
		t.Fatalf("err = %v, want ErrSecretTooShort", err)
	}
	if stdout != "" {
		t.Errorf("no token should be printed, got %q", stdout)
	}
}

type countingCleaner struct {
	mu    sync.Mutex
	calls int
	age   time.Duration
}

func (c *countingCleaner) CleanupOlderThan(maxAge time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.age = maxAge
	return 3, nil
}

func TestCleanupRoutineRunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &countingCleaner{}

	done := make(chan struct{})
	go func() {
		cleanupRoutine(ctx, c, 48*time.Hour)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		calls := c.calls
		c.mu.Unlock()
		if calls > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cleanup did not run at start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if c.age != 48*time.Hour {
		t.Errorf("cleanup age = %v", c.age)
	}
}

func TestCleanupRoutineDisabled(t *testing.T) {
	c := &countingCleaner{}
	cleanupRoutine(context.Background(), c, 0)
	if c.calls != 0 {
		t.Errorf("expected no cleanup with zero retention, got %d calls", c.calls)
	}
}

// blockingCleaner holds CleanupOlderThan until unblock is closed.
type blockingCleaner struct {
	entered chan struct{}
	unblock chan struct{}
	once    sync.Once
}

func (b *blockingCleaner) CleanupOlderThan(maxAge time.Duration) (int, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.unblock
	return 0, nil
}

func TestStopCleanupWaitsForRoutine(t *testing.T) {
	b := &blockingCleaner{entered: make(chan struct{}), unblock: make(chan struct{})}
	stop := startCleanup(context.Background(), b, time.Hour)
	<-b.entered

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a cleanup was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(b.unblock)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return after the cleanup finished")
	}
}
