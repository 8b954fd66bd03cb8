package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "pix_fmt": "yuv420p", "duration": "10.000000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "duration": "9.98"}
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "10.000000", "size": "48213"}
}`

func writeProbeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")
	if err := os.WriteFile(jsonPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	script := "#!/bin/sh\ncat " + jsonPath + "\n"
	bin := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return bin
}

func TestInspectParsesStreams(t *testing.T) {
	bin := writeProbeStub(t, sampleJSON)

	res, err := Inspect(context.Background(), bin, "/tmp/whatever.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	v, ok := res.VideoStream()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if v.Width != 1920 || v.Height != 1080 || v.PixFmt != "yuv420p" {
		t.Fatalf("unexpected video stream %+v", v)
	}
	if d := res.DurationSeconds(); d != 10 {
		t.Fatalf("DurationSeconds = %v", d)
	}

	info := res.MediaInfo()
	if info.VideoCodec != "h264" || info.AudioCodec != "aac" {
		t.Fatalf("unexpected media info %+v", info)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInspectBadJSON(t *testing.T) {
	bin := writeProbeStub(t, "not json")
	if _, err := Inspect(context.Background(), bin, "/tmp/x.mp4"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	res := Result{Streams: []Stream{{CodecType: "video", Duration: "9.5"}}}
	if d := res.DurationSeconds(); d != 9.5 {
		t.Fatalf("DurationSeconds = %v", d)
	}
	if d := (Result{}).DurationSeconds(); d != 0 {
		t.Fatalf("empty result duration = %v", d)
	}
}

func TestInspectorInspectBytes(t *testing.T) {
	bin := writeProbeStub(t, sampleJSON)

	info, err := Inspector{Binary: bin}.InspectBytes(context.Background(), []byte("fake"))
	if err != nil {
		t.Fatalf("InspectBytes: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 || info.DurationSeconds != 10 {
		t.Fatalf("unexpected info %+v", info)
	}
}
