// Package probe inspects produced clips with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"stillreel/models"
)

// Result is the subset of ffprobe JSON output stillreel reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	PixFmt    string `json:"pix_fmt"`
	Duration  string `json:"duration"`
}

type Format struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// Inspect runs ffprobe against path and decodes the JSON response.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStream returns the first video stream.
func (r Result) VideoStream() (Stream, bool) {
	return r.first("video")
}

func (r Result) AudioStream() (Stream, bool) {
	return r.first("audio")
}

func (r Result) first(codecType string) (Stream, bool) {
	for _, s := range r.Streams {
		if s.CodecType == codecType {
			return s, true
		}
	}
	return Stream{}, false
}

// DurationSeconds prefers the container duration and falls back to the video stream.
func (r Result) DurationSeconds() float64 {
	if d, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64); err == nil {
		return d
	}
	if v, ok := r.VideoStream(); ok {
		if d, err := strconv.ParseFloat(strings.TrimSpace(v.Duration), 64); err == nil {
			return d
		}
	}
	return 0
}

// MediaInfo converts the result to the model attached to artifacts.
func (r Result) MediaInfo() models.MediaInfo {
	info := models.MediaInfo{DurationSeconds: r.DurationSeconds()}
	if v, ok := r.VideoStream(); ok {
		info.Width = v.Width
		info.Height = v.Height
		info.VideoCodec = v.CodecName
	}
	if a, ok := r.AudioStream(); ok {
		info.AudioCodec = a.CodecName
	}
	return info
}

// Inspector probes in-memory clips by spilling them to a temp file.
type Inspector struct {
	Binary string
}

func (i Inspector) InspectBytes(ctx context.Context, data []byte) (models.MediaInfo, error) {
	f, err := os.CreateTemp("", "stillreel-probe-*.mp4")
	if err != nil {
		return models.MediaInfo{}, fmt.Errorf("create probe file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return models.MediaInfo{}, fmt.Errorf("write probe file: %w", err)
	}
	if err := f.Close(); err != nil {
		return models.MediaInfo{}, fmt.Errorf("close probe file: %w", err)
	}

	res, err := Inspect(ctx, i.Binary, f.Name())
	if err != nil {
		return models.MediaInfo{}, err
	}
	return res.MediaInfo(), nil
}
