package models

import "time"

// Artifact is a published output clip. URL stays valid until the artifact is released.
type Artifact struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	ContentType string     `json:"content_type"`
	Size        int        `json:"size"`
	CreatedAt   time.Time  `json:"created_at"`
	Media       *MediaInfo `json:"media,omitempty"`
}

// FileName is the name used when the artifact is downloaded or exported.
func (a Artifact) FileName() string {
	return a.ID + ".mp4"
}

// MediaInfo is what ffprobe reported about an artifact.
type MediaInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	VideoCodec      string  `json:"video_codec,omitempty"`
	AudioCodec      string  `json:"audio_codec,omitempty"`
}
