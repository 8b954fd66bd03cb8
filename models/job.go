package models

import "fmt"

// Fixed names inside the engine's private workspace.
const (
	ImageInputName = "image.png"
	AudioInputName = "sound.mp3"
	OutputName     = "output.mp4"
	OutputType     = "video/mp4"
)

// ConversionJob is the fixed encoding preset applied to every run.
type ConversionJob struct {
	Framerate   string // input framerate of the still image
	VideoCodec  string
	Duration    int // seconds
	PixelFormat string
	Width       int
	Height      int
}

// StillClip is the only preset: one frame every ten seconds, ten seconds long, 1080p H.264.
var StillClip = ConversionJob{
	Framerate:   "1/10",
	VideoCodec:  "libx264",
	Duration:    10,
	PixelFormat: "yuv420p",
	Width:       1920,
	Height:      1080,
}

// Args returns the engine argument list for this job.
func (j ConversionJob) Args() []string {
	return []string{
		"-framerate", j.Framerate,
		"-i", ImageInputName,
		"-i", AudioInputName,
		"-c:v", j.VideoCodec,
		"-t", fmt.Sprint(j.Duration),
		"-pix_fmt", j.PixelFormat,
		"-vf", fmt.Sprintf("scale=%d:%d", j.Width, j.Height),
		OutputName,
	}
}
