package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Step names a stage of a conversion. It labels errors, history and metrics.
type Step string

const (
	StepInitialize Step = "initialize"
	StepWriteImage Step = "write image"
	StepWriteAudio Step = "write audio"
	StepExecute    Step = "execute"
	StepReadOutput Step = "read output"
	StepPublish    Step = "publish"
)

var (
	// ErrBusy is returned when CreateVideo is called while a conversion runs.
	ErrBusy = errors.New("a video is already being created")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("controller is closed")
)

// MissingInputError reports empty input slots at invocation time.
type MissingInputError struct {
	Missing []string // "image", "audio"
}

func (e *MissingInputError) Error() string {
	return "missing input: " + strings.Join(e.Missing, ", ")
}

func (e *MissingInputError) UserMessage() string {
	return "Please upload both an image and a sound file!"
}

// ConversionError wraps a failure from the engine or from publishing the result.
type ConversionError struct {
	Step Step
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed at %s: %v", e.Step, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// UserMessage is safe to show in the page. It names the stage, never the cause.
func (e *ConversionError) UserMessage() string {
	const base = "An error occurred while creating the video"
	switch e.Step {
	case StepInitialize:
		return base + ": the encoder could not be started."
	case StepWriteImage, StepWriteAudio:
		return base + ": the selected files could not be handed to the encoder."
	case StepExecute:
		return base + ": encoding failed. Check that the files are a valid image and audio track."
	case StepReadOutput, StepPublish:
		return base + ": the encoded clip could not be retrieved."
	default:
		return base + "."
	}
}

// UserMessage returns the page-safe message for any error CreateVideo returns.
func UserMessage(err error) string {
	var missing *MissingInputError
	var conv *ConversionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missing):
		return missing.UserMessage()
	case errors.As(err, &conv):
		return conv.UserMessage()
	case errors.Is(err, ErrBusy):
		return "A video is already being created. Please wait."
	default:
		return "An error occurred while creating the video."
	}
}
