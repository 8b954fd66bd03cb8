package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stillreel/engine"
	"stillreel/history"
	"stillreel/logger"
	"stillreel/metrics"
	"stillreel/models"

	"github.com/google/uuid"
)

// ArtifactStore publishes clips and releases them when superseded.
type ArtifactStore interface {
	Publish(data []byte, contentType string) (models.Artifact, error)
	Release(id string)
}

// Inspector reads media properties of a produced clip.
type Inspector interface {
	InspectBytes(ctx context.Context, data []byte) (models.MediaInfo, error)
}

// Recorder keeps finished runs for diagnostics.
type Recorder interface {
	Record(rec history.RunRecord) error
}

// Options carries the optional collaborators. Nil fields are skipped.
type Options struct {
	Inspector Inspector
	Recorder  Recorder
	Metrics   *metrics.Metrics
}

// State is a snapshot of the controller for the UI.
type State struct {
	Busy     bool             `json:"busy"`
	Image    models.SlotInfo  `json:"image"`
	Audio    models.SlotInfo  `json:"audio"`
	Artifact *models.Artifact `json:"artifact,omitempty"`
}

// Controller holds the selected inputs and runs at most one conversion at a time.
type Controller struct {
	engine engine.Engine
	store  ArtifactStore
	opts   Options
	job    models.ConversionJob
	now    func() time.Time

	mu        sync.Mutex
	selection models.InputSelection
	busy      bool
	closed    bool
	current   *models.Artifact

	// inflight counts runs that have left the busy check; Close waits on it.
	inflight sync.WaitGroup
}

// New returns an idle controller. The caller owns eng and closes it after Close.
func New(eng engine.Engine, store ArtifactStore, opts Options) *Controller {
	return &Controller{
		engine: eng,
		store:  store,
		opts:   opts,
		job:    models.StillClip,
		now:    time.Now,
	}
}

func (c *Controller) SelectImage(b models.Blob) {
	c.mu.Lock()
	c.selection.Image = models.Present(b)
	c.mu.Unlock()
	logger.Debugf("image selected: %s (%d bytes)", b.Name, b.Size())
}

func (c *Controller) SelectAudio(b models.Blob) {
	c.mu.Lock()
	c.selection.Audio = models.Present(b)
	c.mu.Unlock()
	logger.Debugf("audio selected: %s (%d bytes)", b.Name, b.Size())
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Artifact returns the current artifact, if any.
func (c *Controller) Artifact() (models.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return models.Artifact{}, false
	}
	return *c.current, true
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Busy:  c.busy,
		Image: c.selection.Image.Info(),
		Audio: c.selection.Audio.Info(),
	}
	if c.current != nil {
		a := *c.current
		st.Artifact = &a
	}
	return st
}

// CreateVideo converts the current selection into a clip and publishes it.
// It returns ErrBusy, *MissingInputError or *ConversionError on failure; in every
// failure case the previous artifact stays current. The context is handed to the
// engine as is; callers that must not abort a started run should detach it.
func (c *Controller) CreateVideo(ctx context.Context) (models.Artifact, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Artifact{}, ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		c.opts.Metrics.Rejected("busy")
		logger.Warn("create video rejected: a conversion is already running")
		return models.Artifact{}, ErrBusy
	}
	if missing := c.selection.Missing(); len(missing) > 0 {
		c.mu.Unlock()
		c.opts.Metrics.Rejected("missing_input")
		err := &MissingInputError{Missing: missing}
		logger.Warnf("create video rejected: %v", err)
		return models.Artifact{}, err
	}
	image, _ := c.selection.Image.Get()
	audio, _ := c.selection.Audio.Get()
	c.busy = true
	c.inflight.Add(1)
	c.mu.Unlock()
	defer c.inflight.Done()
	c.opts.Metrics.SetBusy(true)

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
		c.opts.Metrics.SetBusy(false)
	}()

	run := history.RunRecord{
		ID:        uuid.NewString(),
		Image:     models.Present(image).Info(),
		Audio:     models.Present(audio).Info(),
		StartedAt: c.now(),
	}
	logger.Infof("run %s: creating video from %s and %s", run.ID, image.Name, audio.Name)

	artifact, err := c.run(ctx, image, audio)
	run.FinishedAt = c.now()
	took := run.FinishedAt.Sub(run.StartedAt)

	if err != nil {
		var conv *ConversionError
		if errors.As(err, &conv) {
			run.Step = string(conv.Step)
		}
		run.Outcome = history.OutcomeFailed
		run.Error = err.Error()
		logger.Errorf("run %s failed: %v", run.ID, err)
		c.opts.Metrics.RunFinished(string(run.Outcome), run.Step, took)
		c.record(run)
		return models.Artifact{}, err
	}

	c.mu.Lock()
	prev := c.current
	closed := c.closed
	if !closed {
		c.current = &artifact
	}
	c.mu.Unlock()

	if closed {
		c.store.Release(artifact.ID)
		return models.Artifact{}, ErrClosed
	}
	if prev != nil {
		c.store.Release(prev.ID)
	}

	run.Outcome = history.OutcomeSucceeded
	run.ArtifactID = artifact.ID
	run.OutputSize = artifact.Size
	logger.Infof("run %s: published %s (%d bytes) in %s", run.ID, artifact.URL, artifact.Size, took.Round(time.Millisecond))
	c.opts.Metrics.RunFinished(string(run.Outcome), "", took)
	c.record(run)
	return artifact, nil
}

// run executes the engine steps in order and publishes the output.
func (c *Controller) run(ctx context.Context, image, audio models.Blob) (models.Artifact, error) {
	if err := c.engine.Initialize(ctx); err != nil {
		return models.Artifact{}, &ConversionError{Step: StepInitialize, Err: err}
	}
	if err := c.engine.WriteInput(ctx, models.ImageInputName, image.Data); err != nil {
		return models.Artifact{}, &ConversionError{Step: StepWriteImage, Err: err}
	}
	if err := c.engine.WriteInput(ctx, models.AudioInputName, audio.Data); err != nil {
		return models.Artifact{}, &ConversionError{Step: StepWriteAudio, Err: err}
	}
	if err := c.engine.Execute(ctx, c.job.Args()); err != nil {
		return models.Artifact{}, &ConversionError{Step: StepExecute, Err: err}
	}

	data, err := c.engine.ReadOutput(ctx, models.OutputName)
	if err != nil {
		return models.Artifact{}, &ConversionError{Step: StepReadOutput, Err: err}
	}
	if len(data) == 0 {
		return models.Artifact{}, &ConversionError{Step: StepReadOutput, Err: errors.New("engine produced an empty file")}
	}

	media := c.inspect(ctx, data)

	artifact, err := c.store.Publish(data, models.OutputType)
	if err != nil {
		return models.Artifact{}, &ConversionError{Step: StepPublish, Err: err}
	}
	artifact.Media = media
	return artifact, nil
}

// inspect probes the clip when an inspector is configured. Failures only log.
func (c *Controller) inspect(ctx context.Context, data []byte) *models.MediaInfo {
	if c.opts.Inspector == nil {
		return nil
	}
	info, err := c.opts.Inspector.InspectBytes(ctx, data)
	if err != nil {
		logger.Warnf("could not inspect output: %v", err)
		return nil
	}
	if err := c.checkMedia(info); err != nil {
		logger.Warnf("output does not match preset: %v", err)
	}
	return &info
}

func (c *Controller) checkMedia(info models.MediaInfo) error {
	// ffprobe durations are rounded to the nearest packet
	const slack = 0.1
	if info.DurationSeconds > float64(c.job.Duration)+slack {
		return fmt.Errorf("duration %.2fs exceeds %ds", info.DurationSeconds, c.job.Duration)
	}
	if info.Width != c.job.Width || info.Height != c.job.Height {
		return fmt.Errorf("resolution %dx%d, want %dx%d", info.Width, info.Height, c.job.Width, c.job.Height)
	}
	return nil
}

func (c *Controller) record(run history.RunRecord) {
	if c.opts.Recorder == nil {
		return
	}
	if err := c.opts.Recorder.Record(run); err != nil {
		logger.Errorf("failed to record run %s: %v", run.ID, err)
	}
}

// Close waits for a running conversion to finish, then releases the current
// artifact. Later CreateVideo calls return ErrClosed. The engine stays in use
// until Close returns.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.inflight.Wait()

	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()

	if prev != nil {
		c.store.Release(prev.ID)
	}
}
