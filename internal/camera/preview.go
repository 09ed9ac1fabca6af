package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/media"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/mood"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
)

// State is the preview surface's lifecycle state
type State string

const (
	StateClosed            State = "closed"
	StatePermissionPending State = "permission-pending"
	StateStreaming         State = "streaming"
	StatePaused            State = "paused"
	StateCaptured          State = "captured"
	StateAnalyzing         State = "analyzing"
	StateDenied            State = "denied"
)

// ErrBusy is returned when a transition is requested while another one is
// still in flight.
var ErrBusy = errors.New("camera operation already in progress")

// PredictFunc classifies a captured frame
type PredictFunc func(ctx context.Context, img image.Image) (mood.Result, error)

// PreviewController models the camera surface of the mood check-in. At most
// one stream is ever held; every path out of the surface releases it.
type PreviewController struct {
	source media.VideoSource
	opts   Options
	logger zerolog.Logger

	mu      sync.Mutex
	state   State
	busy    bool
	stream  media.VideoStream
	photo   image.Image
	dataURI string
}

// NewPreviewController creates a controller in the closed state
func NewPreviewController(source media.VideoSource, opts Options) *PreviewController {
	return &PreviewController{
		source: source,
		opts:   opts,
		logger: observability.WithComponent("camera"),
		state:  StateClosed,
	}
}

// State returns the current lifecycle state
func (p *PreviewController) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// beginTransition claims the busy flag if the current state is one of the
// allowed entry states.
func (p *PreviewController) beginTransition(next State, from ...State) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy {
		return ErrBusy
	}
	for _, s := range from {
		if p.state == s {
			p.busy = true
			p.state = next
			return nil
		}
	}
	return fmt.Errorf("cannot transition from state %q", p.state)
}

func (p *PreviewController) endTransition(next State) {
	p.mu.Lock()
	p.busy = false
	p.state = next
	p.mu.Unlock()
}

// Open acquires the camera and starts streaming. Denied or missing hardware
// lands in the denied state; reopening from denied retries the permission
// prompt.
func (p *PreviewController) Open(ctx context.Context) error {
	if err := p.beginTransition(StatePermissionPending, StateClosed, StateDenied); err != nil {
		return err
	}

	stream, err := p.source.Acquire(ctx, media.VideoConstraints{
		Facing: p.opts.Facing,
		Width:  p.opts.Width,
		Height: p.opts.Height,
	})
	if err != nil {
		p.endTransition(StateDenied)
		p.logger.Warn().Err(err).Msg("Camera unavailable")
		return err
	}

	p.mu.Lock()
	p.stream = stream
	p.busy = false
	p.state = StateStreaming
	p.mu.Unlock()

	p.logger.Debug().Str("facing", string(p.opts.Facing)).Msg("Camera streaming")
	return nil
}

// Frame returns the next live preview frame
func (p *PreviewController) Frame(ctx context.Context) (image.Image, error) {
	p.mu.Lock()
	stream := p.stream
	state := p.state
	p.mu.Unlock()

	if state != StateStreaming && state != StatePaused {
		return nil, fmt.Errorf("no live stream in state %q", state)
	}
	return stream.ReadFrame(ctx)
}

// Capture freezes the preview on a still frame. The track is paused, not
// stopped, so Retake can resume without a second permission prompt.
func (p *PreviewController) Capture(ctx context.Context) error {
	if err := p.beginTransition(StateCaptured, StateStreaming); err != nil {
		return err
	}

	frame, err := p.stream.ReadFrame(ctx)
	if err != nil {
		p.endTransition(StateStreaming)
		observability.RecordCapture(false)
		return fmt.Errorf("capturing frame: %w", err)
	}

	if p.opts.Mirror {
		frame = mirrorImage(frame)
	}
	uri, err := encodeFrame(frame, Options{Quality: p.opts.Quality})
	if err != nil {
		p.endTransition(StateStreaming)
		observability.RecordCapture(false)
		return err
	}

	p.mu.Lock()
	p.photo = frame
	p.dataURI = uri
	for _, t := range p.stream.Tracks() {
		t.SetEnabled(false)
	}
	p.busy = false
	p.mu.Unlock()

	observability.RecordCapture(true)
	return nil
}

// Photo returns the captured still and its JPEG data URI
func (p *PreviewController) Photo() (image.Image, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.photo, p.dataURI
}

// Retake discards the captured still and resumes the live preview
func (p *PreviewController) Retake() error {
	if err := p.beginTransition(StateStreaming, StateCaptured); err != nil {
		return err
	}

	p.mu.Lock()
	p.photo = nil
	p.dataURI = ""
	for _, t := range p.stream.Tracks() {
		t.SetEnabled(true)
	}
	p.busy = false
	p.mu.Unlock()
	return nil
}

// Analyze classifies the captured still and returns to the captured state,
// so the user can retake if the reading looks off.
func (p *PreviewController) Analyze(ctx context.Context, predict PredictFunc) (mood.Result, error) {
	if err := p.beginTransition(StateAnalyzing, StateCaptured); err != nil {
		return mood.Result{}, err
	}
	defer p.endTransition(StateCaptured)

	p.mu.Lock()
	photo := p.photo
	p.mu.Unlock()

	if photo == nil {
		return mood.Result{}, errors.New("no captured photo to analyze")
	}
	return predict(ctx, photo)
}

// SetVisible pauses the preview when the surface is hidden and resumes it
// when it comes back. The device stays acquired either way.
func (p *PreviewController) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case !visible && p.state == StateStreaming:
		for _, t := range p.stream.Tracks() {
			t.SetEnabled(false)
		}
		p.state = StatePaused
	case visible && p.state == StatePaused:
		for _, t := range p.stream.Tracks() {
			t.SetEnabled(true)
		}
		p.state = StateStreaming
	}
}

// Close releases the camera from any state
func (p *PreviewController) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		_ = p.stream.Close()
		p.stream = nil
	}
	p.photo = nil
	p.dataURI = ""
	p.busy = false
	p.state = StateClosed
	return nil
}
