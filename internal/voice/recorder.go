package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/audio"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/media"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
)

// State is the recorder's lifecycle state
type State string

const (
	StateIdle              State = "idle"
	StatePermissionUnknown State = "permission-unknown"
	StateRecording         State = "recording"
	StateProcessing        State = "processing"
)

// Config configures a recorder controller
type Config struct {
	SampleRate int
	FrameSize  int // samples per chunk; zero means 20ms frames

	// LevelThreshold is the RMS floor below which a frame counts as quiet
	LevelThreshold float64

	// SilenceFrames is how many consecutive quiet frames end the utterance
	SilenceFrames int

	// OnLevel receives the smoothed input level (0-100) for each frame
	OnLevel func(level int)

	// OnTranscript receives the full transcript when a session completes
	OnTranscript func(text string)
}

// Controller runs the microphone capture loop and drives the recognizer. One
// button, four states: tapping toggles between idle and recording, and a
// trailing silence ends the utterance on its own.
type Controller struct {
	source media.AudioSource
	rec    Recognizer
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	state    State
	stream   media.AudioStream
	cancel   context.CancelFunc
	pumpDone chan struct{}
	started  time.Time
}

// NewController creates a recorder in the idle state
func NewController(source media.AudioSource, rec Recognizer, cfg Config) *Controller {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = cfg.SampleRate / 50
	}
	return &Controller{
		source: source,
		rec:    rec,
		cfg:    cfg,
		logger: observability.WithComponent("voice"),
		state:  StateIdle,
	}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle starts a recording from idle and finishes one that is in flight
func (c *Controller) Toggle(ctx context.Context) error {
	switch c.State() {
	case StateIdle:
		return c.start(ctx)
	case StateRecording:
		return c.finish(ctx)
	default:
		return fmt.Errorf("cannot toggle in state %q", c.State())
	}
}

func (c *Controller) start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("cannot start in state %q", c.state)
	}
	c.state = StatePermissionUnknown
	c.mu.Unlock()

	stream, err := c.source.Acquire(ctx, media.AudioConstraints{
		SampleRate: c.cfg.SampleRate,
		FrameSize:  c.cfg.FrameSize,
	})
	if err != nil {
		c.setState(StateIdle)
		c.logger.Warn().Err(err).Msg("Microphone unavailable")
		return err
	}

	if err := c.rec.Start(ctx); err != nil {
		_ = stream.Close()
		c.setState(StateIdle)
		return fmt.Errorf("starting recognizer: %w", err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.stream = stream
	c.cancel = cancel
	c.pumpDone = make(chan struct{})
	c.started = time.Now()
	c.state = StateRecording
	done := c.pumpDone
	c.mu.Unlock()

	go c.pump(pumpCtx, stream, done)

	c.logger.Debug().Int("sample_rate", c.cfg.SampleRate).Msg("Recording started")
	return nil
}

// pump reads audio chunks, meters them and feeds the recognizer until the
// session is cancelled or the user stops talking. A ring buffer sits between
// the capture loop and the recognizer feed so a slow network drops the
// oldest audio instead of stalling the microphone.
func (c *Controller) pump(ctx context.Context, stream media.AudioStream, done chan struct{}) {
	defer close(done)

	meter := audio.NewLevelMeter(0)
	silence := audio.NewSilenceDetector(c.cfg.LevelThreshold, c.cfg.SilenceFrames)

	ring := audio.NewSampleRing(c.cfg.SampleRate * 10)
	notify := make(chan struct{}, 1)
	feedCtx, stopFeeder := context.WithCancel(ctx)
	defer stopFeeder()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.feed(feedCtx, ring, notify)
	}()
	defer wg.Wait()

	for {
		if ctx.Err() != nil {
			return
		}

		chunk, err := stream.ReadChunk(ctx)
		if err != nil {
			return
		}

		if c.cfg.OnLevel != nil {
			c.cfg.OnLevel(meter.Process(chunk))
		}

		if dropped := ring.Write(chunk); dropped > 0 {
			c.logger.Warn().Int("samples", dropped).Msg("Recognizer falling behind, dropping oldest audio")
		}
		select {
		case notify <- struct{}{}:
		default:
		}

		if silence.Process(chunk) {
			c.logger.Debug().Msg("Trailing silence, ending utterance")
			go c.finish(context.Background())
			return
		}
	}
}

// feed drains the ring into the recognizer
func (c *Controller) feed(ctx context.Context, ring *audio.SampleRing, notify <-chan struct{}) {
	buf := make([]int16, c.cfg.FrameSize)
	for {
		select {
		case <-ctx.Done():
			// Flush whatever capture got ahead of us.
			for {
				n := ring.Read(buf)
				if n == 0 {
					return
				}
				if err := c.rec.Feed(buf[:n]); err != nil {
					return
				}
			}
		case <-notify:
			for {
				n := ring.Read(buf)
				if n == 0 {
					break
				}
				if err := c.rec.Feed(buf[:n]); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to feed recognizer")
					return
				}
			}
		}
	}
}

// finish transitions recording to processing, drains the session and
// delivers the transcript. Microphone and recognizer are torn down together;
// a live indicator without a session is never acceptable.
func (c *Controller) finish(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return nil
	}
	c.state = StateProcessing
	cancel := c.cancel
	done := c.pumpDone
	stream := c.stream
	started := c.started
	c.mu.Unlock()

	cancel()
	<-done

	transcript, err := c.rec.Stop(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Recognizer stop failed, aborting session")
		_ = c.rec.Abort()
		transcript = ""
	}

	_ = stream.Close()

	c.mu.Lock()
	c.stream = nil
	c.cancel = nil
	c.pumpDone = nil
	c.state = StateIdle
	c.mu.Unlock()

	observability.RecordVoiceSession(err == nil, started)

	if transcript != "" && c.cfg.OnTranscript != nil {
		c.cfg.OnTranscript(transcript)
	}
	return err
}

// Abort discards an in-flight session without delivering a transcript
func (c *Controller) Abort() {
	c.mu.Lock()
	if c.state != StateRecording && c.state != StateProcessing {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.pumpDone
	stream := c.stream
	c.state = StateProcessing
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	_ = c.rec.Abort()
	if stream != nil {
		_ = stream.Close()
	}

	c.mu.Lock()
	c.stream = nil
	c.cancel = nil
	c.pumpDone = nil
	c.state = StateIdle
	c.mu.Unlock()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
