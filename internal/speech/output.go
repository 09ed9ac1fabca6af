// Package speech arbitrates spoken output. Replies can arrive as synthesized
// text or as prerecorded audio from the backend; either way at most one
// utterance plays at a time, and a new one preempts whatever is playing.
package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
)

// maxAudioBytes caps a fetched reply clip
const maxAudioBytes = 10 << 20

// Player renders PCM audio on the output device. Play blocks until the clip
// finishes or Stop cuts it short.
type Player interface {
	Play(ctx context.Context, data []byte) error
	Pause() error
	Resume() error
	Stop() error
	SetVolume(volume float64)
}

// Synthesizer converts reply text into playable audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Config configures the output controller
type Config struct {
	// VoiceHint selects the synthesis voice by name heuristic
	VoiceHint string

	// Volume is the initial output volume, 0.0 to 1.0
	Volume float64

	// Rate is the speaking rate multiplier
	Rate float64
}

// Controller is the single spoken-output channel
type Controller struct {
	player     Player
	synth      Synthesizer
	httpClient *http.Client
	voice      Voice
	rate       float64
	logger     zerolog.Logger

	mu       sync.Mutex
	speaking bool
	gen      uint64
}

// NewController creates an output controller. The voice is picked once from
// the available set using the configured hint.
func NewController(player Player, synth Synthesizer, voices []Voice, cfg Config) *Controller {
	player.SetVolume(clampVolume(cfg.Volume))
	return &Controller{
		player:     player,
		synth:      synth,
		httpClient: &http.Client{},
		voice:      PickVoice(voices, cfg.VoiceHint),
		rate:       cfg.Rate,
		logger:     observability.WithComponent("speech"),
	}
}

// Voice returns the selected synthesis voice
func (c *Controller) Voice() Voice {
	return c.voice
}

// Speak plays one reply, preempting anything already playing. When audioURL
// is set the prerecorded clip is preferred; synthesis is the fallback, so a
// broken clip never silences the reply entirely.
func (c *Controller) Speak(ctx context.Context, text, audioURL string) error {
	c.mu.Lock()
	if c.speaking {
		_ = c.player.Stop()
		observability.RecordSpeechPreempted()
	}
	c.speaking = true
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.gen == gen {
			c.speaking = false
		}
		c.mu.Unlock()
	}()

	var data []byte
	channel := "synthesized"
	if audioURL != "" {
		fetched, err := c.fetchAudio(ctx, audioURL)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to fetch reply audio, falling back to synthesis")
		} else {
			data = fetched
			channel = "remote"
		}
	}

	if data == nil {
		synthesized, err := c.synth.Synthesize(ctx, text, c.voice)
		if err != nil {
			return fmt.Errorf("synthesizing reply: %w", err)
		}
		data = synthesized
	}

	observability.RecordSpeechStart(channel)
	return c.player.Play(ctx, data)
}

// Speaking reports whether an utterance is currently playing
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// Pause suspends playback; a no-op when nothing is playing
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speaking {
		_ = c.player.Pause()
	}
}

// Resume continues paused playback; a no-op when nothing is playing
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speaking {
		_ = c.player.Resume()
	}
}

// Stop cuts the current utterance short; a no-op when nothing is playing
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speaking {
		_ = c.player.Stop()
		c.speaking = false
	}
}

// SetVolume updates the output volume, clamped to [0,1]
func (c *Controller) SetVolume(volume float64) {
	c.player.SetVolume(clampVolume(volume))
}

func (c *Controller) fetchAudio(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating audio request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("reading audio body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("audio fetch returned empty body")
	}
	return data, nil
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
