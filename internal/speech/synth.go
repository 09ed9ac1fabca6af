package speech

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/audio"
)

// toneSynthesizer is the built-in fallback voice: it renders each reply as a
// soft tone whose duration tracks the text length, so playback timing and
// preemption behave like real speech without an external engine.
type toneSynthesizer struct {
	sampleRate int
}

// NewToneSynthesizer creates the built-in synthesizer
func NewToneSynthesizer(sampleRate int) Synthesizer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &toneSynthesizer{sampleRate: sampleRate}
}

// wordsPerSecond approximates a calm speaking pace
const wordsPerSecond = 2.5

func (s *toneSynthesizer) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := 1
	for _, r := range text {
		if r == ' ' {
			words++
		}
	}

	// Render at the engine's native rate, then resample to the output rate.
	const renderRate = 24000
	n := int(float64(renderRate) * float64(words) / wordsPerSecond)
	if n < renderRate/10 {
		n = renderRate / 10
	}

	samples := make([]int16, n)
	step := 2 * math.Pi * 196 / float64(renderRate)
	for i := range samples {
		// Fade in and out to avoid clicks.
		envelope := math.Min(1, math.Min(float64(i), float64(n-i))/float64(renderRate/50))
		samples[i] = int16(3000 * envelope * math.Sin(float64(i)*step))
	}

	if s.sampleRate != renderRate {
		samples = audio.Resample(samples, renderRate, s.sampleRate)
	}
	return audio.SamplesToBytes(samples), nil
}

// TimedPlayer simulates an output device: Play blocks for the clip's real
// duration and Stop cuts it short. It backs the demo binary and keeps the
// arbitration paths honest in tests.
type TimedPlayer struct {
	sampleRate int

	mu     sync.Mutex
	stop   chan struct{}
	pause  chan struct{}
	volume float64
}

// NewTimedPlayer creates a player for 16-bit mono PCM at the given rate
func NewTimedPlayer(sampleRate int) *TimedPlayer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &TimedPlayer{sampleRate: sampleRate, volume: 1}
}

func (p *TimedPlayer) Play(ctx context.Context, data []byte) error {
	p.mu.Lock()
	if p.stop != nil {
		close(p.stop)
	}
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	duration := time.Duration(len(data)/2) * time.Second / time.Duration(p.sampleRate)
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-stop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *TimedPlayer) Pause() error  { return nil }
func (p *TimedPlayer) Resume() error { return nil }

func (p *TimedPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	return nil
}

func (p *TimedPlayer) SetVolume(volume float64) {
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
}

// Volume returns the current output volume
func (p *TimedPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}
