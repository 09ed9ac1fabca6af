package media

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
)

// SyntheticVideoSource produces deterministic generated frames. It stands in
// for real camera hardware in the demo binary and in tests.
type SyntheticVideoSource struct {
	// DenyPermission makes Acquire fail with ErrPermissionDenied
	DenyPermission bool
	// NoDevice makes Acquire fail with ErrNoDevice
	NoDevice bool

	mu       sync.Mutex
	acquired int
}

// Acquire opens a synthetic camera stream
func (s *SyntheticVideoSource) Acquire(ctx context.Context, c VideoConstraints) (VideoStream, error) {
	if s.DenyPermission {
		return nil, ErrPermissionDenied
	}
	if s.NoDevice {
		return nil, ErrNoDevice
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.acquired++
	s.mu.Unlock()

	width, height := c.Width, c.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}

	return &syntheticVideoStream{
		width:  width,
		height: height,
		track:  NewTrack("video"),
	}, nil
}

// AcquireCount returns how many streams have been handed out
func (s *SyntheticVideoSource) AcquireCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired
}

type syntheticVideoStream struct {
	width  int
	height int
	track  *Track
	frame  int
}

// ReadFrame renders a gradient with a bright centered oval, a stand-in for a
// face in the selfie view.
func (v *syntheticVideoStream) ReadFrame(ctx context.Context) (image.Image, error) {
	if v.track.Stopped() {
		return nil, ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, v.width, v.height))
	if !v.track.Enabled() {
		// Paused track: black frames.
		return img, nil
	}

	v.frame++
	cx, cy := float64(v.width)/2, float64(v.height)/2
	rx, ry := float64(v.width)/5, float64(v.height)/3.5

	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			// Background gradient with a little per-frame drift.
			g := uint8((x + y + v.frame) % 96)
			c := color.RGBA{R: 40 + g, G: 40 + g, B: 60 + g, A: 255}

			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			if dx*dx+dy*dy < 1 {
				c = color.RGBA{R: 220, G: 190, B: 170, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (v *syntheticVideoStream) Tracks() []*Track {
	return []*Track{v.track}
}

func (v *syntheticVideoStream) Close() error {
	v.track.Stop()
	return nil
}

// SyntheticAudioSource produces a generated tone with noise, standing in for
// microphone hardware.
type SyntheticAudioSource struct {
	DenyPermission bool
	NoDevice       bool

	// Silent makes every chunk all-zero (useful for silence-detection tests)
	Silent bool
}

// Acquire opens a synthetic microphone stream
func (s *SyntheticAudioSource) Acquire(ctx context.Context, c AudioConstraints) (AudioStream, error) {
	if s.DenyPermission {
		return nil, ErrPermissionDenied
	}
	if s.NoDevice {
		return nil, ErrNoDevice
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sampleRate := c.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	frameSize := c.FrameSize
	if frameSize <= 0 {
		frameSize = 320 // 20ms at 16kHz
	}

	return &syntheticAudioStream{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		silent:     s.Silent,
		track:      NewTrack("audio"),
	}, nil
}

type syntheticAudioStream struct {
	sampleRate int
	frameSize  int
	silent     bool
	track      *Track
	phase      float64
}

func (a *syntheticAudioStream) ReadChunk(ctx context.Context) ([]int16, error) {
	if a.track.Stopped() {
		return nil, ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunk := make([]int16, a.frameSize)
	if a.silent || !a.track.Enabled() {
		return chunk, nil
	}

	// 220Hz tone at moderate amplitude.
	step := 2 * math.Pi * 220 / float64(a.sampleRate)
	for i := range chunk {
		a.phase += step
		chunk[i] = int16(6000 * math.Sin(a.phase))
	}
	return chunk, nil
}

func (a *syntheticAudioStream) Tracks() []*Track {
	return []*Track{a.track}
}

func (a *syntheticAudioStream) Close() error {
	a.track.Stop()
	return nil
}
