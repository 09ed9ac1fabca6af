// Package media abstracts hardware capture devices behind capability
// interfaces so the camera and voice state machines can be driven by fakes
// in tests and by synthetic devices in the demo binary.
package media

import (
	"context"
	"errors"
	"image"
	"sync"
)

var (
	// ErrPermissionDenied indicates the user (or platform) refused device access
	ErrPermissionDenied = errors.New("device permission denied")

	// ErrNoDevice indicates no matching capture device exists
	ErrNoDevice = errors.New("no capture device available")

	// ErrStreamClosed indicates a read on a closed stream
	ErrStreamClosed = errors.New("stream is closed")

	// ErrUnsupported indicates the platform lacks the capability entirely
	ErrUnsupported = errors.New("capability not supported")
)

// Facing selects which camera to acquire
type Facing string

const (
	FacingUser        Facing = "user" // selfie camera
	FacingEnvironment Facing = "environment"
)

// VideoConstraints describe the requested camera stream
type VideoConstraints struct {
	Facing Facing
	Width  int
	Height int
}

// AudioConstraints describe the requested microphone stream
type AudioConstraints struct {
	SampleRate int // Hz, mono 16-bit PCM
	FrameSize  int // samples per ReadChunk
}

// Track is a single hardware track within a stream. Disabling a track pauses
// it without releasing the device; stopping it releases the hardware.
type Track struct {
	mu      sync.Mutex
	kind    string
	enabled bool
	stopped bool
}

// NewTrack creates an enabled, running track of the given kind
func NewTrack(kind string) *Track {
	return &Track{kind: kind, enabled: true}
}

// Kind returns "video" or "audio"
func (t *Track) Kind() string {
	return t.kind
}

// Enabled reports whether the track is producing live data
func (t *Track) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled && !t.stopped
}

// SetEnabled pauses or resumes the track without releasing hardware
func (t *Track) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.enabled = enabled
	}
}

// Stop releases the track's hardware. Stopped tracks cannot be re-enabled.
func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.enabled = false
}

// Stopped reports whether the track has been released
func (t *Track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// VideoStream is an open camera stream
type VideoStream interface {
	// ReadFrame returns the next frame. Frames from a disabled (paused)
	// track are black; reads on a closed stream fail with ErrStreamClosed.
	ReadFrame(ctx context.Context) (image.Image, error)

	// Tracks returns the underlying hardware tracks
	Tracks() []*Track

	// Close stops all tracks and releases the device
	Close() error
}

// AudioStream is an open microphone stream
type AudioStream interface {
	// ReadChunk returns the next frame of mono PCM samples. Chunks from a
	// disabled track are silence; reads on a closed stream fail with
	// ErrStreamClosed.
	ReadChunk(ctx context.Context) ([]int16, error)

	Tracks() []*Track
	Close() error
}

// VideoSource grants access to camera hardware
type VideoSource interface {
	Acquire(ctx context.Context, c VideoConstraints) (VideoStream, error)
}

// AudioSource grants access to microphone hardware
type AudioSource interface {
	Acquire(ctx context.Context, c AudioConstraints) (AudioStream, error)
}
