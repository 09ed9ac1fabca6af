// Package camera drives the selfie capture flow: a one-shot snapshot helper
// for the quick mood check-in, and a preview controller that models the
// longer-lived camera surface with pause, retake and analyze transitions.
package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/media"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
)

// Options configure a capture
type Options struct {
	Facing media.Facing
	Width  int
	Height int

	// Mirror flips the frame horizontally, matching what the user sees in a
	// selfie preview.
	Mirror bool

	// Quality is the JPEG quality (1-100); zero means a sensible default
	Quality int
}

const defaultQuality = 85

// CaptureOneShot acquires the camera, grabs a single frame and releases the
// hardware. The device is released on every path, including errors; a
// lingering camera indicator after a failed capture is never acceptable.
func CaptureOneShot(ctx context.Context, source media.VideoSource, opts Options) (string, error) {
	stream, err := source.Acquire(ctx, media.VideoConstraints{
		Facing: opts.Facing,
		Width:  opts.Width,
		Height: opts.Height,
	})
	if err != nil {
		observability.RecordCapture(false)
		return "", fmt.Errorf("acquiring camera: %w", err)
	}
	defer stream.Close()

	frame, err := stream.ReadFrame(ctx)
	if err != nil {
		observability.RecordCapture(false)
		return "", fmt.Errorf("reading frame: %w", err)
	}

	uri, err := encodeFrame(frame, opts)
	if err != nil {
		observability.RecordCapture(false)
		return "", err
	}

	observability.RecordCapture(true)
	return uri, nil
}

// encodeFrame renders a frame as a JPEG data URI, mirroring first when asked
func encodeFrame(frame image.Image, opts Options) (string, error) {
	if opts.Mirror {
		frame = mirrorImage(frame)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encoding frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// mirrorImage flips an image horizontally
func mirrorImage(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.X-1-(x-bounds.Min.X), y, src.At(x, y))
		}
	}
	return dst
}
