package camera

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/media"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/mood"
)

func TestCaptureOneShot_Success(t *testing.T) {
	source := &media.SyntheticVideoSource{}

	uri, err := CaptureOneShot(context.Background(), source, Options{
		Facing: media.FacingUser,
		Width:  64,
		Height: 48,
		Mirror: true,
	})
	if err != nil {
		t.Fatalf("CaptureOneShot failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("Expected JPEG data URI, got %q", uri[:min(len(uri), 40)])
	}
	if source.AcquireCount() != 1 {
		t.Errorf("Expected 1 acquire, got %d", source.AcquireCount())
	}
}

func TestCaptureOneShot_PermissionDenied(t *testing.T) {
	source := &media.SyntheticVideoSource{DenyPermission: true}

	_, err := CaptureOneShot(context.Background(), source, Options{})
	if !errors.Is(err, media.ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied, got %v", err)
	}
}

func TestCaptureOneShot_ReleasesDevice(t *testing.T) {
	source := &media.SyntheticVideoSource{}
	ctx := context.Background()

	if _, err := CaptureOneShot(ctx, source, Options{Width: 32, Height: 32}); err != nil {
		t.Fatalf("CaptureOneShot failed: %v", err)
	}

	// A fresh acquire must succeed; the previous stream did not hold the device.
	stream, err := source.Acquire(ctx, media.VideoConstraints{Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("Re-acquire failed: %v", err)
	}
	stream.Close()
}

func TestPreview_Lifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewPreviewController(&media.SyntheticVideoSource{}, Options{Width: 64, Height: 48})

	if p.State() != StateClosed {
		t.Fatalf("Expected closed, got %q", p.State())
	}

	if err := p.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if p.State() != StateStreaming {
		t.Fatalf("Expected streaming, got %q", p.State())
	}

	if _, err := p.Frame(ctx); err != nil {
		t.Errorf("Frame failed while streaming: %v", err)
	}

	if err := p.Capture(ctx); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if p.State() != StateCaptured {
		t.Fatalf("Expected captured, got %q", p.State())
	}
	photo, uri := p.Photo()
	if photo == nil {
		t.Error("Expected a captured photo")
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("Expected JPEG data URI, got %q", uri[:min(len(uri), 40)])
	}

	if err := p.Retake(); err != nil {
		t.Fatalf("Retake failed: %v", err)
	}
	if p.State() != StateStreaming {
		t.Fatalf("Expected streaming after retake, got %q", p.State())
	}
	if photo, _ := p.Photo(); photo != nil {
		t.Error("Expected photo discarded after retake")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if p.State() != StateClosed {
		t.Errorf("Expected closed, got %q", p.State())
	}
}

func TestPreview_DeniedAndRetry(t *testing.T) {
	ctx := context.Background()
	source := &media.SyntheticVideoSource{DenyPermission: true}
	p := NewPreviewController(source, Options{})

	if err := p.Open(ctx); !errors.Is(err, media.ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied, got %v", err)
	}
	if p.State() != StateDenied {
		t.Fatalf("Expected denied, got %q", p.State())
	}

	// The user grants permission and retries.
	source.DenyPermission = false
	if err := p.Open(ctx); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if p.State() != StateStreaming {
		t.Errorf("Expected streaming after retry, got %q", p.State())
	}
	p.Close()
}

func TestPreview_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	p := NewPreviewController(&media.SyntheticVideoSource{}, Options{})

	if err := p.Capture(ctx); err == nil {
		t.Error("Expected capture from closed to fail")
	}
	if err := p.Retake(); err == nil {
		t.Error("Expected retake from closed to fail")
	}

	if err := p.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()

	if err := p.Retake(); err == nil {
		t.Error("Expected retake while streaming to fail")
	}
}

func TestPreview_VisibilityPausesTracks(t *testing.T) {
	ctx := context.Background()
	p := NewPreviewController(&media.SyntheticVideoSource{}, Options{Width: 32, Height: 32})
	if err := p.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()

	p.SetVisible(false)
	if p.State() != StatePaused {
		t.Fatalf("Expected paused, got %q", p.State())
	}
	frame, err := p.Frame(ctx)
	if err != nil {
		t.Fatalf("Frame failed while paused: %v", err)
	}
	if !isBlack(frame) {
		t.Error("Expected black frames while paused")
	}

	p.SetVisible(true)
	if p.State() != StateStreaming {
		t.Fatalf("Expected streaming after resume, got %q", p.State())
	}
	frame, err = p.Frame(ctx)
	if err != nil {
		t.Fatalf("Frame failed after resume: %v", err)
	}
	if isBlack(frame) {
		t.Error("Expected live frames after resume")
	}
}

func TestPreview_Analyze(t *testing.T) {
	ctx := context.Background()
	p := NewPreviewController(&media.SyntheticVideoSource{}, Options{Width: 48, Height: 48})
	if err := p.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()
	if err := p.Capture(ctx); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	result, err := p.Analyze(ctx, func(ctx context.Context, img image.Image) (mood.Result, error) {
		if img == nil {
			t.Fatal("Analyze passed a nil image")
		}
		return mood.Result{Label: mood.Calm, Confidence: 0.9}, nil
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Label != mood.Calm {
		t.Errorf("Expected calm, got %q", result.Label)
	}
	if p.State() != StateCaptured {
		t.Errorf("Expected captured after analyze, got %q", p.State())
	}
}

func TestMirrorImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Pix[0] = 255 // left pixel red

	mirrored := mirrorImage(src).(*image.RGBA)
	r, _, _, _ := mirrored.At(1, 0).RGBA()
	if r == 0 {
		t.Error("Expected red pixel mirrored to the right")
	}
	r, _, _, _ = mirrored.At(0, 0).RGBA()
	if r != 0 {
		t.Error("Expected left pixel cleared after mirroring")
	}
}

func isBlack(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 4 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 4 {
			r, g, b, _ := img.At(x, y).RGBA()
			if r != 0 || g != 0 || b != 0 {
				return false
			}
		}
	}
	return true
}
