package media

import (
	"context"
	"testing"
)

func TestTrack_Lifecycle(t *testing.T) {
	track := NewTrack("video")

	if !track.Enabled() {
		t.Error("Expected new track to be enabled")
	}

	track.SetEnabled(false)
	if track.Enabled() {
		t.Error("Expected disabled track to report not enabled")
	}
	if track.Stopped() {
		t.Error("Disabling must not stop the track")
	}

	track.SetEnabled(true)
	if !track.Enabled() {
		t.Error("Expected re-enabled track to report enabled")
	}

	track.Stop()
	if !track.Stopped() {
		t.Error("Expected stopped track to report stopped")
	}

	// Stopped tracks cannot come back.
	track.SetEnabled(true)
	if track.Enabled() {
		t.Error("Stopped track must not be re-enabled")
	}
}

func TestSyntheticVideoSource_Acquire(t *testing.T) {
	src := &SyntheticVideoSource{}

	stream, err := src.Acquire(context.Background(), VideoConstraints{Width: 64, Height: 48})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer stream.Close()

	frame, err := stream.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	bounds := frame.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Errorf("Expected 64x48 frame, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	if src.AcquireCount() != 1 {
		t.Errorf("Expected 1 acquisition, got %d", src.AcquireCount())
	}
}

func TestSyntheticVideoSource_PermissionDenied(t *testing.T) {
	src := &SyntheticVideoSource{DenyPermission: true}

	if _, err := src.Acquire(context.Background(), VideoConstraints{}); err != ErrPermissionDenied {
		t.Errorf("Expected ErrPermissionDenied, got %v", err)
	}
}

func TestSyntheticVideoStream_ClosedRead(t *testing.T) {
	src := &SyntheticVideoSource{}
	stream, err := src.Acquire(context.Background(), VideoConstraints{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	stream.Close()

	if _, err := stream.ReadFrame(context.Background()); err != ErrStreamClosed {
		t.Errorf("Expected ErrStreamClosed, got %v", err)
	}
	for _, track := range stream.Tracks() {
		if !track.Stopped() {
			t.Error("Expected all tracks stopped after Close")
		}
	}
}

func TestSyntheticAudioStream_Chunks(t *testing.T) {
	src := &SyntheticAudioSource{}
	stream, err := src.Acquire(context.Background(), AudioConstraints{SampleRate: 16000, FrameSize: 320})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer stream.Close()

	chunk, err := stream.ReadChunk(context.Background())
	if err != nil {
		t.Fatalf("ReadChunk failed: %v", err)
	}
	if len(chunk) != 320 {
		t.Errorf("Expected 320 samples, got %d", len(chunk))
	}

	var nonZero bool
	for _, s := range chunk {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("Expected tone samples, got silence")
	}
}

func TestSyntheticAudioStream_PausedIsSilent(t *testing.T) {
	src := &SyntheticAudioSource{}
	stream, err := src.Acquire(context.Background(), AudioConstraints{FrameSize: 160})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer stream.Close()

	stream.Tracks()[0].SetEnabled(false)

	chunk, err := stream.ReadChunk(context.Background())
	if err != nil {
		t.Fatalf("ReadChunk failed: %v", err)
	}
	for _, s := range chunk {
		if s != 0 {
			t.Fatal("Expected silence from a paused track")
		}
	}
}
