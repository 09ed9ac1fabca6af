package mood

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/api"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/resilience"
)

type fakeDetector struct {
	detection *api.EmotionDetection
	err       error
	calls     int
}

func (f *fakeDetector) DetectEmotion(ctx context.Context, photoBase64 string) (*api.EmotionDetection, error) {
	f.calls++
	return f.detection, f.err
}

func newTestBreaker(maxFailures int) *resilience.Breaker {
	return resilience.NewBreaker("fer", maxFailures, 30*time.Second)
}

func TestExpandProbs_FullVector(t *testing.T) {
	probs := expandProbs(&api.EmotionDetection{
		Prediction: "happy",
		Probs: map[string]float64{
			"happy":   0.8,
			"neutral": 0.15,
			"sad":     0.05,
		},
	})

	if len(probs) != len(Emotions) {
		t.Fatalf("Expected %d probabilities, got %d", len(Emotions), len(probs))
	}
	if probs[3] != 0.8 {
		t.Errorf("Expected happy=0.8, got %f", probs[3])
	}
	if probs[4] != 0.05 {
		t.Errorf("Expected sad=0.05, got %f", probs[4])
	}
	// Emotions the server does not score stay zero.
	if probs[0] != 0 || probs[1] != 0 || probs[2] != 0 {
		t.Errorf("Expected unscored emotions to be zero, got %v", probs)
	}
}

func TestExpandProbs_BarePrediction(t *testing.T) {
	probs := expandProbs(&api.EmotionDetection{Prediction: "sad"})

	for i, e := range Emotions {
		want := float32(0)
		if e == EmotionSad {
			want = 1
		}
		if probs[i] != want {
			t.Errorf("Index %d (%s): expected %f, got %f", i, e, want, probs[i])
		}
	}
}

func TestRemoteBackend_Infer(t *testing.T) {
	detector := &fakeDetector{
		detection: &api.EmotionDetection{Prediction: "happy", Probs: map[string]float64{"happy": 0.9}},
	}
	backend := NewRemoteBackend(detector, newTestBreaker(3))

	probs, err := backend.Infer(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if probs[3] != 0.9 {
		t.Errorf("Expected happy=0.9, got %f", probs[3])
	}
	if detector.calls != 1 {
		t.Errorf("Expected 1 detector call, got %d", detector.calls)
	}
}

func TestRemoteBackend_BreakerOpensAndFailsFast(t *testing.T) {
	detector := &fakeDetector{err: errors.New("backend down")}
	backend := NewRemoteBackend(detector, newTestBreaker(2))
	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))

	for i := 0; i < 2; i++ {
		if _, err := backend.Infer(context.Background(), frame); err == nil {
			t.Fatalf("Expected error on call %d", i)
		}
	}

	// Breaker is now open; the detector must not be reached.
	callsBefore := detector.calls
	_, err := backend.Infer(context.Background(), frame)
	if !errors.Is(err, resilience.ErrOpen) {
		t.Errorf("Expected ErrOpen, got %v", err)
	}
	if detector.calls != callsBefore {
		t.Errorf("Expected no detector call while open, got %d extra", detector.calls-callsBefore)
	}
}
