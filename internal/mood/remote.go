package mood

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/api"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/resilience"
)

// emotionDetector is the slice of the API client the remote backend needs
type emotionDetector interface {
	DetectEmotion(ctx context.Context, photoBase64 string) (*api.EmotionDetection, error)
}

// remoteBackend delegates classification to the backend FER endpoint. A
// circuit breaker keeps a flapping backend from being called on every
// prediction; while open, Infer fails fast and the client degrades to the
// safe default.
type remoteBackend struct {
	detector emotionDetector
	breaker  *resilience.Breaker
}

// NewRemoteBackend creates a backend that calls POST /api/fer/detect_emotion
func NewRemoteBackend(detector emotionDetector, breaker *resilience.Breaker) Backend {
	return &remoteBackend{detector: detector, breaker: breaker}
}

func (r *remoteBackend) Load(ctx context.Context) error {
	// Nothing to warm up; the model lives server-side.
	return ctx.Err()
}

func (r *remoteBackend) Infer(ctx context.Context, img image.Image) ([]float32, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	photo := base64.StdEncoding.EncodeToString(buf.Bytes())

	var detection *api.EmotionDetection
	err := r.breaker.Call(func() error {
		var callErr error
		detection, callErr = r.detector.DetectEmotion(ctx, photo)
		return callErr
	})
	observability.UpdateCircuitBreakerState(r.breaker.Name(), int(r.breaker.State()))
	if err != nil {
		if err == resilience.ErrOpen {
			return nil, err
		}
		observability.IncrementCircuitBreakerFailures(r.breaker.Name())
		return nil, fmt.Errorf("remote detection: %w", err)
	}

	return expandProbs(detection), nil
}

// expandProbs lays the server's three-way probabilities onto the seven-way
// vector the client maps from. Emotions the server does not score stay zero.
func expandProbs(detection *api.EmotionDetection) []float32 {
	probs := make([]float32, len(Emotions))
	for i, emotion := range Emotions {
		if p, ok := detection.Probs[string(emotion)]; ok {
			probs[i] = float32(p)
		}
	}

	// If the server sent only a bare prediction, trust it fully.
	if detection.Prediction != "" && sum(probs) == 0 {
		for i, emotion := range Emotions {
			if string(emotion) == detection.Prediction {
				probs[i] = 1
			}
		}
	}
	return probs
}

func sum(v []float32) float32 {
	var total float32
	for _, x := range v {
		total += x
	}
	return total
}
