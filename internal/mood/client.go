package mood

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
)

// ErrNotLoaded is returned by Predict when Load has not completed
var ErrNotLoaded = errors.New("mood model not loaded")

// Result is one mood prediction: a label from the four-way enumeration and
// a confidence in [0,1]. Produced per capture, consumed by one message send,
// never persisted.
type Result struct {
	Label      Label
	Confidence float64
}

// DefaultResult is the safe fallback used whenever inference misbehaves.
// Mood is an enrichment signal, never a blocking dependency.
var DefaultResult = Result{Label: Neutral, Confidence: 0.5}

// Client wraps an inference Backend with the load/predict contract and the
// failure-degradation policy.
type Client struct {
	backend Backend
	logger  zerolog.Logger

	mu      sync.Mutex
	loaded  bool
	loading chan struct{} // non-nil while a Load is in flight
}

// NewClient creates a mood client over the given backend
func NewClient(backend Backend) *Client {
	return &Client{
		backend: backend,
		logger:  observability.WithComponent("mood"),
	}
}

// Load idempotently initializes the inference backend. Concurrent calls
// share one initialization; callers arriving while a load is in flight wait
// for it.
func (c *Client) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	if c.loading != nil {
		waitCh := c.loading
		c.mu.Unlock()
		select {
		case <-waitCh:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.loaded {
			return nil
		}
		return errors.New("mood model load failed")
	}

	done := make(chan struct{})
	c.loading = done
	c.mu.Unlock()

	err := c.backend.Load(ctx)

	c.mu.Lock()
	c.loading = nil
	if err == nil {
		c.loaded = true
	}
	c.mu.Unlock()
	close(done)

	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to load mood model")
		return err
	}
	c.logger.Info().Msg("Mood model loaded")
	return nil
}

// Loaded reports whether Load has completed successfully
func (c *Client) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Predict classifies a frame. Any internal failure (backend error, wrong
// vector length) degrades to DefaultResult rather than propagating; the only
// error Predict itself returns is ErrNotLoaded.
func (c *Client) Predict(ctx context.Context, img image.Image) (Result, error) {
	if !c.Loaded() {
		return Result{}, ErrNotLoaded
	}

	start := time.Now()

	probs, err := c.backend.Infer(ctx, img)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Inference failed, degrading to neutral")
		observability.RecordMoodPrediction(string(DefaultResult.Label), true, start)
		return DefaultResult, nil
	}

	if len(probs) != len(Emotions) {
		c.logger.Debug().Int("len", len(probs)).Msg("Malformed probability vector, degrading to neutral")
		observability.RecordMoodPrediction(string(DefaultResult.Label), true, start)
		return DefaultResult, nil
	}

	maxIndex := 0
	maxVal := probs[0]
	for i, p := range probs {
		if p > maxVal {
			maxVal = p
			maxIndex = i
		}
	}

	confidence := float64(maxVal)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	result := Result{
		Label:      MoodForEmotion(Emotions[maxIndex]),
		Confidence: confidence,
	}

	observability.RecordMoodPrediction(string(result.Label), false, start)
	c.logger.Debug().
		Str("label", string(result.Label)).
		Float64("confidence", result.Confidence).
		Msg("Mood predicted")
	return result, nil
}
