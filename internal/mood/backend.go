package mood

import (
	"context"
	"image"
	"math"
	"math/rand"
)

// Backend is the pluggable inference strategy behind the mood client. A
// production model must honor the same contract: Load before Infer, and a
// probability vector of len(Emotions) on success.
type Backend interface {
	// Load initializes the backend. Called at most once per client.
	Load(ctx context.Context) error

	// Infer produces a probability vector over Emotions for the given frame
	Infer(ctx context.Context, img image.Image) ([]float32, error)
}

// mockBackend is the placeholder classifier: a tiny dense layer with fixed
// seeded weights over the preprocessed 48x48 input. It stands in for a real
// emotion-recognition model and is fully deterministic.
type mockBackend struct {
	weights [][]float32 // [len(Emotions)][inputSize*inputSize]
	bias    []float32
}

// NewMockBackend creates the deterministic placeholder backend
func NewMockBackend() Backend {
	return &mockBackend{}
}

func (m *mockBackend) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(4242))
	m.weights = make([][]float32, len(Emotions))
	m.bias = make([]float32, len(Emotions))
	for i := range m.weights {
		row := make([]float32, inputSize*inputSize)
		for j := range row {
			row[j] = float32(rng.NormFloat64()) * 0.05
		}
		m.weights[i] = row
		m.bias[i] = float32(rng.NormFloat64()) * 0.1
	}
	return nil
}

func (m *mockBackend) Infer(ctx context.Context, img image.Image) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input := preprocess(img)
	defer releaseInput(input)

	logits := make([]float64, len(Emotions))
	for i, row := range m.weights {
		sum := float64(m.bias[i])
		for j, v := range *input {
			sum += float64(row[j]) * float64(v)
		}
		logits[i] = sum
	}

	return softmax(logits), nil
}

// softmax converts logits to a probability vector
func softmax(logits []float64) []float32 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		if l > maxLogit {
			maxLogit = l
		}
	}

	var sum float64
	exps := make([]float64, len(logits))
	for i, l := range logits {
		exps[i] = math.Exp(l - maxLogit)
		sum += exps[i]
	}

	probs := make([]float32, len(logits))
	for i, e := range exps {
		probs[i] = float32(e / sum)
	}
	return probs
}
