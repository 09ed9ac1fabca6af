// Package voice implements the voice check-in pipeline: microphone capture,
// live level metering, end-of-utterance detection and streaming speech
// recognition.
package voice

import "context"

// Result is one transcription result from the recognizer
type Result struct {
	// Text is the transcribed text
	Text string

	// IsFinal indicates a final segment rather than an interim guess
	IsFinal bool

	// Confidence is the recognizer's confidence (0.0 to 1.0) if available
	Confidence float64
}

// Recognizer is the interface for streaming speech-to-text sessions. One
// recognizer handles one utterance: Start, Feed audio, then either Stop for
// the full transcript or Abort to discard it.
type Recognizer interface {
	// Start opens a new recognition session
	Start(ctx context.Context) error

	// Feed streams a frame of mono PCM samples into the session
	Feed(samples []int16) error

	// Results returns the channel of interim and final segments
	Results() <-chan Result

	// Stop flushes the session and returns the full transcript
	Stop(ctx context.Context) (string, error)

	// Abort tears the session down without waiting for a transcript
	Abort() error
}
