package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/audio"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
)

// wsMessage is the recognizer's wire format. Audio flows client-to-server as
// binary PCM frames; everything else is JSON.
type wsMessage struct {
	Type       string  `json:"type"` // transcript, done, error
	Text       string  `json:"text,omitempty"`
	IsFinal    bool    `json:"is_final,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// finalizeTimeout bounds how long Stop waits for the server's full transcript
const finalizeTimeout = 5 * time.Second

// WSRecognizer streams audio to a WebSocket ASR endpoint
type WSRecognizer struct {
	endpoint   string
	sampleRate int
	language   string
	logger     zerolog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	active   bool
	results  chan Result
	done     chan string
	segments []string // final segments, the fallback transcript if done never arrives
}

// NewWSRecognizer creates a recognizer for the given WebSocket endpoint
func NewWSRecognizer(endpoint string, sampleRate int, language string) *WSRecognizer {
	return &WSRecognizer{
		endpoint:   endpoint,
		sampleRate: sampleRate,
		language:   language,
		logger:     observability.WithComponent("voice"),
	}
}

// Start dials the recognition endpoint and begins reading results
func (w *WSRecognizer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active {
		return fmt.Errorf("recognizer is already active")
	}

	u, err := url.Parse(w.endpoint)
	if err != nil {
		return fmt.Errorf("invalid recognizer URL: %w", err)
	}
	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(w.sampleRate))
	q.Set("language", w.language)
	q.Set("encoding", "linear16")
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to recognizer: %w", err)
	}

	w.conn = conn
	w.active = true
	w.results = make(chan Result, 100)
	w.done = make(chan string, 1)
	w.segments = nil

	go w.readLoop(conn, w.results, w.done)

	w.logger.Debug().Str("url", w.endpoint).Str("language", w.language).Msg("Recognizer session started")
	return nil
}

func (w *WSRecognizer) readLoop(conn *websocket.Conn, results chan<- Result, done chan<- string) {
	defer close(results)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			w.logger.Warn().Err(err).Msg("Malformed recognizer message")
			continue
		}

		switch msg.Type {
		case "transcript":
			if msg.Text == "" {
				continue
			}
			if msg.IsFinal {
				w.mu.Lock()
				w.segments = append(w.segments, msg.Text)
				w.mu.Unlock()
			}
			select {
			case results <- Result{Text: msg.Text, IsFinal: msg.IsFinal, Confidence: msg.Confidence}:
			default:
				w.logger.Warn().Msg("Result channel full, dropping transcription")
			}

		case "done":
			select {
			case done <- msg.Transcript:
			default:
			}
			return

		case "error":
			w.logger.Error().Str("message", msg.Message).Msg("Recognizer error")

		default:
			w.logger.Debug().Str("type", msg.Type).Msg("Unknown recognizer message type")
		}
	}
}

// Feed streams one frame of PCM samples to the recognizer
func (w *WSRecognizer) Feed(samples []int16) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active || w.conn == nil {
		return fmt.Errorf("recognizer is not active")
	}
	return w.conn.WriteMessage(websocket.BinaryMessage, audio.SamplesToBytes(samples))
}

// Results returns the channel of interim and final segments
func (w *WSRecognizer) Results() <-chan Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results
}

// Stop asks the server to finalize and waits for the full transcript. If the
// server never answers, the accumulated final segments stand in for it.
func (w *WSRecognizer) Stop(ctx context.Context) (string, error) {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return "", fmt.Errorf("recognizer is not active")
	}
	conn := w.conn
	done := w.done
	w.mu.Unlock()

	if err := conn.WriteJSON(wsMessage{Type: "finalize"}); err != nil {
		w.teardown()
		return "", fmt.Errorf("failed to finalize session: %w", err)
	}

	var transcript string
	select {
	case transcript = <-done:
	case <-time.After(finalizeTimeout):
		w.mu.Lock()
		transcript = strings.Join(w.segments, " ")
		w.mu.Unlock()
		w.logger.Warn().Msg("Finalize timed out, using accumulated segments")
	case <-ctx.Done():
		w.teardown()
		return "", ctx.Err()
	}

	w.teardown()
	return transcript, nil
}

// Abort tears the session down and discards any transcript
func (w *WSRecognizer) Abort() error {
	w.teardown()
	return nil
}

func (w *WSRecognizer) teardown() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		_ = w.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = w.conn.Close()
		w.conn = nil
	}
	w.active = false
}
