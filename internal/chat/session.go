// Package chat orchestrates the conversation: the ordered transcript,
// message dispatch with consent-gated mood context, the word-by-word reply
// reveal and the crisis affordance.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/api"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/mood"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/session"
)

// Role identifies who authored a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation transcript
type Message struct {
	ID           string
	Role         Role
	Text         string
	Time         time.Time
	ContextCards []api.ContextCard
	AudioURL     string
}

// WelcomeText opens every conversation
const WelcomeText = "Hi, I'm here with you. How are you feeling today?"

// apologyText is the single assistant message appended when a send fails
const apologyText = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

// ErrBusy is returned when a send is already in flight
var ErrBusy = errors.New("a message is already being sent")

// chatSender is the slice of the API client the session needs
type chatSender interface {
	SendChat(ctx context.Context, msg api.ChatMessage) (*api.ChatResponse, error)
}

// Callbacks surface session events to the UI layer
type Callbacks struct {
	// OnReveal receives the growing prefix of an incoming reply
	OnReveal func(partial string)

	// OnMessage receives each complete message as it joins the transcript
	OnMessage func(msg Message)

	// OnCrisis fires when a reply calls for the crisis affordance
	OnCrisis func(riskLevel, nextAction string)

	// OnSpeak receives replies that should be spoken aloud
	OnSpeak func(text, audioURL string)
}

// Config configures a chat session
type Config struct {
	// RevealInterval is the delay between revealed words of a reply
	RevealInterval time.Duration
}

// Session is one conversation. Mood context and a check-in photo can be
// staged before a send; both ride along exactly once and only with consent.
type Session struct {
	sender   chatSender
	store    session.Store
	consents *session.ConsentStore
	cfg      Config
	cb       Callbacks
	logger   zerolog.Logger

	mu       sync.Mutex
	busy     bool
	messages []Message
	mood     *mood.Result
	photo    string
	reveal   *Reveal
}

// NewSession creates a session with the welcome message already in place
func NewSession(sender chatSender, store session.Store, consents *session.ConsentStore, cfg Config, cb Callbacks) *Session {
	s := &Session{
		sender:   sender,
		store:    store,
		consents: consents,
		cfg:      cfg,
		cb:       cb,
		logger:   observability.WithComponent("chat"),
	}
	s.append(Message{Role: RoleAssistant, Text: WelcomeText})
	return s
}

// Messages returns a copy of the transcript in insertion order
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// StageMood holds a mood reading for the next send
func (s *Session) StageMood(result mood.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mood = &result
}

// StagePhoto holds a check-in photo for the next send
func (s *Session) StagePhoto(dataURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photo = dataURI
}

// Send dispatches one user message and plays the reply back through the
// callbacks. The staged mood and photo are consumed whether or not they were
// attached: each reading rides along at most once.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	staged := s.mood
	photo := s.photo
	s.mood = nil
	s.photo = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	s.append(Message{Role: RoleUser, Text: text})

	consents, _ := s.consents.Get()
	msg := api.ChatMessage{
		UserID:     s.store.UserID(),
		Text:       text,
		ClientTime: time.Now().Format(time.RFC3339),
		Consents: api.Consents{
			AffectAssist: consents.AffectAssist,
			StoreHistory: consents.StoreHistory,
		},
	}

	// Mood context and the photo leave the device only with consent.
	if consents.AffectAssist {
		if staged != nil {
			conf := staged.Confidence
			msg.MoodLabel = string(staged.Label)
			msg.MoodConf = &conf
		}
		msg.PhotoBase64 = photo
	}

	logger := s.logger.With().Str("correlation_id", observability.NewCorrelationID()).Logger()

	start := time.Now()
	resp, err := s.sender.SendChat(ctx, msg)
	if err != nil {
		observability.RecordChatSend(false, start)
		logger.Warn().Err(err).Msg("Chat send failed")
		s.clearReveal()
		s.append(Message{Role: RoleAssistant, Text: apologyText})
		return err
	}
	observability.RecordChatSend(true, start)
	observability.RecordRiskLevel(resp.RiskLevel)

	s.runReveal(ctx, resp.ReplyText)

	s.append(Message{
		ID:           resp.MessageID,
		Role:         RoleAssistant,
		Text:         resp.ReplyText,
		ContextCards: resp.ContextCards,
		AudioURL:     resp.AudioURL,
	})

	if resp.NextAction == api.ActionEscalate || resp.RiskLevel == api.RiskHigh {
		logger.Info().
			Str("risk_level", resp.RiskLevel).
			Str("next_action", resp.NextAction).
			Msg("Crisis affordance raised")
		if s.cb.OnCrisis != nil {
			s.cb.OnCrisis(resp.RiskLevel, resp.NextAction)
		}
	}

	if s.cb.OnSpeak != nil && resp.ReplyText != "" {
		s.cb.OnSpeak(resp.ReplyText, resp.AudioURL)
	}
	return nil
}

// CancelReveal skips the in-flight reveal straight to the full reply
func (s *Session) CancelReveal() {
	s.mu.Lock()
	reveal := s.reveal
	s.mu.Unlock()
	if reveal != nil {
		reveal.Cancel()
	}
}

// Clear empties the transcript back to the welcome message. Used by the
// quick-exit path.
func (s *Session) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mood = nil
	s.photo = ""
	s.reveal = nil
	s.mu.Unlock()
	s.append(Message{Role: RoleAssistant, Text: WelcomeText})
}

func (s *Session) runReveal(ctx context.Context, text string) {
	if text == "" || s.cb.OnReveal == nil {
		return
	}

	reveal := NewReveal(text, s.cfg.RevealInterval)
	s.mu.Lock()
	s.reveal = reveal
	s.mu.Unlock()

	_ = reveal.Run(ctx, s.cb.OnReveal)
	s.clearReveal()
}

func (s *Session) clearReveal() {
	s.mu.Lock()
	if s.reveal != nil {
		s.reveal.Cancel()
		s.reveal = nil
	}
	s.mu.Unlock()
}

func (s *Session) append(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	if s.cb.OnMessage != nil {
		s.cb.OnMessage(msg)
	}
}
