package api

// Consents carries the per-session consent flags on an outbound message
type Consents struct {
	AffectAssist bool `json:"affect_assist"`
	StoreHistory bool `json:"store_history"`
}

// ChatMessage is the outbound payload for POST /api/chat/send.
// MoodLabel and MoodConf are present only if on-device inference succeeded
// and affect-assist consent was granted.
type ChatMessage struct {
	UserID      string   `json:"user_id"`
	Text        string   `json:"text"`
	MoodLabel   string   `json:"mood_label,omitempty"` // calm, sad, anxious, neutral
	MoodConf    *float64 `json:"mood_conf,omitempty"`  // 0.0 to 1.0
	ClientTime  string   `json:"client_time,omitempty"`
	Consents    Consents `json:"consents"`
	PhotoBase64 string   `json:"photo_base64,omitempty"`
}

// ContextCard is a backend-supplied citation shown alongside a reply
type ContextCard struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
	URL     string `json:"url"`
}

// Screening is an optional screening prompt attached to a reply
type Screening struct {
	AskEPDS      bool   `json:"ask_epds"`
	QuestionID   int    `json:"question_id"`
	QuestionText string `json:"question_text"`
}

// Audit describes how the backend produced a reply
type Audit struct {
	UsedGuardrail bool `json:"used_guardrail"`
	RetrievedK    int  `json:"retrieved_k"`
}

// Risk levels returned by the chat backend, ordered low to high
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Next-action directives returned by the chat backend
const (
	ActionReply          = "reply"
	ActionAskScreening   = "ask_screening"
	ActionStartGrounding = "start_grounding"
	ActionEscalate       = "escalate"
)

// ChatResponse is the inbound payload from POST /api/chat/send
type ChatResponse struct {
	MessageID    string        `json:"message_id"`
	RiskLevel    string        `json:"risk_level"`  // low, medium, high
	NextAction   string        `json:"next_action"` // reply, ask_screening, start_grounding, escalate
	ReplyText    string        `json:"reply_text"`
	ContextCards []ContextCard `json:"context_cards,omitempty"`
	Screening    *Screening    `json:"screening,omitempty"`
	Audit        Audit         `json:"audit"`
	AudioURL     string        `json:"audio_url,omitempty"` // optional pre-rendered reply audio
}

// FaceBox locates the detected face within the submitted photo
type FaceBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// EmotionDetection is the response from POST /api/fer/detect_emotion
type EmotionDetection struct {
	Prediction string             `json:"prediction"` // happy, sad, neutral
	Probs      map[string]float64 `json:"probs"`
	FaceBox    *FaceBox           `json:"face_box,omitempty"`
}

// AuthUser identifies the authenticated user in auth responses
type AuthUser struct {
	UserID string `json:"user_id"`
}

// AuthResponse is the response from the login and register endpoints
type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}
