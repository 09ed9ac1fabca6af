package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chat metrics
	chatSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_chat_sends_total",
		Help: "Total number of chat messages sent",
	}, []string{"status"})

	chatSendLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matercare_chat_send_latency_seconds",
		Help:    "Round-trip latency of chat sends in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	riskLevels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_risk_levels_total",
		Help: "Risk levels returned by the chat backend",
	}, []string{"level"})

	// Mood inference metrics
	moodPredictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_mood_predictions_total",
		Help: "Total number of mood predictions",
	}, []string{"label"})

	moodDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matercare_mood_degraded_total",
		Help: "Predictions that fell back to the safe neutral default",
	})

	moodLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matercare_mood_latency_seconds",
		Help:    "Mood inference latency in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
	})

	// Camera metrics
	captures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_captures_total",
		Help: "Total number of camera frame captures",
	}, []string{"status"})

	// Voice metrics
	voiceSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_voice_sessions_total",
		Help: "Total number of voice recording sessions",
	}, []string{"status"})

	voiceSessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matercare_voice_session_duration_seconds",
		Help:    "Duration of voice recording sessions in seconds",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120},
	})

	// Speech output metrics
	speechStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_speech_starts_total",
		Help: "Total number of speech playbacks started",
	}, []string{"channel"}) // channel: "audio" or "synthesis"

	speechPreempted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matercare_speech_preempted_total",
		Help: "Playbacks stopped because a newer one started",
	})

	// Auth metrics
	tokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_token_refreshes_total",
		Help: "Total number of token refresh attempts",
	}, []string{"status"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "matercare_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matercare_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// RecordChatSend records the outcome and latency of one chat send
func RecordChatSend(success bool, started time.Time) {
	status := "success"
	if !success {
		status = "error"
	}
	chatSends.WithLabelValues(status).Inc()
	chatSendLatency.Observe(time.Since(started).Seconds())
}

// RecordRiskLevel records the risk level attached to a chat response
func RecordRiskLevel(level string) {
	riskLevels.WithLabelValues(level).Inc()
}

// RecordMoodPrediction records a completed mood prediction
func RecordMoodPrediction(label string, degraded bool, started time.Time) {
	moodPredictions.WithLabelValues(label).Inc()
	if degraded {
		moodDegraded.Inc()
	}
	moodLatency.Observe(time.Since(started).Seconds())
}

// RecordCapture records the outcome of a camera capture
func RecordCapture(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	captures.WithLabelValues(status).Inc()
}

// RecordVoiceSession records a finished voice recording session
func RecordVoiceSession(success bool, started time.Time) {
	status := "success"
	if !success {
		status = "error"
	}
	voiceSessions.WithLabelValues(status).Inc()
	voiceSessionDuration.Observe(time.Since(started).Seconds())
}

// RecordSpeechStart records the channel chosen for a speech playback
func RecordSpeechStart(channel string) {
	speechStarts.WithLabelValues(channel).Inc()
}

// RecordSpeechPreempted records a playback stopped by a newer Speak call
func RecordSpeechPreempted() {
	speechPreempted.Inc()
}

// RecordTokenRefresh records the outcome of a token refresh attempt
func RecordTokenRefresh(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	tokenRefreshes.WithLabelValues(status).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
