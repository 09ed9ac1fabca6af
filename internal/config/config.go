package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the MaterCare companion client
type Config struct {
	// Backend API configuration
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://127.0.0.1:5000"`

	// Camera configuration
	CameraFacing string `envconfig:"CAMERA_FACING" default:"user"` // user (selfie) or environment
	CameraWidth  int    `envconfig:"CAMERA_WIDTH" default:"640"`
	CameraHeight int    `envconfig:"CAMERA_HEIGHT" default:"480"`
	CameraMirror bool   `envconfig:"CAMERA_MIRROR" default:"true"` // mirror selfie view horizontally

	// Mood inference configuration
	MoodBackend string `envconfig:"MOOD_BACKEND" default:"mock"` // mock or remote

	// Voice capture configuration
	VoiceSampleRate    int     `envconfig:"VOICE_SAMPLE_RATE" default:"16000"` // Hz, mono 16-bit PCM
	VoiceLanguage      string  `envconfig:"VOICE_LANGUAGE" default:"en-US"`
	VoiceRecognizerURL string  `envconfig:"VOICE_RECOGNIZER_URL" default:""` // WebSocket ASR endpoint; empty disables remote recognition
	LevelThreshold     float64 `envconfig:"LEVEL_THRESHOLD" default:"500.0"` // RMS energy floor for silence detection
	SilenceFrames      int     `envconfig:"SILENCE_FRAMES" default:"25"`     // consecutive quiet frames hinting end of utterance

	// Speech output configuration
	SpeechVolume    float64 `envconfig:"SPEECH_VOLUME" default:"0.8"` // 0.0 to 1.0, applied to the active channel
	SpeechRate      float64 `envconfig:"SPEECH_RATE" default:"1.0"`
	SpeechVoiceHint string  `envconfig:"SPEECH_VOICE_HINT" default:"female"` // preferred synthesis voice by name heuristic

	// Chat configuration
	RevealIntervalMs int `envconfig:"REVEAL_INTERVAL_MS" default:"50"` // delay between revealed words of a reply

	// Resilience configuration for the remote mood backend
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`        // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`      // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"` // Enable local Prometheus metrics endpoint
	MetricsAddr    string `envconfig:"METRICS_ADDR" default:"127.0.0.1:9090"`
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.CameraFacing != "user" && c.CameraFacing != "environment" {
		return fmt.Errorf("CAMERA_FACING must be \"user\" or \"environment\", got %q", c.CameraFacing)
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		return fmt.Errorf("camera dimensions must be positive, got %dx%d", c.CameraWidth, c.CameraHeight)
	}
	if c.MoodBackend != "mock" && c.MoodBackend != "remote" {
		return fmt.Errorf("MOOD_BACKEND must be \"mock\" or \"remote\", got %q", c.MoodBackend)
	}
	if c.VoiceSampleRate <= 0 {
		return fmt.Errorf("VOICE_SAMPLE_RATE must be positive, got %d", c.VoiceSampleRate)
	}
	if c.SpeechVolume < 0 || c.SpeechVolume > 1 {
		return fmt.Errorf("SPEECH_VOLUME must be in [0,1], got %v", c.SpeechVolume)
	}
	if c.RevealIntervalMs < 0 {
		return fmt.Errorf("REVEAL_INTERVAL_MS must not be negative, got %d", c.RevealIntervalMs)
	}
	return nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
