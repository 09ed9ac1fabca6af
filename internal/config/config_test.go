package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("API_BASE_URL")
	os.Unsetenv("CAMERA_FACING")
	os.Unsetenv("MOOD_BACKEND")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIBaseURL != "http://127.0.0.1:5000" {
		t.Errorf("Expected default APIBaseURL 'http://127.0.0.1:5000', got '%s'", cfg.APIBaseURL)
	}

	if cfg.CameraFacing != "user" {
		t.Errorf("Expected default CameraFacing 'user', got '%s'", cfg.CameraFacing)
	}

	if !cfg.CameraMirror {
		t.Error("Expected default CameraMirror true")
	}

	if cfg.MoodBackend != "mock" {
		t.Errorf("Expected default MoodBackend 'mock', got '%s'", cfg.MoodBackend)
	}

	if cfg.VoiceSampleRate != 16000 {
		t.Errorf("Expected default VoiceSampleRate 16000, got %d", cfg.VoiceSampleRate)
	}

	if cfg.LevelThreshold != 500.0 {
		t.Errorf("Expected default LevelThreshold 500.0, got %f", cfg.LevelThreshold)
	}

	if cfg.SpeechVolume != 0.8 {
		t.Errorf("Expected default SpeechVolume 0.8, got %f", cfg.SpeechVolume)
	}

	if cfg.RevealIntervalMs != 50 {
		t.Errorf("Expected default RevealIntervalMs 50, got %d", cfg.RevealIntervalMs)
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("API_BASE_URL", "https://api.matercare.test")
	os.Setenv("MOOD_BACKEND", "remote")
	os.Setenv("CAMERA_MIRROR", "false")
	defer os.Unsetenv("API_BASE_URL")
	defer os.Unsetenv("MOOD_BACKEND")
	defer os.Unsetenv("CAMERA_MIRROR")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.APIBaseURL != "https://api.matercare.test" {
		t.Errorf("Expected APIBaseURL 'https://api.matercare.test', got '%s'", cfg.APIBaseURL)
	}

	if cfg.MoodBackend != "remote" {
		t.Errorf("Expected MoodBackend 'remote', got '%s'", cfg.MoodBackend)
	}

	if cfg.CameraMirror {
		t.Error("Expected CameraMirror false")
	}
}

func TestLoad_InvalidFacing(t *testing.T) {
	os.Setenv("CAMERA_FACING", "sideways")
	defer os.Unsetenv("CAMERA_FACING")

	_, err := LoadFromEnv()
	if err == nil {
		t.Error("Expected error for invalid CAMERA_FACING")
	}
}

func TestLoad_InvalidMoodBackend(t *testing.T) {
	os.Setenv("MOOD_BACKEND", "quantum")
	defer os.Unsetenv("MOOD_BACKEND")

	_, err := LoadFromEnv()
	if err == nil {
		t.Error("Expected error for invalid MOOD_BACKEND")
	}
}

func TestLoad_InvalidVolume(t *testing.T) {
	os.Setenv("SPEECH_VOLUME", "1.5")
	defer os.Unsetenv("SPEECH_VOLUME")

	_, err := LoadFromEnv()
	if err == nil {
		t.Error("Expected error for out-of-range SPEECH_VOLUME")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("MATERCARE_TEST_KEY", "value")
	defer os.Unsetenv("MATERCARE_TEST_KEY")

	if got := GetEnv("MATERCARE_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("Expected 'value', got '%s'", got)
	}

	if got := GetEnv("MATERCARE_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected 'fallback', got '%s'", got)
	}
}
