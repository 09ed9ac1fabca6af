package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/api"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/camera"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/chat"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/config"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/media"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/mood"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/resilience"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/safety"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/session"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/speech"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/voice"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("mood_backend", cfg.MoodBackend).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("MaterCare companion starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Session state and backend client
	store := session.NewMemoryStore()
	consents := session.NewConsentStore()
	client := api.NewClient(cfg.APIBaseURL, store)

	// Mood inference, mock or remote per config
	var backend mood.Backend
	if cfg.MoodBackend == "remote" {
		breaker := resilience.NewBreaker("fer",
			cfg.CircuitBreakerMaxFailures,
			time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second)
		backend = mood.NewRemoteBackend(client, breaker)
	} else {
		backend = mood.NewMockBackend()
	}
	moodClient := mood.NewClient(backend)

	// Capture devices
	videoSource := &media.SyntheticVideoSource{}
	audioSource := &media.SyntheticAudioSource{}

	// Spoken output
	voices := []speech.Voice{
		{Name: "Daniel", Lang: "en-GB"},
		{Name: "Samantha", Lang: "en-US"},
		{Name: "Alex", Lang: "en-US"},
	}
	speaker := speech.NewController(
		speech.NewTimedPlayer(cfg.VoiceSampleRate),
		speech.NewToneSynthesizer(cfg.VoiceSampleRate),
		voices,
		speech.Config{VoiceHint: cfg.SpeechVoiceHint, Volume: cfg.SpeechVolume, Rate: cfg.SpeechRate},
	)
	logger.Debug().Str("voice", speaker.Voice().Name).Msg("Synthesis voice selected")

	// Optional localhost metrics and health server
	if cfg.MetricsEnabled {
		go serveMetrics(cfg, client)
	}

	// Chat session
	var sess *chat.Session
	sess = chat.NewSession(client, store, consents, chat.Config{
		RevealInterval: time.Duration(cfg.RevealIntervalMs) * time.Millisecond,
	}, chat.Callbacks{
		OnReveal: func(partial string) {
			fmt.Printf("\r  %s", partial)
		},
		OnMessage: func(msg chat.Message) {
			if msg.Role == chat.RoleAssistant {
				fmt.Printf("\rcompanion> %s\n", msg.Text)
				for _, card := range msg.ContextCards {
					fmt.Printf("  [%s] %s\n", card.Source, card.Title)
				}
			}
		},
		OnCrisis: func(riskLevel, nextAction string) {
			printCrisisBanner()
		},
		OnSpeak: func(text, audioURL string) {
			go func() {
				if err := speaker.Speak(ctx, text, audioURL); err != nil {
					logger.Warn().Err(err).Msg("Speech output failed")
				}
			}()
		},
	})

	// Voice capture, wired straight into the chat session
	var recorder *voice.Controller
	if cfg.VoiceRecognizerURL != "" {
		recognizer := voice.NewWSRecognizer(cfg.VoiceRecognizerURL, cfg.VoiceSampleRate, cfg.VoiceLanguage)
		recorder = voice.NewController(audioSource, recognizer, voice.Config{
			SampleRate:     cfg.VoiceSampleRate,
			LevelThreshold: cfg.LevelThreshold,
			SilenceFrames:  cfg.SilenceFrames,
			OnTranscript: func(text string) {
				fmt.Printf("you (voice)> %s\n", text)
				if err := sess.Send(ctx, text); err != nil {
					logger.Warn().Err(err).Msg("Voice message send failed")
				}
			},
		})
	}

	if err := run(ctx, cfg, client, store, consents, sess, moodClient, videoSource, recorder); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("Session ended with error")
	}

	speaker.Stop()
	logger.Info().Msg("MaterCare companion exited")
}

// run drives the interactive loop: sign-in, then chat
func run(
	ctx context.Context,
	cfg *config.Config,
	client *api.Client,
	store session.Store,
	consents *session.ConsentStore,
	sess *chat.Session,
	moodClient *mood.Client,
	videoSource media.VideoSource,
	recorder *voice.Controller,
) error {
	in := bufio.NewScanner(os.Stdin)

	if err := signIn(ctx, in, client); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Commands: /mood (camera check-in), /voice (toggle voice input), /exit (quick exit)")
	for _, msg := range sess.Messages() {
		fmt.Printf("companion> %s\n", msg.Text)
	}

	for {
		fmt.Print("you> ")
		if !in.Scan() {
			return in.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(in.Text())
		switch {
		case line == "":
			continue

		case line == "/exit":
			url := safety.QuickExit(store, consents, sess)
			fmt.Printf("Session cleared. Opening %s\n", url)
			return nil

		case line == "/mood":
			moodCheckIn(ctx, in, cfg, consents, sess, moodClient, videoSource)

		case line == "/voice":
			if recorder == nil {
				fmt.Println("Voice input is not configured (set VOICE_RECOGNIZER_URL).")
				continue
			}
			if err := recorder.Toggle(ctx); err != nil {
				fmt.Printf("Voice input unavailable: %v\n", err)
			} else if recorder.State() == voice.StateRecording {
				fmt.Println("Listening... type /voice to stop.")
			}

		default:
			if err := sess.Send(ctx, line); err != nil {
				if err == api.ErrSessionExpired {
					fmt.Println("Your session expired. Please sign in again.")
					if err := signIn(ctx, in, client); err != nil {
						return err
					}
				}
			}
		}
	}
}

func signIn(ctx context.Context, in *bufio.Scanner, client *api.Client) error {
	for {
		fmt.Print("Sign in or create an account? [login/register]: ")
		if !in.Scan() {
			return in.Err()
		}
		mode := strings.TrimSpace(strings.ToLower(in.Text()))

		fmt.Print("Email: ")
		if !in.Scan() {
			return in.Err()
		}
		email := strings.TrimSpace(in.Text())

		fmt.Print("Password: ")
		if !in.Scan() {
			return in.Err()
		}
		password := in.Text()

		var err error
		if mode == "register" {
			_, err = client.Register(ctx, email, password)
		} else {
			_, err = client.Login(ctx, email, password)
		}
		if err == nil {
			return nil
		}
		fmt.Printf("%v\n", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// moodCheckIn runs the consent-gated camera flow and stages the result on
// the next chat message.
func moodCheckIn(
	ctx context.Context,
	in *bufio.Scanner,
	cfg *config.Config,
	consents *session.ConsentStore,
	sess *chat.Session,
	moodClient *mood.Client,
	videoSource media.VideoSource,
) {
	if !consents.AffectAssist() {
		fmt.Print("Share a mood reading with your companion for this session? [y/N]: ")
		if !in.Scan() {
			return
		}
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(in.Text())), "y") {
			fmt.Println("No problem. You can chat without it.")
			return
		}
		fmt.Print("Also allow storing your chat history? [y/N]: ")
		if !in.Scan() {
			return
		}
		storeHistory := strings.HasPrefix(strings.ToLower(strings.TrimSpace(in.Text())), "y")
		consents.Set(session.Consent{AffectAssist: true, StoreHistory: storeHistory})
	}

	if err := moodClient.Load(ctx); err != nil {
		fmt.Println("The mood model is unavailable right now.")
		return
	}

	uri, err := camera.CaptureOneShot(ctx, videoSource, camera.Options{
		Facing: media.Facing(cfg.CameraFacing),
		Width:  cfg.CameraWidth,
		Height: cfg.CameraHeight,
		Mirror: cfg.CameraMirror,
	})
	if err != nil {
		fmt.Printf("Could not access the camera: %v\n", err)
		return
	}

	frame, err := decodeDataURI(uri)
	if err != nil {
		fmt.Println("Could not read the captured photo.")
		return
	}

	result, err := moodClient.Predict(ctx, frame)
	if err != nil {
		fmt.Println("Mood reading unavailable.")
		return
	}

	info := mood.InfoFor(result.Label)
	fmt.Printf("%s %s (%s), staged for your next message\n",
		info.Icon, info.Title, mood.FormatConfidence(result.Confidence))

	sess.StageMood(result)
	sess.StagePhoto(uri)
}

// decodeDataURI turns a JPEG data URI back into an image
func decodeDataURI(uri string) (image.Image, error) {
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(uri, prefix) {
		return nil, fmt.Errorf("unexpected data URI format")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return nil, err
	}
	return jpeg.Decode(bytes.NewReader(raw))
}

func printCrisisBanner() {
	fmt.Println()
	fmt.Println("It sounds like things are really heavy right now. You deserve support:")
	for _, r := range safety.CrisisResources {
		fmt.Printf("  %s: %s (%s)\n", r.Name, r.Contact, r.Note)
	}
	fmt.Println()
}

// serveMetrics exposes Prometheus metrics and health endpoints on localhost
func serveMetrics(cfg *config.Config, client *api.Client) {
	logger := observability.GetLogger()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", observability.HealthCheckHandler())
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"backend_api": func(ctx context.Context) (bool, error) {
			return client.Ready(ctx)
		},
	}))
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info().Str("addr", cfg.MetricsAddr).Msg("Metrics server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}
