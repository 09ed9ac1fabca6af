package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/session"
)

// ErrSessionExpired is returned when a token refresh fails or a refreshed
// request is rejected again; the session store has been cleared.
var ErrSessionExpired = errors.New("session expired")

// AuthError carries a human-readable message extracted from the backend's
// error field on a failed auth request.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// apiError is the backend's error envelope
type apiError struct {
	Error string `json:"error"`
}

// Client talks to the MaterCare backend REST API. Authenticated requests
// carry the access token from the session store; a 401 on any non-auth route
// triggers exactly one refresh-and-retry before the failure is surfaced and
// the session cleared.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	logger     zerolog.Logger
}

// NewClient creates a backend API client bound to a session store
func NewClient(baseURL string, store session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No explicit timeout: chat replies can take a while and callers
		// pass a context when they need a bound.
		httpClient: &http.Client{},
		store:      store,
		logger:     observability.WithComponent("api"),
	}
}

// Login authenticates with email and password, persisting the returned
// credentials on success.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password, "Login failed")
}

// Register creates a new account, persisting the returned credentials on
// success.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password, "Signup failed")
}

func (c *Client) authenticate(ctx context.Context, path, email, password, fallbackMsg string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := c.post(ctx, path, body, "", false, "")
	if err != nil {
		return nil, fmt.Errorf("network error during %s: %w", strings.TrimPrefix(path, "/api/auth/"), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: extractErrorMessage(raw, fallbackMsg)}
	}

	var auth AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, fmt.Errorf("decoding auth response: %w", err)
	}

	c.store.SetTokens(auth.AccessToken, auth.RefreshToken)
	c.store.SetUserID(auth.User.UserID)
	c.logger.Info().Str("user_id", auth.User.UserID).Msg("Signed in")

	return &auth, nil
}

// Logout revokes the refresh token on the backend and clears the session.
// The session is cleared even if the request fails.
func (c *Client) Logout(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	defer c.store.Clear()

	if refreshToken == "" {
		return nil
	}

	resp, err := c.post(ctx, "/api/auth/logout", struct{}{}, "", true, refreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Logout request failed, clearing session anyway")
		return nil
	}
	resp.Body.Close()
	return nil
}

// SendChat dispatches a chat message and returns the backend's reply
func (c *Client) SendChat(ctx context.Context, msg ChatMessage) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.doAuthed(ctx, "/api/chat/send", msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DetectEmotion submits a base64-encoded photo for server-side facial
// emotion detection.
func (c *Client) DetectEmotion(ctx context.Context, photoBase64 string) (*EmotionDetection, error) {
	body := map[string]string{"photo": photoBase64}
	var out EmotionDetection
	if err := c.doAuthed(ctx, "/api/fer/detect_emotion", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready probes the backend for the readiness endpoint
func (c *Client) Ready(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError, nil
}

// doAuthed performs a POST with the bearer access token, refreshing once on
// a 401 before giving up.
func (c *Client) doAuthed(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.post(ctx, path, body, c.store.AccessToken(), true, "")
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		if err := c.refresh(ctx); err != nil {
			return err
		}

		resp, err = c.post(ctx, path, body, c.store.AccessToken(), true, "")
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			// The refreshed token was rejected too; the session is gone.
			resp.Body.Close()
			c.store.Clear()
			return ErrSessionExpired
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, extractErrorMessage(raw, "request failed"))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", path, err)
		}
	}
	return nil
}

// refresh exchanges the refresh token for a new access token. Failure is
// terminal for the session: credentials are cleared.
func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		c.store.Clear()
		observability.RecordTokenRefresh(false)
		return ErrSessionExpired
	}

	resp, err := c.post(ctx, "/api/auth/refresh", struct{}{}, "", true, refreshToken)
	if err != nil {
		c.store.Clear()
		observability.RecordTokenRefresh(false)
		return fmt.Errorf("%w: refresh request failed: %v", ErrSessionExpired, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.store.Clear()
		observability.RecordTokenRefresh(false)
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Token refresh rejected, clearing session")
		return ErrSessionExpired
	}

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		c.store.Clear()
		observability.RecordTokenRefresh(false)
		return fmt.Errorf("%w: decoding refresh response: %v", ErrSessionExpired, err)
	}

	c.store.SetAccessToken(refreshed.AccessToken)
	observability.RecordTokenRefresh(true)
	c.logger.Debug().Msg("Access token refreshed")
	return nil
}

// post sends a JSON POST. When authed is true the bearer token is attached;
// overrideToken (if non-empty) takes precedence over the provided token.
func (c *Client) post(ctx context.Context, path string, body interface{}, token string, authed bool, overrideToken string) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if authed {
		bearer := token
		if overrideToken != "" {
			bearer = overrideToken
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("Request failed")
		return nil, err
	}
	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Request completed")
	return resp, nil
}

// extractErrorMessage pulls the backend's error field out of a response
// body, falling back to the provided default.
func extractErrorMessage(raw []byte, fallback string) string {
	var envelope apiError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return fallback
}
