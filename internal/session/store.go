package session

import "sync"

// Store holds session credentials for the authenticated user.
// Implementations are the analogue of tab-scoped browser storage: volatile,
// cleared on sign-out, terminal auth failure, or quick exit.
type Store interface {
	// AccessToken returns the current access token, or "" if signed out
	AccessToken() string

	// RefreshToken returns the current refresh token, or "" if signed out
	RefreshToken() string

	// UserID returns the signed-in user's identifier, or "" if signed out
	UserID() string

	// SetTokens stores a new token pair
	SetTokens(accessToken, refreshToken string)

	// SetAccessToken replaces only the access token (used by the refresh path)
	SetAccessToken(accessToken string)

	// SetUserID stores the signed-in user's identifier
	SetUserID(userID string)

	// Clear wipes all stored credentials
	Clear()
}

// MemoryStore is a goroutine-safe in-memory Store
type MemoryStore struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	userID       string
}

// NewMemoryStore creates an empty in-memory credential store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AccessToken returns the current access token
func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token
func (s *MemoryStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// UserID returns the signed-in user's identifier
func (s *MemoryStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetTokens stores a new token pair
func (s *MemoryStore) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// SetAccessToken replaces only the access token
func (s *MemoryStore) SetAccessToken(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
}

// SetUserID stores the signed-in user's identifier
func (s *MemoryStore) SetUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// Clear wipes all stored credentials
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.userID = ""
}

// SignedIn reports whether an access token is present
func (s *MemoryStore) SignedIn() bool {
	return s.AccessToken() != ""
}
