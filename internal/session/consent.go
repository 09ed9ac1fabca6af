package session

import "sync"

// Consent records the two per-session consent flags captured by the camera
// opt-in dialog. Held in memory only; never persisted across restarts.
type Consent struct {
	AffectAssist bool // on-device affect analysis permitted
	StoreHistory bool // history storage permitted
}

// ConsentStore holds the consent record for the current session.
// A zero value means consent has not been captured yet.
type ConsentStore struct {
	mu       sync.RWMutex
	consent  Consent
	captured bool
}

// NewConsentStore creates an empty consent store
func NewConsentStore() *ConsentStore {
	return &ConsentStore{}
}

// Set records the consent flags chosen in the opt-in dialog
func (c *ConsentStore) Set(consent Consent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consent = consent
	c.captured = true
}

// Get returns the current consent record and whether it has been captured
func (c *ConsentStore) Get() (Consent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.consent, c.captured
}

// AffectAssist reports whether on-device affect analysis is permitted
func (c *ConsentStore) AffectAssist() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.captured && c.consent.AffectAssist
}

// Clear resets the consent record (quick exit, sign-out)
func (c *ConsentStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consent = Consent{}
	c.captured = false
}
