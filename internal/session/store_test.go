package session

import (
	"sync"
	"testing"
)

func TestMemoryStore_SetAndClear(t *testing.T) {
	store := NewMemoryStore()

	if store.SignedIn() {
		t.Error("Expected empty store to report signed out")
	}

	store.SetTokens("access-1", "refresh-1")
	store.SetUserID("user-1")

	if store.AccessToken() != "access-1" {
		t.Errorf("Expected access token 'access-1', got '%s'", store.AccessToken())
	}
	if store.RefreshToken() != "refresh-1" {
		t.Errorf("Expected refresh token 'refresh-1', got '%s'", store.RefreshToken())
	}
	if store.UserID() != "user-1" {
		t.Errorf("Expected user id 'user-1', got '%s'", store.UserID())
	}
	if !store.SignedIn() {
		t.Error("Expected store to report signed in")
	}

	store.Clear()

	if store.AccessToken() != "" || store.RefreshToken() != "" || store.UserID() != "" {
		t.Error("Expected Clear to wipe all credentials")
	}
}

func TestMemoryStore_SetAccessTokenKeepsRefresh(t *testing.T) {
	store := NewMemoryStore()
	store.SetTokens("access-1", "refresh-1")

	store.SetAccessToken("access-2")

	if store.AccessToken() != "access-2" {
		t.Errorf("Expected access token 'access-2', got '%s'", store.AccessToken())
	}
	if store.RefreshToken() != "refresh-1" {
		t.Errorf("Expected refresh token to survive, got '%s'", store.RefreshToken())
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.SetTokens("a", "r")
		}()
		go func() {
			defer wg.Done()
			_ = store.AccessToken()
		}()
	}
	wg.Wait()
}

func TestConsentStore(t *testing.T) {
	consents := NewConsentStore()

	if _, captured := consents.Get(); captured {
		t.Error("Expected fresh consent store to be uncaptured")
	}
	if consents.AffectAssist() {
		t.Error("Expected AffectAssist false before capture")
	}

	consents.Set(Consent{AffectAssist: true, StoreHistory: false})

	got, captured := consents.Get()
	if !captured {
		t.Error("Expected consent to be captured")
	}
	if !got.AffectAssist || got.StoreHistory {
		t.Errorf("Unexpected consent record: %+v", got)
	}
	if !consents.AffectAssist() {
		t.Error("Expected AffectAssist true after capture")
	}

	consents.Clear()
	if consents.AffectAssist() {
		t.Error("Expected AffectAssist false after Clear")
	}
}
