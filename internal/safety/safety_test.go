package safety

import (
	"testing"

	"github.com/mathieufiani/matercare-hophacks-2025/internal/api"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/session"
)

func TestShouldShowCrisisBanner(t *testing.T) {
	cases := []struct {
		risk   string
		action string
		want   bool
	}{
		{api.RiskLow, api.ActionEscalate, true},
		{api.RiskHigh, api.ActionReply, true},
		{api.RiskHigh, api.ActionEscalate, true},
		{api.RiskLow, api.ActionReply, false},
		{api.RiskMedium, api.ActionAskScreening, false},
	}

	for _, tc := range cases {
		if got := ShouldShowCrisisBanner(tc.risk, tc.action); got != tc.want {
			t.Errorf("ShouldShowCrisisBanner(%q, %q) = %v, want %v", tc.risk, tc.action, got, tc.want)
		}
	}
}

type clearable struct{ cleared bool }

func (c *clearable) Clear() { c.cleared = true }

func TestQuickExit_WipesEverything(t *testing.T) {
	store := session.NewMemoryStore()
	store.SetTokens("access", "refresh")
	store.SetUserID("user-1")

	consents := session.NewConsentStore()
	consents.Set(session.Consent{AffectAssist: true})

	transcript := &clearable{}

	url := QuickExit(store, consents, transcript)
	if url != "https://weather.com" {
		t.Errorf("Expected neutral exit URL, got %q", url)
	}
	if store.SignedIn() {
		t.Error("Expected credentials cleared")
	}
	if consents.AffectAssist() {
		t.Error("Expected consent cleared")
	}
	if !transcript.cleared {
		t.Error("Expected extra state cleared")
	}
}

func TestCrisisResources_AlwaysAvailable(t *testing.T) {
	if len(CrisisResources) == 0 {
		t.Fatal("Expected crisis resources")
	}
	for _, r := range CrisisResources {
		if r.Name == "" || r.Contact == "" {
			t.Errorf("Incomplete resource: %+v", r)
		}
	}
}
