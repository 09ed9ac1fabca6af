// Package safety holds the crisis resources and the quick-exit path. Both
// exist for moments when the user needs help, or needs the app gone, right
// now; nothing here may depend on the network.
package safety

import (
	"github.com/mathieufiani/matercare-hophacks-2025/internal/api"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/observability"
	"github.com/mathieufiani/matercare-hophacks-2025/internal/session"
)

// Resource is one crisis support contact
type Resource struct {
	Name    string
	Contact string
	Note    string
}

// CrisisResources are shown whenever the crisis affordance is raised
var CrisisResources = []Resource{
	{
		Name:    "988 Suicide & Crisis Lifeline",
		Contact: "Call or text 988",
		Note:    "24/7, free and confidential",
	},
	{
		Name:    "Crisis Text Line",
		Contact: "Text HOME to 741741",
		Note:    "24/7 text support",
	},
	{
		Name:    "National Maternal Mental Health Hotline",
		Contact: "1-833-TLC-MAMA (1-833-852-6262)",
		Note:    "24/7 support for pregnant and postpartum parents",
	},
	{
		Name:    "Emergency services",
		Contact: "Call 911",
		Note:    "If you or your baby are in immediate danger",
	},
}

// quickExitURL is a neutral page the browser lands on after a quick exit
const quickExitURL = "https://weather.com"

// ShouldShowCrisisBanner reports whether a reply calls for the crisis
// affordance: an explicit escalation directive or a high risk reading.
func ShouldShowCrisisBanner(riskLevel, nextAction string) bool {
	return nextAction == api.ActionEscalate || riskLevel == api.RiskHigh
}

// QuickExitURL returns the neutral destination for the quick-exit affordance
func QuickExitURL() string {
	return quickExitURL
}

// Clearer is anything holding per-session state the quick exit must drop
type Clearer interface {
	Clear()
}

// QuickExit wipes the session: credentials, consent flags and any other
// per-session state handed in. It returns the neutral URL to navigate to.
func QuickExit(store session.Store, consents *session.ConsentStore, extra ...Clearer) string {
	store.Clear()
	if consents != nil {
		consents.Clear()
	}
	for _, c := range extra {
		if c != nil {
			c.Clear()
		}
	}

	logger := observability.WithComponent("safety")
	logger.Info().Msg("Quick exit: session state cleared")
	return quickExitURL
}
