package speech

import "strings"

// Voice describes one available synthesis voice
type Voice struct {
	Name string
	Lang string
}

// femaleMarkers are name fragments that identify a female-presenting voice
// across common synthesis engines.
var femaleMarkers = []string{"female", "woman", "samantha", "karen"}

// PickVoice chooses a synthesis voice. A "female" hint applies the name
// heuristic; any other hint matches by substring. The first voice is the
// fallback either way, and an empty set yields the zero Voice.
func PickVoice(voices []Voice, hint string) Voice {
	if len(voices) == 0 {
		return Voice{}
	}

	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return voices[0]
	}

	markers := []string{hint}
	if hint == "female" {
		markers = femaleMarkers
	}

	for _, marker := range markers {
		for _, v := range voices {
			if strings.Contains(strings.ToLower(v.Name), marker) {
				return v
			}
		}
	}
	return voices[0]
}
