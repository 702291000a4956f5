// Package friendly decides whether an engagement was friendly fire.
package friendly

import (
	"strings"

	"github.com/OCAP2/aar/pkg/core"
)

// Flags are the friendly-fire markers attached to a chain.
type Flags struct {
	Friendly     bool
	FriendlyHit  bool
	FriendlyKill bool
}

// SameCoalition compares two coalitions case-insensitively. An empty
// coalition never matches.
func SameCoalition(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// Evaluate returns the flags for a shot that reached the given stage.
// Miss and Intercepted never carry friendly flags.
func Evaluate(shooterCoalition, targetCoalition string, stage core.Outcome) Flags {
	if !stage.Reached() || !SameCoalition(shooterCoalition, targetCoalition) {
		return Flags{}
	}
	return Flags{
		Friendly:     true,
		FriendlyHit:  true,
		FriendlyKill: stage == core.OutcomeKill,
	}
}
