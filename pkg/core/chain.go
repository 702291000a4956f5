package core

import (
	"strconv"
	"time"
)

// Domain is the engagement domain of a weapon or chain.
type Domain string

const (
	DomainAA      Domain = "AA"
	DomainAG      Domain = "AG"
	DomainUnknown Domain = "Unknown"
)

// Outcome is the terminal classification of a chain.
type Outcome string

const (
	OutcomeHit         Outcome = "Hit"
	OutcomeKill        Outcome = "Kill"
	OutcomeMiss        Outcome = "Miss"
	OutcomeIntercepted Outcome = "Intercepted"
)

// Reached reports whether the outcome got as far as a target.
func (o Outcome) Reached() bool {
	return o == OutcomeHit || o == OutcomeKill
}

// Method records how a chain was linked to its outcome event.
type Method string

const (
	MethodDeterministic Method = "Deterministic"
	MethodHeuristic     Method = "Heuristic"
)

// ShotRecord is a Fired event promoted to a trackable entity.
type ShotRecord struct {
	WeaponID         ObjectID      `json:"weaponId"`
	ShooterID        ObjectID      `json:"shooterId"`
	ShooterName      string        `json:"shooterName,omitempty"`
	ShooterPilot     string        `json:"shooterPilot,omitempty"`
	ShooterCoalition string        `json:"shooterCoalition,omitempty"`
	DeclaredTargetID ObjectID      `json:"declaredTargetId,omitempty"`
	DeclaredTarget   string        `json:"declaredTarget,omitempty"`
	DeclaredType     string        `json:"declaredTargetType,omitempty"`
	FireTime         time.Duration `json:"fireTime"`
	WeaponType       string        `json:"weaponType,omitempty"`
	WeaponCategory   string        `json:"weaponCategory,omitempty"`
	Domain           Domain        `json:"domain"`
	Position         *Position3D   `json:"position,omitempty"`
	// Rounds is the number of munitions released under WeaponID, at least one.
	Rounds int `json:"rounds"`
}

// PilotKey is the grouping key for per-pilot views: the pilot name, else the
// shooter name, else the shooter id.
func (s ShotRecord) PilotKey() string {
	if s.ShooterPilot != "" {
		return s.ShooterPilot
	}
	if s.ShooterName != "" {
		return s.ShooterName
	}
	return "#" + strconv.FormatUint(uint64(s.ShooterID), 10)
}

// Chain is the resolved outcome of one shot.
type Chain struct {
	Shot    ShotRecord     `json:"shot"`
	Outcome Outcome        `json:"outcome"`
	Method  Method         `json:"method,omitempty"`
	HitTime *time.Duration `json:"hitTime,omitempty"`
	// KillTime is never earlier than HitTime.
	KillTime *time.Duration `json:"killTime,omitempty"`

	TargetID        ObjectID `json:"targetId,omitempty"`
	TargetName      string   `json:"targetName,omitempty"`
	TargetType      string   `json:"targetType,omitempty"`
	TargetCoalition string   `json:"targetCoalition,omitempty"`

	ShooterMismatch bool `json:"shooterMismatch"`
	Friendly        bool `json:"friendly"`
	FriendlyHit     bool `json:"friendlyHit"`
	FriendlyKill    bool `json:"friendlyKill"`

	Domain         Domain `json:"domain"`
	DomainMismatch bool   `json:"domainMismatch,omitempty"`

	ExtraKills     int      `json:"extraKills"`
	ExtraKillNames []string `json:"extraKillNames,omitempty"`

	// ExtraHits are further targets reached by the other rounds of a ripple.
	ExtraHits     int      `json:"extraHits"`
	ExtraHitNames []string `json:"extraHitNames,omitempty"`

	Intercepted     bool     `json:"intercepted"`
	InterceptorID   ObjectID `json:"interceptorId,omitempty"`
	InterceptorName string   `json:"interceptorName,omitempty"`

	// HitEvent and KillEvent are the outcome events linked to this chain.
	HitEvent  *Event `json:"-"`
	KillEvent *Event `json:"-"`
}
