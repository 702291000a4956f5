package core

import (
	"math"
	"time"
)

// ObjectID identifies a unit or weapon instance within one log. Zero means absent.
type ObjectID uint64

// EventKind is the kind of a log occurrence.
type EventKind string

const (
	KindFired     EventKind = "Fired"
	KindHit       EventKind = "Hit"
	KindDestroyed EventKind = "Destroyed"
	KindRemoved   EventKind = "Removed"
	KindEjected   EventKind = "Ejected"
	KindLanded    EventKind = "Landed"
	KindTakenOff  EventKind = "TakenOff"
)

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindFired, KindHit, KindDestroyed, KindRemoved, KindEjected, KindLanded, KindTakenOff:
		return true
	}
	return false
}

// IsOutcome reports whether events of this kind can terminate an engagement.
func (k EventKind) IsOutcome() bool {
	return k == KindHit || k == KindDestroyed
}

// Event is a single normalized log occurrence.
//
// For Fired, ID is the weapon instance, ActorID the launcher and TargetID the
// declared target. For Hit and Destroyed, ActorID is the destroying object if
// known and TargetID (or ID when TargetID is absent) is the object affected.
type Event struct {
	ID         ObjectID      `json:"id"`
	Kind       EventKind     `json:"kind"`
	Time       time.Duration `json:"time"`
	ActorID    ObjectID      `json:"actorId,omitempty"`
	TargetID   ObjectID      `json:"targetId,omitempty"`
	WeaponType string        `json:"weaponType,omitempty"`
	Coalition  string        `json:"coalition,omitempty"`
	Position   *Position3D   `json:"position,omitempty"`

	Name  string `json:"name,omitempty"`
	Type  string `json:"type,omitempty"`
	Pilot string `json:"pilot,omitempty"`

	ActorName  string `json:"actorName,omitempty"`
	ActorPilot string `json:"actorPilot,omitempty"`

	TargetName string `json:"targetName,omitempty"`
	TargetType string `json:"targetType,omitempty"`

	// Occurrences is the number of rounds a Fired record stands for, as in
	// a bomb ripple. Zero means one.
	Occurrences int `json:"occurrences,omitempty"`
}

// Subject returns the object an outcome event is about.
func (e Event) Subject() ObjectID {
	if e.TargetID != 0 {
		return e.TargetID
	}
	return e.ID
}

// SubjectName returns the display name of Subject.
func (e Event) SubjectName() string {
	if e.TargetID != 0 && e.TargetID != e.ID && e.TargetName != "" {
		return e.TargetName
	}
	return e.Name
}

// SubjectType returns the object type tags of Subject.
func (e Event) SubjectType() string {
	if e.TargetID != 0 && e.TargetID != e.ID && e.TargetType != "" {
		return e.TargetType
	}
	return e.Type
}

// Seconds converts a mission-relative time in seconds to a Duration,
// rounded to the nearest microsecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s*1e6)) * time.Microsecond
}
