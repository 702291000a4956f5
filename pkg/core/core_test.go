package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventSubject(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want ObjectID
	}{
		{"target set", Event{ID: 1, TargetID: 2}, 2},
		{"target absent", Event{ID: 1}, 1},
		{"target equals id", Event{ID: 3, TargetID: 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.Subject())
		})
	}
}

func TestEventSubjectName(t *testing.T) {
	e := Event{ID: 1, Name: "weapon", TargetID: 2, TargetName: "Su-27", TargetType: "Aircraft"}
	assert.Equal(t, "Su-27", e.SubjectName())
	assert.Equal(t, "Aircraft", e.SubjectType())

	e = Event{ID: 2, Name: "Su-27", Type: "Aircraft"}
	assert.Equal(t, "Su-27", e.SubjectName())
	assert.Equal(t, "Aircraft", e.SubjectType())
}

func TestEventKind(t *testing.T) {
	assert.True(t, KindFired.Valid())
	assert.True(t, KindTakenOff.Valid())
	assert.False(t, EventKind("Exploded").Valid())
	assert.False(t, EventKind("").Valid())

	assert.True(t, KindHit.IsOutcome())
	assert.True(t, KindDestroyed.IsOutcome())
	assert.False(t, KindRemoved.IsOutcome())
	assert.False(t, KindFired.IsOutcome())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 10*time.Second, Seconds(10))
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
	assert.Equal(t, 61911780*time.Millisecond, Seconds(61911.78))
}

func TestPilotKey(t *testing.T) {
	assert.Equal(t, "Streak", ShotRecord{ShooterPilot: "Streak", ShooterName: "F-15C"}.PilotKey())
	assert.Equal(t, "F-15C", ShotRecord{ShooterName: "F-15C"}.PilotKey())
	assert.Equal(t, "#42", ShotRecord{ShooterID: 42}.PilotKey())
}

func TestChainSetGrouping(t *testing.T) {
	cs := &ChainSet{Chains: []Chain{
		{Shot: ShotRecord{WeaponID: 10, ShooterID: 1, ShooterPilot: "viper"}, Outcome: OutcomeKill},
		{Shot: ShotRecord{WeaponID: 11, ShooterID: 2, ShooterPilot: "Alpha"}, Outcome: OutcomeMiss},
		{Shot: ShotRecord{WeaponID: 12, ShooterID: 1, ShooterPilot: "viper"}, Outcome: OutcomeIntercepted},
	}}

	assert.Equal(t, 3, cs.Len())

	byShooter := cs.ByShooter()
	assert.Len(t, byShooter[1], 2)
	assert.Equal(t, ObjectID(10), byShooter[1][0].Shot.WeaponID)
	assert.Equal(t, ObjectID(12), byShooter[1][1].Shot.WeaponID)

	byPilot := cs.ByPilot()
	assert.Len(t, byPilot["viper"], 2)
	assert.Len(t, byPilot["Alpha"], 1)

	assert.Equal(t, []string{"Alpha", "viper"}, cs.Pilots())

	misses := cs.Misses()
	assert.Len(t, misses, 2)
}

func TestOutcomeReached(t *testing.T) {
	assert.True(t, OutcomeHit.Reached())
	assert.True(t, OutcomeKill.Reached())
	assert.False(t, OutcomeMiss.Reached())
	assert.False(t, OutcomeIntercepted.Reached())
}

func TestAnomaliesTotal(t *testing.T) {
	a := Anomalies{OrphanedOutcomes: 2, ClockSkew: 1, ShooterMismatches: 3}
	assert.Equal(t, 6, a.Total())
}
