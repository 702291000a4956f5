package resolver

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/OCAP2/aar/internal/classify"
	"github.com/OCAP2/aar/pkg/core"
)

const forever = time.Duration(math.MaxInt64)

// shot is a ShotRecord plus the lifetime of its weapon id. Ids can be reused
// by the log, so a weapon id only refers to this shot in [FireTime, until).
type shot struct {
	rec   core.ShotRecord
	until time.Duration
}

func (s *shot) alive(t time.Duration) bool {
	return t >= s.rec.FireTime && t < s.until
}

// arena owns the unit outcome events still available for linking.
// Consuming an event removes it from pool; every phase receives the arena
// explicitly and nothing else mutates it.
type arena struct {
	events []core.Event
	pool   map[int]struct{}

	bySubject map[core.ObjectID][]int
	byActor   map[core.ObjectID][]int
	buckets   map[int64][]int
	width     time.Duration

	shots     []*shot
	byWeapon  map[core.ObjectID][]int // weapon id -> shot indexes, by fire time
	shooters  map[core.ObjectID]struct{}
	weaponEnd map[core.ObjectID][]int // destructions of weapon objects
	removals  map[core.ObjectID][]int

	anomalies core.Anomalies
}

func newArena(events []core.Event, width time.Duration, cls Classifier) *arena {
	a := &arena{
		events:    events,
		pool:      make(map[int]struct{}),
		bySubject: make(map[core.ObjectID][]int),
		byActor:   make(map[core.ObjectID][]int),
		buckets:   make(map[int64][]int),
		width:     width,
		byWeapon:  make(map[core.ObjectID][]int),
		shooters:  make(map[core.ObjectID]struct{}),
		weaponEnd: make(map[core.ObjectID][]int),
		removals:  make(map[core.ObjectID][]int),
	}
	a.extractShots(cls)

	known := make(map[core.ObjectID]struct{}, len(events))
	for _, e := range events {
		known[e.ID] = struct{}{}
		if e.Kind == core.KindFired {
			known[e.ActorID] = struct{}{}
		}
	}

	for i, e := range events {
		switch {
		case e.Kind == core.KindRemoved:
			a.removals[e.ID] = append(a.removals[e.ID], i)
			continue
		case !e.Kind.IsOutcome():
			continue
		}

		if e.ActorID != 0 {
			if _, ok := known[e.ActorID]; !ok {
				a.anomalies.UnknownActors++
			}
		}

		subject := e.Subject()
		if a.weaponAt(subject, e.Time) != nil {
			a.weaponEnd[subject] = append(a.weaponEnd[subject], i)
			continue
		}
		if _, fired := a.byWeapon[subject]; fired || classify.IsWeapon(e.SubjectType()) {
			a.anomalies.StaleWeaponEvents++
			continue
		}

		a.pool[i] = struct{}{}
		a.bySubject[subject] = append(a.bySubject[subject], i)
		if e.ActorID != 0 {
			a.byActor[e.ActorID] = append(a.byActor[e.ActorID], i)
		}
		b := a.bucket(e.Time)
		a.buckets[b] = append(a.buckets[b], i)
	}
	return a
}

// extractShots promotes Fired events to shots ordered by fire time, then weapon id.
func (a *arena) extractShots(cls Classifier) {
	for _, e := range a.events {
		if e.Kind != core.KindFired {
			continue
		}
		weaponType := e.WeaponType
		if weaponType == "" {
			weaponType = e.Name
		}
		rec := core.ShotRecord{
			WeaponID:         e.ID,
			ShooterID:        e.ActorID,
			ShooterName:      e.ActorName,
			ShooterPilot:     e.ActorPilot,
			ShooterCoalition: e.Coalition,
			DeclaredTargetID: e.TargetID,
			DeclaredTarget:   e.TargetName,
			DeclaredType:     e.TargetType,
			FireTime:         e.Time,
			WeaponType:       weaponType,
			WeaponCategory:   e.Type,
			Position:         e.Position,
			Rounds:           max(e.Occurrences, 1),
		}
		rec.Domain = cls.ClassifyShot(rec.WeaponType, rec.WeaponCategory, classify.KindOf(rec.DeclaredType)).Domain
		a.shots = append(a.shots, &shot{rec: rec, until: forever})
		a.shooters[e.ActorID] = struct{}{}
	}

	sort.SliceStable(a.shots, func(i, j int) bool {
		si, sj := a.shots[i].rec, a.shots[j].rec
		if si.FireTime != sj.FireTime {
			return si.FireTime < sj.FireTime
		}
		return si.WeaponID < sj.WeaponID
	})

	for k, s := range a.shots {
		prev := a.byWeapon[s.rec.WeaponID]
		if n := len(prev); n > 0 {
			a.shots[prev[n-1]].until = s.rec.FireTime
		}
		a.byWeapon[s.rec.WeaponID] = append(prev, k)
	}
}

func (a *arena) bucket(t time.Duration) int64 {
	return int64(math.Floor(float64(t) / float64(a.width)))
}

func (a *arena) available(i int) bool {
	_, ok := a.pool[i]
	return ok
}

func (a *arena) consume(i int) {
	delete(a.pool, i)
}

// between calls fn for each pooled event with from <= time <= to, in stream
// order, until fn returns false.
func (a *arena) between(from, to time.Duration, fn func(i int) bool) {
	if to < from {
		return
	}
	for b := a.bucket(from); b <= a.bucket(to); b++ {
		for _, i := range a.buckets[b] {
			t := a.events[i].Time
			if t < from || t > to || !a.available(i) {
				continue
			}
			if !fn(i) {
				return
			}
		}
	}
}

// weaponAt returns the shot whose weapon id is id at time t.
func (a *arena) weaponAt(id core.ObjectID, t time.Duration) *shot {
	if id == 0 {
		return nil
	}
	for _, k := range a.byWeapon[id] {
		if s := a.shots[k]; s.alive(t) {
			return s
		}
	}
	return nil
}

// attributedElsewhere reports whether event i names a live weapon other than s as its actor.
func (a *arena) attributedElsewhere(i int, s *shot) bool {
	e := a.events[i]
	w := a.weaponAt(e.ActorID, e.Time)
	return w != nil && w != s
}

// interception returns the first destruction of the shot's own weapon object
// strictly after it was fired.
func (a *arena) interception(s *shot) (core.Event, bool) {
	for _, i := range a.weaponEnd[s.rec.WeaponID] {
		e := a.events[i]
		if e.Time > s.rec.FireTime && e.Time < s.until {
			return e, true
		}
	}
	return core.Event{}, false
}

// windowEnd is the last time a declared-target or heuristic match may occur:
// the domain window, cut short RemovalGrace after the weapon was removed
// from the log.
func (a *arena) windowEnd(s *shot, opts Options) time.Duration {
	end := s.rec.FireTime + opts.Window(s.rec.Domain)
	for _, i := range a.removals[s.rec.WeaponID] {
		t := a.events[i].Time
		if !s.alive(t) {
			continue
		}
		if cut := t + opts.RemovalGrace; cut < end {
			end = cut
		}
		break
	}
	return end
}

// weaponTypeMatches reports whether event i is compatible with the shot's
// weapon type. Events that name no weapon are compatible with any.
func (a *arena) weaponTypeMatches(i int, s *shot) bool {
	wt := a.events[i].WeaponType
	if wt == "" || s.rec.WeaponType == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(wt), strings.TrimSpace(s.rec.WeaponType))
}

// remaining returns the pooled event indexes in stream order.
func (a *arena) remaining() []int {
	out := make([]int, 0, len(a.pool))
	for i := range a.pool {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
