package resolver

import (
	"strconv"
	"time"

	"github.com/OCAP2/aar/internal/geo"
	"github.com/OCAP2/aar/pkg/core"
)

// linkKills attaches later destructions of a hit target to the shot with
// the most recent hit on it.
func (st *state) linkKills() {
	a := st.a
	for _, i := range a.remaining() {
		e := a.events[i]
		if e.Kind != core.KindDestroyed {
			continue
		}
		k, ok := st.killer(e)
		if !ok {
			continue
		}
		l := &st.links[k]
		hitTime := a.events[l.hit].Time
		if l.kill < 0 || (l.kill == l.hit && e.Time > hitTime) {
			l.kill = i
			l.outcome = core.OutcomeKill
		}
		// repeated destructions of a killed target stay with its killer
		a.consume(i)
	}
}

func (st *state) killer(e core.Event) (int, bool) {
	best, found := 0, false
	for _, k := range st.hits[e.Subject()] {
		hitTime := st.a.events[st.links[k].hit].Time
		if hitTime > e.Time+st.opts.KillTolerance {
			continue
		}
		if st.opts.KillLinkWindow > 0 && e.Time-hitTime > st.opts.KillLinkWindow {
			continue
		}
		if !found || hitTime > st.a.events[st.links[best].hit].Time {
			best, found = k, true
		}
	}
	return best, found
}

// rippleTarget is a target reached by a non-primary round of shot.
type rippleTarget struct {
	shot int
	at   time.Duration
}

// collectRipple lets a shot that released several rounds under one weapon id
// absorb the outcome events of its other rounds, one new target per round.
// Later destructions of those targets become extra kills of the shot.
func (st *state) collectRipple() {
	a := st.a
	open := make(map[core.ObjectID]rippleTarget)
	for k, s := range a.shots {
		l := &st.links[k]
		if s.rec.Rounds < 2 || !l.outcome.Reached() {
			continue
		}
		primary := a.events[l.hit].Subject()
		rounds := s.rec.Rounds - 1
		for _, i := range a.byActor[s.rec.WeaponID] {
			e := a.events[i]
			if !a.available(i) || !s.alive(e.Time) {
				continue
			}
			subject := e.Subject()
			switch {
			case subject == primary:
				a.consume(i)
			case l.ripple[subject]:
				if _, pending := open[subject]; pending && e.Kind == core.KindDestroyed {
					l.extra = append(l.extra, displayName(e))
					delete(open, subject)
				}
				a.consume(i)
			case rounds > 0:
				rounds--
				if l.ripple == nil {
					l.ripple = make(map[core.ObjectID]bool)
				}
				l.ripple[subject] = true
				l.rippleHits = append(l.rippleHits, displayName(e))
				if e.Kind == core.KindDestroyed {
					l.extra = append(l.extra, displayName(e))
				} else {
					open[subject] = rippleTarget{shot: k, at: e.Time}
				}
				a.consume(i)
			}
		}
	}
	if len(open) == 0 {
		return
	}

	for _, i := range a.remaining() {
		e := a.events[i]
		rt, ok := open[e.Subject()]
		if !ok || e.Kind != core.KindDestroyed || rt.at > e.Time+st.opts.KillTolerance {
			continue
		}
		if st.opts.KillLinkWindow > 0 && e.Time-rt.at > st.opts.KillLinkWindow {
			continue
		}
		l := &st.links[rt.shot]
		l.extra = append(l.extra, displayName(e))
		delete(open, e.Subject())
		a.consume(i)
	}
}

// collectSplash appends destructions close to a hit, in time and either
// attribution or distance, to that shot as extra kills.
func (st *state) collectSplash() {
	a := st.a
	for k, s := range a.shots {
		l := &st.links[k]
		if !l.outcome.Reached() {
			continue
		}
		hit := a.events[l.hit]
		seen := map[core.ObjectID]bool{hit.Subject(): true}
		for subject := range l.ripple {
			seen[subject] = true
		}
		a.between(hit.Time, hit.Time+st.opts.SplashWindow, func(i int) bool {
			e := a.events[i]
			if e.Kind != core.KindDestroyed || !st.splashes(s, hit, e) {
				return true
			}
			a.consume(i)
			if subject := e.Subject(); !seen[subject] {
				seen[subject] = true
				l.extra = append(l.extra, displayName(e))
			}
			return true
		})
	}
}

func (st *state) splashes(s *shot, hit, e core.Event) bool {
	if e.ActorID == s.rec.WeaponID && s.alive(e.Time) {
		return true
	}
	if e.ActorID != 0 && e.ActorID != s.rec.ShooterID {
		return false
	}
	if hit.Position == nil || e.Position == nil {
		return false
	}
	return geo.Distance(*hit.Position, *e.Position) <= st.opts.SplashRadius
}

func displayName(e core.Event) string {
	if n := e.SubjectName(); n != "" {
		return n
	}
	return "#" + strconv.FormatUint(uint64(e.Subject()), 10)
}
