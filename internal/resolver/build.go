package resolver

import (
	"github.com/OCAP2/aar/internal/classify"
	"github.com/OCAP2/aar/internal/friendly"
	"github.com/OCAP2/aar/pkg/core"
)

// build freezes the resolution state into a ChainSet.
func (st *state) build(cls Classifier) *core.ChainSet {
	a := st.a
	set := &core.ChainSet{
		Chains:    make([]core.Chain, len(a.shots)),
		Orphans:   make([]core.Event, 0),
		Anomalies: a.anomalies,
	}

	for k, s := range a.shots {
		l := st.links[k]
		c := core.Chain{
			Shot:    s.rec,
			Outcome: l.outcome,
			Method:  l.method,
		}

		if l.outcome == core.OutcomeIntercepted && l.interceptor != nil {
			c.Intercepted = true
			c.InterceptorID = l.interceptor.ActorID
			c.InterceptorName = l.interceptor.ActorName
		}

		if l.hit >= 0 {
			hit := a.events[l.hit]
			hitTime := hit.Time
			c.HitTime = &hitTime
			c.HitEvent = &hit
			c.TargetID = hit.Subject()
			c.TargetName = hit.SubjectName()
			c.TargetType = hit.SubjectType()
			c.TargetCoalition = hit.Coalition
			c.ShooterMismatch = st.mismatch(s, hit)

			if l.kill >= 0 {
				kill := a.events[l.kill]
				killTime := kill.Time
				if killTime < hitTime {
					killTime = hitTime
					set.Anomalies.ClockSkew++
				}
				c.KillTime = &killTime
				c.KillEvent = &kill
				if l.kill != l.hit && st.mismatch(s, kill) {
					c.ShooterMismatch = true
				}
			}
		}

		targetType := c.TargetType
		if targetType == "" {
			targetType = s.rec.DeclaredType
		}
		res := cls.ClassifyShot(s.rec.WeaponType, s.rec.WeaponCategory, classify.KindOf(targetType))
		c.Domain = res.Domain
		c.DomainMismatch = res.Inconsistent

		flags := friendly.Evaluate(s.rec.ShooterCoalition, c.TargetCoalition, c.Outcome)
		c.Friendly = flags.Friendly
		c.FriendlyHit = flags.FriendlyHit
		c.FriendlyKill = flags.FriendlyKill

		c.ExtraKills = len(l.extra)
		c.ExtraKillNames = l.extra
		c.ExtraHits = len(l.rippleHits)
		c.ExtraHitNames = l.rippleHits

		if c.ShooterMismatch {
			set.Anomalies.ShooterMismatches++
		}
		if c.DomainMismatch {
			set.Anomalies.DomainMismatches++
		}
		set.Chains[k] = c
	}

	for _, i := range a.remaining() {
		set.Orphans = append(set.Orphans, a.events[i])
	}
	set.Anomalies.OrphanedOutcomes = len(set.Orphans)
	return set
}

// mismatch reports whether e names an actor other than the shot's shooter
// or one of the shooter's own weapons.
func (st *state) mismatch(s *shot, e core.Event) bool {
	if e.ActorID == 0 || e.ActorID == s.rec.ShooterID {
		return false
	}
	if w := st.a.weaponAt(e.ActorID, e.Time); w != nil && w.rec.ShooterID == s.rec.ShooterID {
		return false
	}
	return true
}
