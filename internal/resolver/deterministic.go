package resolver

import "github.com/OCAP2/aar/pkg/core"

// explicitPass links each shot to the earliest event the log attributes to
// its weapon instance. Runs single-threaded in fire order.
func (st *state) explicitPass() {
	a := st.a
	for k, s := range a.shots {
		for _, i := range a.byActor[s.rec.WeaponID] {
			if !s.alive(a.events[i].Time) || !a.available(i) {
				continue
			}
			st.accept(k, i, core.MethodDeterministic)
			break
		}
	}
}

// declaredPass links remaining shots to the earliest admissible event on
// their declared target within the domain window. Earlier shots claim first.
func (st *state) declaredPass() {
	a := st.a
	for k, s := range a.shots {
		if st.links[k].settled || s.rec.DeclaredTargetID == 0 {
			continue
		}
		end := a.windowEnd(s, st.opts)
		for _, i := range a.bySubject[s.rec.DeclaredTargetID] {
			t := a.events[i].Time
			if t < s.rec.FireTime {
				continue
			}
			if t > end {
				break
			}
			if !a.available(i) || !st.uncontested(i, s) || !a.weaponTypeMatches(i, s) || st.followUp(i) {
				continue
			}
			st.accept(k, i, core.MethodDeterministic)
			break
		}
	}
}

// uncontested reports whether event i names no competing weapon or shooter.
func (st *state) uncontested(i int, s *shot) bool {
	a := st.a
	if a.attributedElsewhere(i, s) {
		return false
	}
	actor := a.events[i].ActorID
	if actor == 0 || actor == s.rec.ShooterID || actor == s.rec.WeaponID {
		return true
	}
	_, isShooter := a.shooters[actor]
	return !isShooter
}
