package resolver

import (
	"github.com/OCAP2/aar/pkg/core"
)

// link is the mutable resolution state of one shot. Indexes refer to
// arena.events; -1 means absent.
type link struct {
	settled     bool
	outcome     core.Outcome
	method      core.Method
	hit         int
	kill        int
	interceptor *core.Event
	extra       []string
	// ripple holds the targets reached by the other rounds of a ripple.
	ripple     map[core.ObjectID]bool
	rippleHits []string
}

type state struct {
	a     *arena
	opts  Options
	links []link
	// hits maps a target to the shots whose primary link is on it.
	hits map[core.ObjectID][]int
}

func newState(a *arena, opts Options) *state {
	st := &state{
		a:     a,
		opts:  opts,
		links: make([]link, len(a.shots)),
		hits:  make(map[core.ObjectID][]int),
	}
	for k := range st.links {
		st.links[k].hit = -1
		st.links[k].kill = -1
	}
	return st
}

// accept settles shot k on event i, unless the weapon was destroyed before
// reaching it. An intercepted shot leaves i in the pool.
func (st *state) accept(k, i int, m core.Method) {
	s := st.a.shots[k]
	l := &st.links[k]
	l.settled = true

	e := st.a.events[i]
	if ic, ok := st.a.interception(s); ok && ic.Time < e.Time {
		l.outcome = core.OutcomeIntercepted
		l.interceptor = &ic
		return
	}

	st.a.consume(i)
	l.method = m
	l.hit = i
	l.outcome = core.OutcomeHit
	if e.Kind == core.KindDestroyed {
		l.outcome = core.OutcomeKill
		l.kill = i
	}
	st.hits[e.Subject()] = append(st.hits[e.Subject()], k)
}

// unmatched settles shot k with no candidate as Intercepted or Miss.
func (st *state) unmatched(k int) {
	s := st.a.shots[k]
	l := &st.links[k]
	l.settled = true
	if ic, ok := st.a.interception(s); ok && ic.Time <= st.a.windowEnd(s, st.opts) {
		l.outcome = core.OutcomeIntercepted
		l.interceptor = &ic
		return
	}
	l.outcome = core.OutcomeMiss
}

// followUp reports whether event i is a later destruction of a target that
// some shot already hit. Those belong to the hitting shot as its kill.
func (st *state) followUp(i int) bool {
	e := st.a.events[i]
	if e.Kind != core.KindDestroyed {
		return false
	}
	for _, k := range st.hits[e.Subject()] {
		if st.a.events[st.links[k].hit].Time <= e.Time+st.opts.KillTolerance {
			return true
		}
	}
	return false
}

func (st *state) count(m core.Method) int {
	n := 0
	for _, l := range st.links {
		if l.method == m {
			n++
		}
	}
	return n
}
