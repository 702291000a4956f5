package resolver

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/OCAP2/aar/internal/classify"
	"github.com/OCAP2/aar/internal/geo"
	"github.com/OCAP2/aar/pkg/core"
)

// proposal is the ranked candidate list for one shot. Fallback candidates
// are only used when no preferred candidate is still available at commit.
type proposal struct {
	preferred []int
	fallback  []int
}

type candidate struct {
	i    int
	dist float64
}

// heuristicPass matches the shots the deterministic pass left open.
// Proposals are computed in parallel over the read-only arena, then
// committed single-threaded in fire order so earlier shots win conflicts.
func (st *state) heuristicPass(ctx context.Context, workers int) error {
	var pending []int
	for k := range st.a.shots {
		if !st.links[k].settled {
			pending = append(pending, k)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	proposals := make([]proposal, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for j, k := range pending {
		j, k := j, k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			proposals[j] = st.propose(k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for j, k := range pending {
		if i, ok := st.pick(proposals[j]); ok {
			st.accept(k, i, core.MethodHeuristic)
		} else {
			st.unmatched(k)
		}
	}
	return nil
}

// propose must not mutate the arena.
func (st *state) propose(k int) proposal {
	a := st.a
	s := a.shots[k]

	var cands []candidate
	a.between(s.rec.FireTime, a.windowEnd(s, st.opts), func(i int) bool {
		e := a.events[i]
		if e.Subject() == s.rec.ShooterID || a.attributedElsewhere(i, s) || !a.weaponTypeMatches(i, s) {
			return true
		}
		c := candidate{i: i, dist: math.Inf(1)}
		if s.rec.Position != nil && e.Position != nil {
			c.dist = geo.Distance(*s.rec.Position, *e.Position)
		}
		cands = append(cands, c)
		return true
	})

	// nearest first when positions are known, then earliest, then lowest id
	sort.SliceStable(cands, func(x, y int) bool {
		cx, cy := cands[x], cands[y]
		if cx.dist != cy.dist {
			return cx.dist < cy.dist
		}
		ex, ey := a.events[cx.i], a.events[cy.i]
		if ex.Time != ey.Time {
			return ex.Time < ey.Time
		}
		if ex.Subject() != ey.Subject() {
			return ex.Subject() < ey.Subject()
		}
		return cx.i < cy.i
	})

	var p proposal
	for _, c := range cands {
		if preferredTarget(s.rec.Domain, classify.KindOf(a.events[c.i].SubjectType())) {
			p.preferred = append(p.preferred, c.i)
		} else {
			p.fallback = append(p.fallback, c.i)
		}
	}
	return p
}

func preferredTarget(d core.Domain, kind classify.TargetKind) bool {
	switch d {
	case core.DomainAA:
		return kind == classify.TargetAir
	case core.DomainAG:
		return kind == classify.TargetSurface
	default:
		return true
	}
}

// pick returns the first candidate still available, preferring the domain
// compatible list.
func (st *state) pick(p proposal) (int, bool) {
	for _, list := range [][]int{p.preferred, p.fallback} {
		for _, i := range list {
			if st.a.available(i) && !st.followUp(i) {
				return i, true
			}
		}
	}
	return 0, false
}
