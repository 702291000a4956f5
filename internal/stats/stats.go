// Package stats aggregates resolved chains into per-pilot after-action totals.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/OCAP2/aar/pkg/core"
)

// FlightEnd is how a flight ended.
type FlightEnd string

const (
	EndLanded   FlightEnd = "Landed"
	EndEjected  FlightEnd = "Ejected"
	EndShotDown FlightEnd = "Shot down"
)

// UnknownTarget names kills whose target carried no name.
const UnknownTarget = "Unknown Aircraft"

// Flight spans a pilot's first take-off to the first end event after it.
type Flight struct {
	TakeOff time.Duration `json:"takeOff"`
	End     time.Duration `json:"end"`
	Reason  FlightEnd     `json:"reason"`
}

func (f Flight) Duration() time.Duration {
	return f.End - f.TakeOff
}

// WeaponStats are one pilot's results with one weapon.
type WeaponStats struct {
	Weapon      string `json:"weapon"`
	Category    string `json:"category,omitempty"`
	Shots       int    `json:"shots"`
	Hits        int    `json:"hits"`
	Kills       int    `json:"kills"`
	Misses      int    `json:"misses"`
	Intercepted int    `json:"intercepted"`
}

// PilotStats are one pilot's totals. Hits include shots that went on to kill,
// so Shots == Hits + Misses + Intercepted.
type PilotStats struct {
	Pilot       string        `json:"pilot"`
	Shots       int           `json:"shots"`
	Hits        int           `json:"hits"`
	Kills       int           `json:"kills"`
	Misses      int           `json:"misses"`
	Intercepted int           `json:"intercepted"`
	Friendly    int           `json:"friendly"`
	ExtraKills  int           `json:"extraKills"`
	Weapons     []WeaponStats `json:"weapons,omitempty"`
	Flight      *Flight       `json:"flight,omitempty"`
}

// TargetKills counts air-to-air kills of one target type.
type TargetKills struct {
	Target string `json:"target"`
	Kills  int    `json:"kills"`
}

// Report is the aggregate view of one resolved stream.
type Report struct {
	Pilots   []PilotStats  `json:"pilots"`
	AAKills  []TargetKills `json:"aaKills"`
	Excluded int           `json:"excludedShells"`
	// Unpiloted counts chains fired by units without a pilot, such as SAM
	// sites and AI aircraft. They count toward AAKills but no pilot total.
	Unpiloted int `json:"unpilotedShots"`
}

// Pilot returns the stats for name.
func (r Report) Pilot(name string) (PilotStats, bool) {
	for _, p := range r.Pilots {
		if p.Pilot == name {
			return p, true
		}
	}
	return PilotStats{}, false
}

// IsShell reports whether a weapon category tags gun ammunition.
func IsShell(category string) bool {
	for _, tag := range strings.FieldsFunc(category, func(r rune) bool { return r == '+' || r == ',' || r == ' ' }) {
		if strings.EqualFold(tag, "Shell") {
			return true
		}
	}
	return false
}

type weaponKey struct {
	name     string
	category string
}

type accumulator struct {
	stats   PilotStats
	weapons map[weaponKey]*WeaponStats
}

// Aggregate builds a Report from resolved chains and the event stream they
// were resolved from. Gun shells are left out of every total, and only
// shooters with a pilot get a PilotStats row.
func Aggregate(set *core.ChainSet, events []core.Event) Report {
	var r Report
	pilots := make(map[string]*accumulator)
	get := func(name string) *accumulator {
		acc, ok := pilots[name]
		if !ok {
			acc = &accumulator{stats: PilotStats{Pilot: name}, weapons: make(map[weaponKey]*WeaponStats)}
			pilots[name] = acc
		}
		return acc
	}

	aaKills := make(map[string]int)
	for _, c := range set.Chains {
		if IsShell(c.Shot.WeaponCategory) {
			r.Excluded++
			continue
		}
		if c.Outcome == core.OutcomeKill && c.Domain == core.DomainAA {
			target := c.TargetName
			if target == "" {
				target = UnknownTarget
			}
			aaKills[target]++
		}
		pilot := strings.TrimSpace(c.Shot.ShooterPilot)
		if pilot == "" {
			r.Unpiloted++
			continue
		}

		acc := get(pilot)
		name := strings.TrimSpace(c.Shot.WeaponType)
		if name == "" {
			name = "Unknown"
		}
		k := weaponKey{name: name, category: c.Shot.WeaponCategory}
		w, ok := acc.weapons[k]
		if !ok {
			w = &WeaponStats{Weapon: k.name, Category: k.category}
			acc.weapons[k] = w
		}

		// a ripple releases several rounds under one chain; rounds that
		// reached nothing count as misses
		rounds := max(c.Shot.Rounds, 1)
		hits, kills, intercepted := 0, 0, 0
		switch c.Outcome {
		case core.OutcomeKill:
			hits, kills = min(1+c.ExtraHits, rounds), 1
		case core.OutcomeHit:
			hits = min(1+c.ExtraHits, rounds)
		case core.OutcomeIntercepted:
			intercepted = 1
		}
		misses := rounds - hits - intercepted

		p := &acc.stats
		p.Shots += rounds
		p.Hits += hits
		p.Kills += kills
		p.Misses += misses
		p.Intercepted += intercepted
		w.Shots += rounds
		w.Hits += hits
		w.Kills += kills
		w.Misses += misses
		w.Intercepted += intercepted
		if c.Friendly {
			p.Friendly++
		}
		p.ExtraKills += c.ExtraKills
	}

	for name, f := range flights(events) {
		get(name).stats.Flight = f
	}

	for _, acc := range pilots {
		for _, w := range acc.weapons {
			acc.stats.Weapons = append(acc.stats.Weapons, *w)
		}
		sort.Slice(acc.stats.Weapons, func(i, j int) bool {
			a, b := acc.stats.Weapons[i], acc.stats.Weapons[j]
			if a.Shots != b.Shots {
				return a.Shots > b.Shots
			}
			return strings.ToLower(a.Weapon) < strings.ToLower(b.Weapon)
		})
		r.Pilots = append(r.Pilots, acc.stats)
	}
	sort.Slice(r.Pilots, func(i, j int) bool {
		a, b := strings.ToLower(r.Pilots[i].Pilot), strings.ToLower(r.Pilots[j].Pilot)
		if a != b {
			return a < b
		}
		return r.Pilots[i].Pilot < r.Pilots[j].Pilot
	})

	for target, n := range aaKills {
		r.AAKills = append(r.AAKills, TargetKills{Target: target, Kills: n})
	}
	sort.Slice(r.AAKills, func(i, j int) bool {
		if r.AAKills[i].Kills != r.AAKills[j].Kills {
			return r.AAKills[i].Kills > r.AAKills[j].Kills
		}
		return r.AAKills[i].Target < r.AAKills[j].Target
	})
	return r
}

// flights finds each pilot's first take-off and the first landing, ejection
// or destruction of that pilot at or after it. Pilots without both are omitted.
func flights(events []core.Event) map[string]*Flight {
	out := make(map[string]*Flight)
	ended := make(map[string]bool)
	for _, e := range events {
		pilot := strings.TrimSpace(e.Pilot)
		if pilot == "" {
			continue
		}
		var reason FlightEnd
		switch e.Kind {
		case core.KindTakenOff:
			if _, ok := out[pilot]; !ok {
				out[pilot] = &Flight{TakeOff: e.Time}
			}
			continue
		case core.KindLanded:
			reason = EndLanded
		case core.KindEjected:
			reason = EndEjected
		case core.KindDestroyed:
			reason = EndShotDown
		default:
			continue
		}
		f, ok := out[pilot]
		if !ok || ended[pilot] || e.Time < f.TakeOff {
			continue
		}
		f.End, f.Reason = e.Time, reason
		ended[pilot] = true
	}
	for pilot := range out {
		if !ended[pilot] {
			delete(out, pilot)
		}
	}
	return out
}
