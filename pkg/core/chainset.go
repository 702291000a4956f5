package core

import (
	"sort"
	"strings"
)

// Anomalies counts data-quality issues seen while resolving a stream.
type Anomalies struct {
	OrphanedOutcomes  int `json:"orphanedOutcomes"`
	StaleWeaponEvents int `json:"staleWeaponEvents"`
	UnknownActors     int `json:"unknownActors"`
	ClockSkew         int `json:"clockSkew"`
	DomainMismatches  int `json:"domainMismatches"`
	ShooterMismatches int `json:"shooterMismatches"`
}

// Total returns the sum of all counters.
func (a Anomalies) Total() int {
	return a.OrphanedOutcomes + a.StaleWeaponEvents + a.UnknownActors +
		a.ClockSkew + a.DomainMismatches + a.ShooterMismatches
}

// ChainSet is the output of one resolution run.
type ChainSet struct {
	// StreamID is derived from the input stream; equal streams share an id.
	StreamID string `json:"streamId"`
	// Chains are ordered by fire time, then weapon id.
	Chains []Chain `json:"chains"`
	// Orphans are unit outcome events no chain claimed.
	Orphans   []Event   `json:"orphans"`
	Anomalies Anomalies `json:"anomalies"`
}

// Len returns the number of chains.
func (cs *ChainSet) Len() int {
	return len(cs.Chains)
}

// ByShooter groups chains by shooter id, preserving chain order.
func (cs *ChainSet) ByShooter() map[ObjectID][]Chain {
	out := make(map[ObjectID][]Chain)
	for _, c := range cs.Chains {
		out[c.Shot.ShooterID] = append(out[c.Shot.ShooterID], c)
	}
	return out
}

// ByPilot groups chains by ShotRecord.PilotKey, preserving chain order.
func (cs *ChainSet) ByPilot() map[string][]Chain {
	out := make(map[string][]Chain)
	for _, c := range cs.Chains {
		k := c.Shot.PilotKey()
		out[k] = append(out[k], c)
	}
	return out
}

// Pilots returns the pilot keys in case-insensitive order.
func (cs *ChainSet) Pilots() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, c := range cs.Chains {
		k := c.Shot.PilotKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessFold(keys[i], keys[j])
	})
	return keys
}

// Misses returns the chains that reached no target.
func (cs *ChainSet) Misses() []Chain {
	var out []Chain
	for _, c := range cs.Chains {
		if !c.Outcome.Reached() {
			out = append(out, c)
		}
	}
	return out
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
