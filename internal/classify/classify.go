// Package classify maps weapon and target identities to an engagement domain.
package classify

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/OCAP2/aar/pkg/core"
)

// TargetKind is the coarse kind of a target object.
type TargetKind string

const (
	TargetUnknown TargetKind = ""
	TargetAir     TargetKind = "air"
	TargetSurface TargetKind = "surface"
)

var airTags = map[string]bool{
	"AIR": true, "AIRCRAFT": true, "HELICOPTER": true, "FIXEDWING": true, "ROTORCRAFT": true,
}

var surfaceTags = map[string]bool{
	"GROUND": true, "SEA": true, "WATERCRAFT": true, "TANK": true, "SHIP": true, "WARSHIP": true,
	"CARRIER": true, "VEHICLE": true, "ARMOR": true, "BUILDING": true, "STATIC": true,
	"SAM": true, "AAA": true, "INFANTRY": true, "ANTIAIRCRAFT": true, "BUNKER": true,
	"AIRPORT": true, "HEAVY": true, "LIGHT": true, "GROUNDUNIT": true,
}

// KindOf derives a TargetKind from an object type string. Both single names
// ("Aircraft") and tag lists ("Ground+Heavy+Armor+Vehicle") are accepted.
// Air tags win when both appear.
func KindOf(objectType string) TargetKind {
	if strings.TrimSpace(objectType) == "" {
		return TargetUnknown
	}
	surface := false
	for _, tag := range strings.FieldsFunc(objectType, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '/'
	}) {
		tag = strings.ToUpper(tag)
		if airTags[tag] {
			return TargetAir
		}
		if surfaceTags[tag] {
			surface = true
		}
	}
	if surface {
		return TargetSurface
	}
	return TargetUnknown
}

var weaponTags = map[string]bool{
	"WEAPON": true, "MISSILE": true, "BOMB": true, "ROCKET": true, "SHELL": true,
	"PROJECTILE": true, "TORPEDO": true, "DECOY": true, "FLARE": true, "CHAFF": true,
}

// IsWeapon reports whether an object type describes a munition rather than a unit.
func IsWeapon(objectType string) bool {
	for _, tag := range strings.FieldsFunc(objectType, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '/'
	}) {
		if weaponTags[strings.ToUpper(tag)] {
			return true
		}
	}
	return false
}

// Result is the outcome of a classification.
type Result struct {
	Domain core.Domain
	// Inconsistent is set when an air-to-air weapon is recorded against a
	// surface target.
	Inconsistent bool
}

type rule struct {
	prefix string
	domain core.Domain
}

type cacheKey struct {
	weapon   string
	category string
	target   TargetKind
}

// DefaultCacheSize is the number of memoized lookups kept by Default.
const DefaultCacheSize = 1024

// Classifier is a deterministic, total domain classifier. It is safe for
// concurrent use.
type Classifier struct {
	rules      []rule
	categories map[string]core.Domain
	memo       *lru.Cache[cacheKey, Result]
}

// New builds a Classifier from a validated table.
func New(t Table, cacheSize int) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	memo, err := lru.New[cacheKey, Result](cacheSize)
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		categories: make(map[string]core.Domain, len(t.Categories)),
		memo:       memo,
	}
	for _, f := range t.Families {
		for _, p := range f.Prefixes {
			c.rules = append(c.rules, rule{prefix: normalize(p), domain: f.Domain})
		}
	}
	// longest prefix first so "S-530" beats "S-5"
	sort.SliceStable(c.rules, func(i, j int) bool {
		return len(c.rules[i].prefix) > len(c.rules[j].prefix)
	})
	for k, d := range t.Categories {
		c.categories[normalize(k)] = d
	}
	return c, nil
}

// Default returns a Classifier over DefaultTable.
func Default() *Classifier {
	c, err := New(DefaultTable(), DefaultCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// WeaponDomain returns the family domain of a weapon type, or Unknown.
func (c *Classifier) WeaponDomain(weaponType string) core.Domain {
	n := normalize(weaponType)
	if n == "" {
		return core.DomainUnknown
	}
	for _, r := range c.rules {
		if strings.HasPrefix(n, r.prefix) {
			return r.domain
		}
	}
	return core.DomainUnknown
}

// Classify maps a weapon type and target kind to a domain.
func (c *Classifier) Classify(weaponType string, target TargetKind) Result {
	return c.ClassifyShot(weaponType, "", target)
}

// ClassifyShot is Classify with a weapon category fallback, used when the
// weapon type matches no family.
func (c *Classifier) ClassifyShot(weaponType, category string, target TargetKind) Result {
	key := cacheKey{weapon: weaponType, category: category, target: target}
	if r, ok := c.memo.Get(key); ok {
		return r
	}

	d := c.WeaponDomain(weaponType)
	if d == core.DomainUnknown {
		if cd, ok := c.categories[normalize(category)]; ok {
			d = cd
		}
	}

	var r Result
	switch d {
	case core.DomainAA:
		r = Result{Domain: core.DomainAA, Inconsistent: target == TargetSurface}
	case core.DomainAG:
		r = Result{Domain: core.DomainAG}
	default:
		switch target {
		case TargetAir:
			r = Result{Domain: core.DomainAA}
		case TargetSurface:
			r = Result{Domain: core.DomainAG}
		default:
			r = Result{Domain: core.DomainUnknown}
		}
	}

	c.memo.Add(key, r)
	return r
}
