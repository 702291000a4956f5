package parser

import (
	"strings"

	"github.com/OCAP2/aar/internal/cache"
	"github.com/OCAP2/aar/internal/classify"
	"github.com/OCAP2/aar/pkg/core"
)

type decodeState struct {
	objects *cache.ObjectCache
	entered map[string]struct{}
}

// object records x in the cache and returns everything known about it.
// A missing or unparsable object yields the zero Object.
func (st *decodeState) object(x *xmlObject) cache.Object {
	if x == nil {
		return cache.Object{}
	}
	id, err := parseObjectID(x.ID)
	if err != nil || id == 0 {
		return cache.Object{}
	}
	parent, _ := parseObjectID(x.Parent)
	return st.objects.Merge(cache.Object{
		ID:        id,
		Type:      strings.TrimSpace(x.Type),
		Name:      strings.TrimSpace(x.Name),
		Coalition: strings.TrimSpace(x.Coalition),
		Pilot:     strings.TrimSpace(x.Pilot),
		Parent:    parent,
	})
}

// launcher returns the object that fired weapon w: the event's parent object
// when present, else w's recorded parent.
func (st *decodeState) launcher(parent, w cache.Object) cache.Object {
	if parent.ID != 0 {
		return parent
	}
	if w.Parent != 0 {
		if o, ok := st.objects.Get(w.Parent); ok {
			return o
		}
		return cache.Object{ID: w.Parent}
	}
	return cache.Object{}
}

var movementKinds = map[string]core.EventKind{
	actionLanded:      core.KindLanded,
	actionTakenOff:    core.KindTakenOff,
	actionLeftTheArea: core.KindRemoved,
}

func hasTag(objectType, tag string) bool {
	for _, t := range strings.FieldsFunc(objectType, func(r rune) bool { return r == '+' || r == ',' || r == ' ' }) {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func subject(kind core.EventKind, o cache.Object) core.Event {
	return core.Event{
		ID:        o.ID,
		Kind:      kind,
		Name:      o.Name,
		Type:      o.Type,
		Pilot:     o.Pilot,
		Coalition: o.Coalition,
	}
}

// convert maps one raw event. ok is false when the event cannot be used;
// a nil event with ok set means the event only fed the object cache.
func (p *Parser) convert(st *decodeState, xe xmlEvent) (*core.Event, bool) {
	prim := st.object(xe.Primary)
	sec := st.object(xe.Secondary)
	parent := st.object(xe.Parent)
	locked := st.object(xe.Locked)

	var e core.Event
	action := strings.TrimSpace(xe.Action)
	switch action {
	case actionEnteredTheArea:
		if prim.Pilot != "" {
			st.entered[prim.Pilot] = struct{}{}
		}
		return nil, prim.ID != 0

	case actionFired:
		if hasTag(sec.Type, "Parachutist") {
			if prim.ID == 0 {
				return nil, false
			}
			e = subject(core.KindEjected, prim)
			break
		}
		shooter := prim
		if shooter.ID == 0 {
			shooter = st.launcher(parent, sec)
		}
		if sec.ID == 0 || shooter.ID == 0 {
			return nil, false
		}
		coalition := shooter.Coalition
		if coalition == "" {
			coalition = sec.Coalition
		}
		e = core.Event{
			ID:         sec.ID,
			Kind:       core.KindFired,
			ActorID:    shooter.ID,
			ActorName:  shooter.Name,
			ActorPilot: shooter.Pilot,
			Coalition:  coalition,
			WeaponType: sec.Name,
			Name:       sec.Name,
			Type:       sec.Type,
			TargetID:   locked.ID,
			TargetName: locked.Name,
			TargetType: locked.Type,

			Occurrences: occurrences(xe.Occurrences),
		}

	case actionHitBy:
		if prim.ID == 0 {
			return nil, false
		}
		if classify.IsWeapon(prim.Type) {
			// a weapon hit in flight ends there: record it as destroyed by
			// whoever launched the interceptor
			e = subject(core.KindDestroyed, prim)
			by := st.launcher(parent, sec)
			if by.ID == 0 {
				by = sec
			}
			e.ActorID = by.ID
			e.ActorName = by.Name
			e.ActorPilot = by.Pilot
			break
		}
		e = subject(core.KindHit, prim)
		e.ActorID = sec.ID
		e.ActorName = sec.Name
		e.ActorPilot = st.launcher(parent, sec).Pilot
		if classify.IsWeapon(sec.Type) {
			e.WeaponType = sec.Name
		}

	case actionDestroyed:
		if prim.ID == 0 {
			return nil, false
		}
		e = subject(core.KindDestroyed, prim)
		e.ActorID = sec.ID
		e.ActorName = sec.Name
		e.ActorPilot = sec.Pilot
		if classify.IsWeapon(sec.Type) {
			e.WeaponType = sec.Name
			e.ActorPilot = st.launcher(parent, sec).Pilot
		}

	default:
		kind, known := movementKinds[action]
		if !known || prim.ID == 0 {
			return nil, false
		}
		e = subject(kind, prim)
	}

	e.Time = core.Seconds(parseFloat(xe.Time))
	e.Position = p.position(xe.Location)
	return &e, true
}
