package cache

import (
	"sync"

	"github.com/OCAP2/aar/pkg/core"
)

// Object is what the log has told us about one object id so far.
type Object struct {
	ID        core.ObjectID
	Type      string
	Name      string
	Coalition string
	Pilot     string
	Parent    core.ObjectID
}

// ObjectCache accumulates object descriptions across a log so that events
// carrying only an id (or a partial description) can be completed.
type ObjectCache struct {
	m       sync.Mutex
	objects map[core.ObjectID]Object
}

func NewObjectCache() *ObjectCache {
	return &ObjectCache{objects: make(map[core.ObjectID]Object)}
}

// Merge records o. Non-empty fields of o replace what is cached; empty ones
// keep the cached value. Objects with a zero id are ignored.
func (c *ObjectCache) Merge(o Object) Object {
	if o.ID == 0 {
		return o
	}
	c.m.Lock()
	defer c.m.Unlock()

	cur := c.objects[o.ID]
	cur.ID = o.ID
	if o.Type != "" {
		cur.Type = o.Type
	}
	if o.Name != "" {
		cur.Name = o.Name
	}
	if o.Coalition != "" {
		cur.Coalition = o.Coalition
	}
	if o.Pilot != "" {
		cur.Pilot = o.Pilot
	}
	if o.Parent != 0 {
		cur.Parent = o.Parent
	}
	c.objects[o.ID] = cur
	return cur
}

func (c *ObjectCache) Get(id core.ObjectID) (Object, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	o, ok := c.objects[id]
	return o, ok
}

func (c *ObjectCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.objects)
}
