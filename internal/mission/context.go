package mission

import (
	"context"
	"log/slog"
	"sync"

	"github.com/OCAP2/aar/pkg/core"
)

// Context holds the mission currently being processed and the run it belongs to.
type Context struct {
	mu      sync.RWMutex
	runID   string
	source  string
	mission *core.Mission
}

// NewContext creates a Context for one run of the tool.
func NewContext(runID string) *Context {
	return &Context{
		runID:   runID,
		mission: &core.Mission{Title: "No mission loaded"},
	}
}

// RunID returns the identifier of this run.
func (mc *Context) RunID() string {
	return mc.runID
}

// GetMission returns the current mission
func (mc *Context) GetMission() *core.Mission {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.mission
}

// Source returns the path of the flight log being processed.
func (mc *Context) Source() string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.source
}

// SetMission records the mission parsed from source.
func (mc *Context) SetMission(mission *core.Mission, source string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.mission = mission
	mc.source = source
}

// LogAttrs is a logging.ContextProvider: it tags every record with the run
// and, once known, the mission.
func (mc *Context) LogAttrs(_ context.Context) []slog.Attr {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	attrs := []slog.Attr{slog.String("run", mc.runID)}
	if mc.source != "" {
		attrs = append(attrs, slog.String("mission", mc.mission.Title))
	}
	return attrs
}
