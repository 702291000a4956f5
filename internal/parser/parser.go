package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/OCAP2/aar/internal/cache"
	"github.com/OCAP2/aar/internal/geo"
	"github.com/OCAP2/aar/pkg/core"
)

// Tacview actions understood by the parser.
const (
	actionFired          = "HasFired"
	actionHitBy          = "HasBeenHitBy"
	actionDestroyed      = "HasBeenDestroyed"
	actionLanded         = "HasLanded"
	actionTakenOff       = "HasTakenOff"
	actionLeftTheArea    = "HasLeftTheArea"
	actionEnteredTheArea = "HasEnteredTheArea"
)

// Debriefing is a parsed Tacview debriefing.
type Debriefing struct {
	Mission core.Mission
	// Events are ordered by time, then object id.
	Events []core.Event
	// Pilots are the human pilots: those seen entering the area plus the
	// pilot of the recording aircraft.
	Pilots []string
	// Skipped counts events that could not be mapped.
	Skipped int
}

// Parser converts Tacview XML debriefings into normalized events.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseFile parses the debriefing at path.
func (p *Parser) ParseFile(path string) (*Debriefing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening debriefing: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads one debriefing document from r.
func (p *Parser) Parse(r io.Reader) (*Debriefing, error) {
	var doc xmlDebriefing
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding debriefing: %w", err)
	}

	st := &decodeState{
		objects: cache.NewObjectCache(),
		entered: make(map[string]struct{}),
	}
	out := &Debriefing{Mission: p.mission(doc)}

	for i, xe := range doc.Events {
		e, ok := p.convert(st, xe)
		if !ok {
			out.Skipped++
			p.logger.Debug("Skipped event", "index", i, "action", xe.Action, "time", xe.Time)
			continue
		}
		if e != nil {
			out.Events = append(out.Events, *e)
		}
	}

	sort.SliceStable(out.Events, func(i, j int) bool {
		a, b := out.Events[i], out.Events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})

	if id := out.Mission.MainAircraftID; id != 0 {
		if o, ok := st.objects.Get(id); ok && strings.TrimSpace(o.Pilot) != "" {
			st.entered[strings.TrimSpace(o.Pilot)] = struct{}{}
		}
	}
	for name := range st.entered {
		out.Pilots = append(out.Pilots, name)
	}
	sort.Strings(out.Pilots)

	p.logger.Debug("Parsed debriefing",
		"title", out.Mission.Title,
		"events", len(out.Events),
		"skipped", out.Skipped,
		"objects", st.objects.Len())
	return out, nil
}

func (p *Parser) mission(doc xmlDebriefing) core.Mission {
	m := core.Mission{
		Title:         strings.TrimSpace(doc.Mission.Title),
		MissionTime:   strings.TrimSpace(doc.Mission.MissionTime),
		Duration:      core.Seconds(parseFloat(doc.Mission.Duration)),
		Source:        strings.TrimSpace(doc.FlightRecording.Source),
		Recorder:      strings.TrimSpace(doc.FlightRecording.Recorder),
		RecordingTime: strings.TrimSpace(doc.FlightRecording.RecordingTime),
		Version:       doc.Version,
	}
	if id, err := parseObjectID(doc.Mission.MainAircraftID); err == nil {
		m.MainAircraftID = id
	}
	return m
}

// parseObjectID parses an object id written either as an integer ("32")
// or as a whole float ("32.00").
func parseObjectID(s string) (core.ObjectID, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return core.ObjectID(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxUint64 {
		return 0, fmt.Errorf("parseObjectID: %q is not a valid object id", s)
	}
	return core.ObjectID(f), nil
}

// occurrences parses the round count of a fired record. Missing, malformed
// and non-positive counts yield 0, which stands for a single round.
func occurrences(s string) int {
	n := parseFloat(s)
	if n < 1 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

// parseFloat returns 0 for missing or malformed values.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (p *Parser) position(loc *xmlLocation) *core.Position3D {
	if loc == nil {
		return nil
	}
	pos, err := geo.Project(parseFloat(loc.Longitude), parseFloat(loc.Latitude), parseFloat(loc.Altitude))
	if err != nil {
		p.logger.Debug("Dropped event location", "longitude", loc.Longitude, "latitude", loc.Latitude, "error", err)
		return nil
	}
	return &pos
}
