package core

import "time"

// Mission describes the debriefing a stream of events was extracted from.
type Mission struct {
	Title          string        `json:"title"`
	MissionTime    string        `json:"missionTime,omitempty"`
	Duration       time.Duration `json:"duration"`
	MainAircraftID ObjectID      `json:"mainAircraftId,omitempty"`

	Source        string `json:"source,omitempty"`
	Recorder      string `json:"recorder,omitempty"`
	RecordingTime string `json:"recordingTime,omitempty"`
	Version       string `json:"version,omitempty"`
}
