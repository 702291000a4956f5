package parser

// Raw Tacview debriefing document. Numbers are kept as text so that one bad
// value does not fail the whole file.

type xmlDebriefing struct {
	Version         string             `xml:"Version,attr"`
	FlightRecording xmlFlightRecording `xml:"FlightRecording"`
	Mission         xmlMission         `xml:"Mission"`
	Events          []xmlEvent         `xml:"Events>Event"`
}

type xmlFlightRecording struct {
	Source        string `xml:"Source"`
	Recorder      string `xml:"Recorder"`
	RecordingTime string `xml:"RecordingTime"`
}

type xmlMission struct {
	Title          string `xml:"Title"`
	MissionTime    string `xml:"MissionTime"`
	Duration       string `xml:"Duration"`
	MainAircraftID string `xml:"MainAircraftID"`
}

type xmlEvent struct {
	Time        string       `xml:"Time"`
	Location    *xmlLocation `xml:"Location"`
	Primary     *xmlObject   `xml:"PrimaryObject"`
	Action      string       `xml:"Action"`
	Secondary   *xmlObject   `xml:"SecondaryObject"`
	Parent      *xmlObject   `xml:"ParentObject"`
	Locked      *xmlObject   `xml:"LockedObject"`
	Occurrences string       `xml:"Occurrences"`
}

type xmlLocation struct {
	Longitude string `xml:"Longitude"`
	Latitude  string `xml:"Latitude"`
	Altitude  string `xml:"Altitude"`
}

type xmlObject struct {
	ID        string `xml:"ID,attr"`
	Type      string `xml:"Type"`
	Name      string `xml:"Name"`
	Coalition string `xml:"Coalition"`
	Pilot     string `xml:"Pilot"`
	Parent    string `xml:"Parent"`
}
