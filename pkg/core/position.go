package core

// Position3D is a projected position in metres.
// Extractors store EPSG:3857 easting/northing with altitude ASL.
type Position3D struct {
	X float64 `json:"x"` // easting
	Y float64 `json:"y"` // northing
	Z float64 `json:"z"` // altitude ASL
}
