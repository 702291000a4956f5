package geo

import (
	"errors"
	"math"

	"github.com/OCAP2/aar/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Positions are kept in EPSG:3857 so that planar distances are in metres
// (scaled by latitude, which is acceptable for tie-breaks between nearby objects).

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

var to3857 = wgs84.EPSG().Transform(4326, 3857)

// Coords3857From4326 creates a 3857 point from a longitude and latitude
func Coords3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	if math.IsNaN(longitude) || math.IsNaN(latitude) || latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	x, y, _ := to3857(longitude, latitude, 0)
	point = geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Type: geom.DimXY,
		},
	)
	return point, nil
}

// Project converts a longitude/latitude/altitude triple into a core.Position3D in 3857 metres.
func Project(longitude, latitude, altitude float64) (core.Position3D, error) {
	point, err := Coords3857From4326(longitude, latitude)
	if err != nil {
		return core.Position3D{}, err
	}
	xy, ok := point.XY()
	if !ok {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	return core.Position3D{X: xy.X, Y: xy.Y, Z: altitude}, nil
}

func toPoint(p core.Position3D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Z:    p.Z,
		Type: geom.DimXYZ,
	})
}

// Distance returns the straight-line distance between two positions,
// combining the planar distance with the altitude difference.
func Distance(a, b core.Position3D) float64 {
	planar, ok := geom.Distance(toPoint(a).AsGeometry(), toPoint(b).AsGeometry())
	if !ok {
		return math.Inf(1)
	}
	return math.Hypot(planar, a.Z-b.Z)
}
