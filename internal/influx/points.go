package influx

import (
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/OCAP2/aar/internal/stats"
	"github.com/OCAP2/aar/pkg/core"
)

// Measurements written per report.
const (
	MeasurementEngagements = "engagements"
	MeasurementPilots      = "pilot_totals"
	MeasurementAnomalies   = "anomalies"
)

// Points converts one resolved report into InfluxDB points stamped at.
// Every point carries the mission title and stream id as tags.
func Points(mission core.Mission, streamID string, r stats.Report, anomalies core.Anomalies, at time.Time) []*influxdb2_write.Point {
	tags := func(extra map[string]string) map[string]string {
		t := map[string]string{"mission": mission.Title, "stream": streamID}
		for k, v := range extra {
			t[k] = v
		}
		return t
	}

	var points []*influxdb2_write.Point
	for _, p := range r.Pilots {
		for _, w := range p.Weapons {
			points = append(points, influxdb2_write.NewPoint(
				MeasurementEngagements,
				tags(map[string]string{"pilot": p.Pilot, "weapon": w.Weapon, "category": w.Category}),
				map[string]any{
					"shots":       w.Shots,
					"hits":        w.Hits,
					"kills":       w.Kills,
					"misses":      w.Misses,
					"intercepted": w.Intercepted,
				},
				at,
			))
		}

		fields := map[string]any{
			"shots":       p.Shots,
			"hits":        p.Hits,
			"kills":       p.Kills,
			"friendly":    p.Friendly,
			"extra_kills": p.ExtraKills,
		}
		if p.Flight != nil {
			fields["flight_seconds"] = p.Flight.Duration().Seconds()
			fields["flight_end"] = string(p.Flight.Reason)
		}
		points = append(points, influxdb2_write.NewPoint(MeasurementPilots, tags(map[string]string{"pilot": p.Pilot}), fields, at))
	}

	points = append(points, influxdb2_write.NewPoint(MeasurementAnomalies, tags(nil), map[string]any{
		"orphaned_outcome":   anomalies.OrphanedOutcomes,
		"stale_weapon_event": anomalies.StaleWeaponEvents,
		"unknown_actor":      anomalies.UnknownActors,
		"clock_skew":         anomalies.ClockSkew,
		"domain_mismatch":    anomalies.DomainMismatches,
		"shooter_mismatch":   anomalies.ShooterMismatches,
	}, at))
	return points
}
