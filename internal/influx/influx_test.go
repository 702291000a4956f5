package influx

import (
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/aar/internal/config"
	"github.com/OCAP2/aar/internal/stats"
	"github.com/OCAP2/aar/pkg/core"
)

var at = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func sampleStats() stats.Report {
	return stats.Report{Pilots: []stats.PilotStats{{
		Pilot: "Alpha",
		Shots: 2, Hits: 1, Kills: 1, Misses: 1,
		Weapons: []stats.WeaponStats{{Weapon: "AIM-120C", Category: "Missile", Shots: 2, Hits: 1, Kills: 1, Misses: 1}},
		Flight:  &stats.Flight{TakeOff: 0, End: 90 * time.Second, Reason: stats.EndLanded},
	}}}
}

func lines(points []*influxdb2_write.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = strings.TrimSpace(influxdb2_write.PointToLineProtocol(p, time.Nanosecond))
	}
	return out
}

func TestPoints(t *testing.T) {
	points := Points(core.Mission{Title: "Red Flag"}, "s1", sampleStats(), core.Anomalies{ClockSkew: 2}, at)
	require.Len(t, points, 3)

	assert.Equal(t, MeasurementEngagements, points[0].Name())
	assert.Equal(t, MeasurementPilots, points[1].Name())
	assert.Equal(t, MeasurementAnomalies, points[2].Name())

	got := lines(points)
	assert.True(t, strings.HasPrefix(got[0], "engagements,"))
	for _, tag := range []string{"category=Missile", `mission=Red\ Flag`, "pilot=Alpha", "stream=s1", "weapon=AIM-120C"} {
		assert.Contains(t, got[0], tag)
	}
	assert.Contains(t, got[0], "shots=2i")
	assert.Contains(t, got[0], "kills=1i")
	assert.Contains(t, got[1], "flight_seconds=90")
	assert.Contains(t, got[1], `flight_end="Landed"`)
	assert.Contains(t, got[2], "clock_skew=2i")
	for _, l := range got {
		assert.True(t, strings.HasSuffix(l, " 1705314600000000000"), l)
	}
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Enabled: false})
	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influx.enabled is false")
	assert.NoError(t, m.Close())
}

func TestWritePoints_NotConnected(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{})
	err := m.WritePoints(Points(core.Mission{}, "s", stats.Report{}, core.Anomalies{}, at))
	assert.Error(t, err)
}

func readBackup(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestConnect_BucketFailureUsesBackup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"internal error","message":"storage offline"}`))
	}))
	defer srv.Close()

	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(zerolog.Nop(), config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     host,
		Port:     port,
		Org:      "ocap-metrics",
		Bucket:   "aar",
		Backup:   backup,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.Valid())

	require.NoError(t, m.WritePoints(Points(core.Mission{Title: "Red Flag"}, "s1", sampleStats(), core.Anomalies{}, at)))
	require.NoError(t, m.Close())

	written := readBackup(t, backup)
	require.Len(t, written, 3)
	assert.True(t, strings.HasPrefix(written[1], "pilot_totals,"))
}

func TestConnect_UnreachableUsesBackup(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(zerolog.Nop(), config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Org:      "ocap-metrics",
		Bucket:   "aar",
		Backup:   backup,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.Valid())

	require.NoError(t, m.WritePoints(Points(core.Mission{Title: "Red Flag"}, "s1", sampleStats(), core.Anomalies{}, at)))
	require.NoError(t, m.Close())

	written := readBackup(t, backup)
	require.Len(t, written, 3)
	assert.True(t, strings.HasPrefix(written[0], "engagements,"))
	assert.True(t, strings.HasPrefix(written[2], "anomalies,"))
}
