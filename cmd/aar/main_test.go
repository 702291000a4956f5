package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/aar/internal/export"
	"github.com/OCAP2/aar/pkg/core"
)

const sampleDebriefing = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>
<TacviewDebriefing Version="1.2.6">
  <FlightRecording><Source>DCS</Source><Recorder>Tacview</Recorder><RecordingTime>2025-09-26T00:00:00Z</RecordingTime></FlightRecording>
  <Mission><Title>Test</Title><MissionTime>2025-09-26T00:00:00Z</MissionTime><Duration>120</Duration></Mission>
  <Events>
    <Event>
      <Time>61911.78</Time>
      <Location><Longitude>7.3416138</Longitude><Latitude>53.5931922</Latitude><Altitude>10260.28</Altitude></Location>
      <PrimaryObject ID="30787"><Type>Aircraft</Type><Name>F-15C Eagle</Name><Pilot>Streak</Pilot><Coalition>NATO</Coalition></PrimaryObject>
      <Action>HasFired</Action>
      <SecondaryObject ID="31310"><Type>Missile</Type><Name>AIM-7M Sparrow III</Name><Coalition>NATO</Coalition><Parent>30787</Parent></SecondaryObject>
      <LockedObject ID="31197"><Type>Aircraft</Type><Name>MiG-31 Foxhound</Name><Coalition>CCCP</Coalition></LockedObject>
    </Event>
    <Event>
      <Time>61940.55</Time>
      <Location><Longitude>7.749504</Longitude><Latitude>53.605184</Latitude><Altitude>7931.58</Altitude></Location>
      <PrimaryObject ID="31197"><Type>Aircraft</Type><Name>MiG-31 Foxhound</Name><Coalition>CCCP</Coalition></PrimaryObject>
      <Action>HasBeenHitBy</Action>
      <SecondaryObject ID="31310"><Type>Missile</Type><Name>AIM-7M Sparrow III</Name><Coalition>NATO</Coalition><Parent>30787</Parent></SecondaryObject>
      <ParentObject ID="30787"><Type>Aircraft</Type><Name>F-15C Eagle</Name><Pilot>Streak</Pilot><Coalition>NATO</Coalition></ParentObject>
    </Event>
    <Event>
      <Time>61940.56</Time>
      <Location><Longitude>7.749504</Longitude><Latitude>53.605184</Latitude><Altitude>7931.58</Altitude></Location>
      <PrimaryObject ID="31197"><Type>Aircraft</Type><Name>MiG-31 Foxhound</Name><Coalition>CCCP</Coalition></PrimaryObject>
      <Action>HasBeenDestroyed</Action>
      <SecondaryObject ID="31310"><Type>Missile</Type><Name>AIM-7M Sparrow III</Name><Coalition>NATO</Coalition><Parent>30787</Parent></SecondaryObject>
    </Event>
  </Events>
</TacviewDebriefing>`

// workspace writes a config directory whose logs and reports stay under
// the test's temp dir, plus the sample debriefing.
func workspace(t *testing.T) (configDir, xmlPath, reports string) {
	t.Helper()
	t.Cleanup(viper.Reset)

	root := t.TempDir()
	reports = filepath.Join(root, "reports")
	cfg := fmt.Sprintf(`{"logsDir": %q, "output": {"dir": %q}}`, filepath.Join(root, "logs"), reports)
	require.NoError(t, os.WriteFile(filepath.Join(root, "aar.cfg.json"), []byte(cfg), 0644))

	xmlPath = filepath.Join(root, "sample.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(sampleDebriefing), 0644))
	return root, xmlPath, reports
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	configDir, xmlPath, reports := workspace(t)

	out, err := run(t, "resolve", xmlPath, "--config", configDir, "--chains")
	require.NoError(t, err)

	assert.Contains(t, out, "Streak: 1 shots, 1 hits, 1 kills")
	assert.Contains(t, out, "  AIM-7M Sparrow III: 1 shots")
	assert.Contains(t, out, "MiG-31 Foxhound, 1, kill")
	assert.Contains(t, out, "Chains (1):")
	assert.Contains(t, out, "Report: ")

	matches, err := filepath.Glob(filepath.Join(reports, "Test_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	doc, err := export.Read(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "Test", doc.Mission.Title)
	assert.Empty(t, doc.HumanPilots)
	require.Len(t, doc.Chains, 1)
	c := doc.Chains[0]
	assert.Equal(t, core.OutcomeKill, c.Outcome)
	assert.Equal(t, core.MethodDeterministic, c.Method)
	assert.Equal(t, core.DomainAA, c.Domain)
	assert.Equal(t, core.ObjectID(31197), c.TargetID)
	assert.NotEmpty(t, doc.RunID)
	assert.NotEmpty(t, doc.StreamID)

	logs, err := filepath.Glob(filepath.Join(configDir, "logs", "aar.*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestResolveCommand_NoExport(t *testing.T) {
	configDir, xmlPath, reports := workspace(t)

	_, err := run(t, "resolve", xmlPath, "--config", configDir, "--no-export")
	require.NoError(t, err)

	_, err = os.Stat(reports)
	assert.True(t, os.IsNotExist(err))
}

func TestResolveCommand_OutputFlag(t *testing.T) {
	configDir, xmlPath, _ := workspace(t)
	alt := filepath.Join(t.TempDir(), "alt")

	_, err := run(t, "resolve", xmlPath, "--config", configDir, "-o", alt)
	require.NoError(t, err)

	matches, _ := filepath.Glob(filepath.Join(alt, "Test_*.json"))
	assert.Len(t, matches, 1)
}

func TestResolveCommand_MissingFile(t *testing.T) {
	configDir, _, _ := workspace(t)

	_, err := run(t, "resolve", filepath.Join(configDir, "missing.xml"), "--config", configDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error opening debriefing")
}

func TestClassifyCommand(t *testing.T) {
	configDir, _, _ := workspace(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"aa family", []string{"AIM-120C"}, []string{"family:  AA", "domain:  AA"}},
		{"ag family", []string{"GBU-12"}, []string{"domain:  AG"}},
		{"target decides", []string{"Unknown Gun", "--target", "Ground+Tank"}, []string{"target:  Ground+Tank (surface)", "domain:  AG"}},
		{"inconsistent", []string{"AIM-9M", "--target", "Ground+Tank"}, []string{"domain:  AA", "warning:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append(append([]string{"classify"}, tt.args...), "--config", configDir)...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "aar "+BuildVersion)
}
