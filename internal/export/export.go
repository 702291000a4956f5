package export

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/aar/internal/stats"
	"github.com/OCAP2/aar/pkg/core"
)

// FormatVersion is bumped whenever the report layout changes incompatibly.
const FormatVersion = 1

// Config selects where and how reports are written.
type Config struct {
	Dir      string
	Compress bool
}

// Report is the root JSON document of one after-action report.
type Report struct {
	FormatVersion int            `json:"formatVersion"`
	ToolVersion   string         `json:"toolVersion,omitempty"`
	RunID         string         `json:"runId"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	Mission       core.Mission   `json:"mission"`
	HumanPilots   []string       `json:"humanPilots,omitempty"`
	StreamID      string         `json:"streamId"`
	Chains        []core.Chain   `json:"chains"`
	Orphans       []core.Event   `json:"orphans"`
	Anomalies     core.Anomalies `json:"anomalies"`
	Stats         stats.Report   `json:"stats"`
}

// NewReport assembles a report from a resolved stream and its aggregate.
func NewReport(runID string, at time.Time, mission core.Mission, set *core.ChainSet, st stats.Report) Report {
	r := Report{
		FormatVersion: FormatVersion,
		RunID:         runID,
		GeneratedAt:   at.UTC(),
		Mission:       mission,
		StreamID:      set.StreamID,
		Chains:        set.Chains,
		Orphans:       set.Orphans,
		Anomalies:     set.Anomalies,
		Stats:         st,
	}
	if r.Chains == nil {
		r.Chains = []core.Chain{}
	}
	if r.Orphans == nil {
		r.Orphans = []core.Event{}
	}
	return r
}

// FileName builds `{mission}_{20060102_150405}.json[.gz]`. Spaces, colons
// and path separators in the title become underscores.
func FileName(title string, at time.Time, compress bool) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "aar"
	}
	name = strings.NewReplacer(" ", "_", ":", "_", "/", "_", `\`, "_").Replace(name)
	ext := ".json"
	if compress {
		ext += ".gz"
	}
	return fmt.Sprintf("%s_%s%s", name, at.UTC().Format("20060102_150405"), ext)
}

// Exporter writes reports to disk.
type Exporter struct {
	cfg Config
}

func New(cfg Config) *Exporter {
	return &Exporter{cfg: cfg}
}

// Write stores r in the output directory and returns the file path.
func (e *Exporter) Write(r Report) (string, error) {
	if err := os.MkdirAll(e.cfg.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.cfg.Dir, FileName(r.Mission.Title, r.GeneratedAt, e.cfg.Compress))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if e.cfg.Compress {
		gz := gzip.NewWriter(f)
		if err := encode(gz, r); err != nil {
			return "", err
		}
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	} else if err := encode(f, r); err != nil {
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return path, nil
}

func encode(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Read loads a report written by Write, gzip or plain.
func Read(path string) (Report, error) {
	var r Report
	f, err := os.Open(path)
	if err != nil {
		return r, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return r, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}
	if err := json.NewDecoder(src).Decode(&r); err != nil {
		return r, fmt.Errorf("failed to decode report: %w", err)
	}
	return r, nil
}
