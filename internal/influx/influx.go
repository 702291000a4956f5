package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/OCAP2/aar/internal/config"
)

// retention applied to buckets created by Connect
const retentionSeconds = 60 * 60 * 24 * 90

// Manager handles the InfluxDB connection. When the server cannot be
// reached, points go to a gzip line-protocol backup file instead.
type Manager struct {
	cfg    config.InfluxConfig
	logger zerolog.Logger

	client       influxdb2.Client
	writer       influxdb2_api.WriteAPI
	backupFile   *os.File
	backupWriter *gzip.Writer
	valid        bool
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	return &Manager{cfg: cfg, logger: log}
}

// Valid reports whether points go to the server rather than the backup file.
func (m *Manager) Valid() bool {
	return m.valid
}

// Connect establishes a connection to InfluxDB, falling back to the backup file.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return errors.New("influx.enabled is false")
	}

	m.client = influxdb2.NewClientWithOptions(
		m.cfg.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.client.Ping(ctx)
	if err != nil || !running {
		m.logger.Warn().Err(err).Str("backupPath", m.cfg.Backup).
			Msg("InfluxDB unreachable, writing to backup file")
		return m.openBackup()
	}

	if err := m.ensureBucket(ctx); err != nil {
		m.logger.Warn().Err(err).Str("backupPath", m.cfg.Backup).
			Msg("InfluxDB bucket unavailable, writing to backup file")
		return m.openBackup()
	}
	m.writer = m.client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	errorsCh := m.writer.Errors()
	go func() {
		for writeErr := range errorsCh {
			m.logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}()
	m.valid = true
	m.logger.Info().Str("url", m.cfg.URL()).Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.backupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.Backup, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) ensureBucket(ctx context.Context) error {
	orgs := m.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %s: %w", m.cfg.Org, err)
		}
	}

	if _, err := m.client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}
	m.logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = m.client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: retentionSeconds,
	})
	if err != nil {
		return fmt.Errorf("error creating bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
}

// WritePoints writes points to InfluxDB or the backup file.
func (m *Manager) WritePoints(points []*influxdb2_write.Point) error {
	for _, p := range points {
		if m.valid {
			m.writer.WritePoint(p)
			continue
		}
		if m.backupWriter == nil {
			return errors.New("influxDB client not initialized and backup writer not available")
		}
		line := strings.TrimRight(influxdb2_write.PointToLineProtocol(p, time.Nanosecond), "\n")
		if _, err := m.backupWriter.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
		}
	}
	return nil
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	var errs []error
	if m.writer != nil {
		m.writer.Flush()
	}
	if m.client != nil {
		m.client.Close()
	}
	if m.backupWriter != nil {
		if err := m.backupWriter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing backup stream: %w", err))
		}
		if err := m.backupFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing backup file: %w", err))
		}
		m.backupWriter = nil
	}
	return errors.Join(errs...)
}
