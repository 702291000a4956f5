package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/OCAP2/aar/internal/classify"
	"github.com/OCAP2/aar/internal/config"
	"github.com/OCAP2/aar/internal/logging"
	"github.com/OCAP2/aar/internal/mission"
	intOtel "github.com/OCAP2/aar/internal/otel"
	"github.com/OCAP2/aar/internal/resolver"
)

// app holds the ambient services of one command invocation.
type app struct {
	start   time.Time
	logs    *logging.SlogManager
	logger  *slog.Logger
	otel    *intOtel.Provider
	mission *mission.Context
	logFile *os.File
	closers []io.Closer
}

// newApp loads configuration from configDir and sets up logging. The
// returned app must be closed.
func newApp(ctx context.Context, configDir string) (*app, error) {
	if err := config.Load(configDir); err != nil {
		return nil, err
	}

	a := &app{
		start:   time.Now(),
		logs:    logging.NewSlogManager(),
		mission: mission.NewContext(uuid.NewString()),
	}

	var err error
	a.logFile, err = logging.OpenLogFile(config.GetString("logsDir"), logging.ServiceName, a.start)
	if err != nil {
		return nil, err
	}

	otelCfg := config.GetOTelConfig()
	a.otel, err = intOtel.New(ctx, intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    a.logFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		a.logFile.Close()
		return nil, fmt.Errorf("failed to initialize OTel: %w", err)
	}

	sinks := logging.Sinks{
		File:     a.logFile,
		Provider: a.otel.LoggerProvider(),
		Context:  a.mission.LogAttrs,
	}
	var graylogErr error
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address)
		if err != nil {
			graylogErr = err
		} else {
			sinks.Graylog = w
			a.closers = append(a.closers, w)
		}
	}

	a.logs.Setup(config.GetString("logLevel"), sinks)
	a.logger = a.logs.Logger()
	if graylogErr != nil {
		a.logger.Warn("Graylog disabled", "error", graylogErr)
	}
	a.logger.Info("Starting", "version", BuildVersion, "logFile", a.logFile.Name())
	return a, nil
}

// zlog returns a zerolog logger writing to the run's log file, for
// components built on it.
func (a *app) zlog(component string) zerolog.Logger {
	return zerolog.New(a.logFile).With().
		Timestamp().
		Str("component", component).
		Str("run", a.mission.RunID()).
		Logger()
}

func (a *app) classifier() (*classify.Classifier, error) {
	path := config.GetResolverConfig().ClassificationTable
	if path == "" {
		return classify.Default(), nil
	}
	t, err := classify.LoadTable(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Loaded classification table", "path", path, "families", len(t.Families))
	return classify.New(t, classify.DefaultCacheSize)
}

func resolverOptions(rc config.ResolverConfig) resolver.Options {
	return resolver.Options{
		WindowAA:       rc.WindowAA,
		WindowAG:       rc.WindowAG,
		WindowUnknown:  rc.WindowUnknown,
		RemovalGrace:   rc.RemovalGrace,
		SplashWindow:   rc.SplashWindow,
		SplashRadius:   rc.SplashRadius,
		KillTolerance:  rc.KillTolerance,
		KillLinkWindow: rc.KillLinkWindow,
		BucketWidth:    rc.BucketWidth,
		Workers:        rc.Workers,
	}
}

// Close logs the collected metrics and releases every sink.
func (a *app) Close(ctx context.Context) error {
	if snap, err := a.otel.Snapshot(ctx); err != nil {
		a.logger.Warn("Failed to collect metrics", "error", err)
	} else if len(snap) > 0 {
		attrs := make([]any, 0, 2*len(snap))
		for name, v := range snap {
			attrs = append(attrs, name, v)
		}
		a.logger.InfoContext(ctx, "Run metrics", attrs...)
	}
	a.logger.Info("Finished", "elapsed", time.Since(a.start).String())

	var errs []error
	if err := a.logs.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.otel.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.logFile.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
