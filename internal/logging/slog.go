package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName identifies this tool in shipped log records.
const ServiceName = "aar"

// console receives text output alongside the other sinks. It is stderr
// because stdout carries the report.
var (
	console io.Writer = os.Stderr
	osPipe            = os.Pipe
)

// Sinks selects where log records go in addition to the console.
type Sinks struct {
	File     io.Writer
	Graylog  io.Writer
	Provider *sdklog.LoggerProvider
	Context  ContextProvider
}

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handlerOptions(lvl slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// Setup builds the logger from the given sinks, replacing any previous one.
func (m *SlogManager) Setup(level string, sinks Sinks) {
	lvl := parseLevel(level)
	opts := handlerOptions(lvl)
	m.logProvider = sinks.Provider

	handlers := []slog.Handler{slog.NewTextHandler(console, opts)}
	if sinks.File != nil {
		handlers = append(handlers, slog.NewTextHandler(sinks.File, opts))
	}
	// GELF takes one message per write, JSON keeps the attributes in the full message
	if sinks.Graylog != nil {
		handlers = append(handlers, slog.NewJSONHandler(sinks.Graylog, opts))
	}
	if sinks.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(sinks.Provider)))
	}

	var h slog.Handler = NewMultiHandler(handlers...)
	if sinks.Context != nil {
		h = NewContextHandler(h, sinks.Context)
	}

	m.logger = slog.New(h)
	m.logger.Debug("Logging initialized", "level", lvl.String())
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
