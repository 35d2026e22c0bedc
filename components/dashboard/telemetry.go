package dashboard

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes telemetry events to a logrus logger at debug level.
type LogTelemetry struct {
	Logger logrus.FieldLogger
}

// NewLogTelemetry builds a LogTelemetry, defaulting to the standard logger.
func NewLogTelemetry(logger logrus.FieldLogger) LogTelemetry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return LogTelemetry{Logger: logger}
}

// Record implements Telemetry.
func (t LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	logger := t.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields(payload)).WithField("event", event).Debug("dashboard: telemetry")
}
