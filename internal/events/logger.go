package events

import (
	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// EventLogger writes every event it receives through the structured logger.
type EventLogger struct{}

func NewEventLogger() *EventLogger {
	return &EventLogger{}
}

// Attach subscribes the logger to all events on bus.
func (l *EventLogger) Attach(bus *EventBus) {
	bus.SubscribeAll(l.Handle)
}

func (l *EventLogger) Handle(event *models.Event) {
	fields := map[string]interface{}{
		"event_type": event.Type,
		"severity":   event.Severity,
	}
	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	if event.RunID != "" {
		fields["run_id"] = event.RunID
	}
	if res, ok := event.Data.(StageResult); ok {
		fields["duration_ms"] = res.Duration.Milliseconds()
		if res.Rows > 0 {
			fields["rows"] = res.Rows
		}
	}
	entry := logger.WithFields(fields)

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}
}
