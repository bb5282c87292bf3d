package models

import "time"

type EventType string

const (
	EventTypeStageStarted       EventType = "stage_started"
	EventTypeStageCompleted     EventType = "stage_completed"
	EventTypeStageFailed        EventType = "stage_failed"
	EventTypeThresholdDefaulted EventType = "threshold_defaulted"
	EventTypeReportSkipped      EventType = "report_skipped"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal pipeline event
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Stage     string        `json:"stage,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	RunID     string        `json:"run_id,omitempty"`
}

func NewEvent(eventType EventType, stage, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Stage:     stage,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithRunID(runID string) *Event {
	e.RunID = runID
	return e
}
