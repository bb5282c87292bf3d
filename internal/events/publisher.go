package events

import (
	"fmt"
	"time"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// StageResult is attached to stage_completed and stage_failed events.
type StageResult struct {
	Stage    string
	Duration time.Duration
	Rows     int
	Err      error
}

type Publisher struct {
	bus   *EventBus
	runID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithRunID(runID string) *Publisher {
	return &Publisher{
		bus:   p.bus,
		runID: runID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.runID != "" {
		event.WithRunID(p.runID)
	}
	p.bus.Publish(event)
}

func (p *Publisher) StageStarted(stage string) {
	p.publish(models.NewEvent(models.EventTypeStageStarted, stage, "Stage started: "+stage))
}

func (p *Publisher) StageCompleted(stage string, d time.Duration, rows int) {
	msg := fmt.Sprintf("Stage completed: %s (rows=%d, took=%s)", stage, rows, d.Round(time.Millisecond))
	event := models.NewEvent(models.EventTypeStageCompleted, stage, msg).
		WithData(StageResult{Stage: stage, Duration: d, Rows: rows})
	p.publish(event)
}

func (p *Publisher) StageFailed(stage string, d time.Duration, err error) {
	event := models.NewEvent(models.EventTypeStageFailed, stage, fmt.Sprintf("Stage failed: %s: %v", stage, err)).
		WithSeverity(models.SeverityCritical).
		WithData(StageResult{Stage: stage, Duration: d, Err: err})
	p.publish(event)
}

func (p *Publisher) ThresholdDefaulted(path string, value float64) {
	msg := fmt.Sprintf("Threshold file %s not found, using %g", path, value)
	event := models.NewEvent(models.EventTypeThresholdDefaulted, string(models.StagePredict), msg).
		WithSeverity(models.SeverityWarning).
		WithData(value)
	p.publish(event)
}

func (p *Publisher) ReportSkipped(report, reason string) {
	event := models.NewEvent(models.EventTypeReportSkipped, string(models.StagePredict),
		fmt.Sprintf("Report %s skipped: %s", report, reason)).
		WithSeverity(models.SeverityWarning)
	p.publish(event)
}
