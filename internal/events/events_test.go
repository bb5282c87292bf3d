package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/mlops-scoring/internal/logger"
	"github.com/OldStager01/mlops-scoring/pkg/models"
)

func collect(bus *EventBus) *[]*models.Event {
	var got []*models.Event
	bus.SubscribeAll(func(e *models.Event) { got = append(got, e) })
	return &got
}

func TestEventBus_DeliversInOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	bus.SubscribeAll(func(e *models.Event) { order = append(order, "all:"+string(e.Type)) })
	bus.Subscribe(models.EventTypeStageStarted, func(e *models.Event) { order = append(order, "typed:"+e.Stage) })

	bus.Publish(models.NewEvent(models.EventTypeStageStarted, "preprocess", "go"))
	bus.Publish(models.NewEvent(models.EventTypeStageCompleted, "preprocess", "done"))

	assert.Equal(t, []string{
		"typed:preprocess",
		"all:stage_started",
		"all:stage_completed",
	}, order)
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus()
	got := collect(bus)

	bus.Close()
	bus.Publish(models.NewEvent(models.EventTypeStageStarted, "predict", "late"))

	assert.Empty(t, *got)
}

func TestPublisher_AttachesRunID(t *testing.T) {
	bus := NewEventBus()
	got := collect(bus)
	pub := NewPublisher(bus).WithRunID("run-1")

	pub.StageStarted("preprocess")
	pub.StageCompleted("preprocess", 1500*time.Millisecond, 10)
	pub.StageFailed("predict", time.Second, errors.New("model load failed"))
	pub.ThresholdDefaulted("threshold.txt", 0.5)
	pub.ReportSkipped("importances", "model has no feature importances")

	require.Len(t, *got, 5)
	for _, e := range *got {
		assert.Equal(t, "run-1", e.RunID)
		assert.NotEmpty(t, e.ID)
	}

	events := *got
	assert.Equal(t, models.EventTypeStageCompleted, events[1].Type)
	assert.Equal(t, StageResult{Stage: "preprocess", Duration: 1500 * time.Millisecond, Rows: 10}, events[1].Data)

	assert.Equal(t, models.SeverityCritical, events[2].Severity)
	assert.Contains(t, events[2].Message, "model load failed")

	assert.Equal(t, models.EventTypeThresholdDefaulted, events[3].Type)
	assert.Equal(t, models.SeverityWarning, events[3].Severity)
	assert.Equal(t, 0.5, events[3].Data)

	assert.Equal(t, models.EventTypeReportSkipped, events[4].Type)
}

func TestEventLogger_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	logger.Setup("info", "production")

	bus := NewEventBus()
	NewEventLogger().Attach(bus)
	pub := NewPublisher(bus).WithRunID("run-9")

	pub.StageCompleted("predict", 250*time.Millisecond, 3)
	pub.ThresholdDefaulted("threshold.txt", 0.5)

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "stage_completed", entries[0]["event_type"])
	assert.Equal(t, "run-9", entries[0]["run_id"])
	assert.Equal(t, "predict", entries[0]["stage"])
	assert.Equal(t, float64(250), entries[0]["duration_ms"])
	assert.Equal(t, float64(3), entries[0]["rows"])

	assert.Equal(t, "warning", entries[1]["level"])
	assert.Equal(t, "threshold_defaulted", entries[1]["event_type"])
}
