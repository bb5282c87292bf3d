package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func TestWithStage_IncludesRunID(t *testing.T) {
	buf := captureOutput(t)
	Setup("info", "production")

	ctx := WithRunID(context.Background(), "run-42")
	WithStage(ctx, "preprocess").Info("stage started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-42", entry["run_id"])
	assert.Equal(t, "preprocess", entry["stage"])
	assert.Equal(t, "stage started", entry["msg"])
}

func TestFrom_WithoutRunID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RunID(ctx))
	assert.NotContains(t, From(ctx).Data, "run_id")

	assert.Equal(t, "run-7", From(WithRunID(ctx, "run-7")).Data["run_id"])
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	buf := captureOutput(t)
	t.Cleanup(func() { Setup("info", "production") })

	Setup("verbose", "production")
	assert.Equal(t, logrus.InfoLevel, std.GetLevel())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "verbose", entry["log_level"])
	assert.Equal(t, "warning", entry["level"])

	Setup("debug", "production")
	assert.Equal(t, logrus.DebugLevel, std.GetLevel())
}

func TestSetup_ModeSelectsFormatter(t *testing.T) {
	t.Cleanup(func() { Setup("info", "production") })

	Setup("info", "development")
	assert.IsType(t, &logrus.TextFormatter{}, std.Formatter)

	Setup("info", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, std.Formatter)
}
