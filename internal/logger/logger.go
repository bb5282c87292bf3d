// Package logger owns the process-wide logrus logger. Entries derived from a
// context carry the scoring run id so every line of one run can be grepped.
package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type runIDKey struct{}

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

var std = logrus.New()

func init() {
	std.SetOutput(os.Stdout)
	std.SetLevel(logrus.InfoLevel)
	std.SetFormatter(formatter("production"))
}

// formatter maps an app mode to its encoding: readable text while developing,
// JSON lines everywhere else.
func formatter(mode string) logrus.Formatter {
	if mode == "development" {
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		}
	}
	return &logrus.JSONFormatter{TimestampFormat: timestampFormat}
}

// Setup applies the configured level and mode. An unknown level keeps info
// and says so once the new formatter is in place.
func Setup(level, mode string) {
	std.SetFormatter(formatter(mode))

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		std.SetLevel(logrus.InfoLevel)
		std.WithField("log_level", level).Warn("Unknown log level, using info")
		return
	}
	std.SetLevel(parsed)
}

func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run id stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// From returns an entry scoped to the run carried by ctx.
func From(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(std)
	if id := RunID(ctx); id != "" {
		return entry.WithField("run_id", id)
	}
	return entry
}

func WithStage(ctx context.Context, stage string) *logrus.Entry {
	return From(ctx).WithField("stage", stage)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return std.WithFields(fields)
}

func Debugf(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	std.Infof(format, args...)
}

func Errorf(format string, args ...interface{}) {
	std.Errorf(format, args...)
}
