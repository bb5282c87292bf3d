package models

import "time"

type Stage string

const (
	StageAll        Stage = "all"
	StagePreprocess Stage = "preprocess"
	StagePredict    Stage = "predict"
)

func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageAll, "":
		return StageAll, true
	case StagePreprocess:
		return StagePreprocess, true
	case StagePredict:
		return StagePredict, true
	default:
		return "", false
	}
}

// RunsPreprocess reports whether the stage selection includes preprocessing.
func (s Stage) RunsPreprocess() bool {
	return s == StageAll || s == StagePreprocess
}

// RunsPredict reports whether the stage selection includes prediction.
func (s Stage) RunsPredict() bool {
	return s == StageAll || s == StagePredict
}

// RunSummary describes one pipeline invocation.
type RunSummary struct {
	RunID            string    `json:"run_id"`
	Stage            Stage     `json:"stage"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	RowsRead         int       `json:"rows_read"`
	RowsScored       int       `json:"rows_scored"`
	Positives        int       `json:"positives"`
	Threshold        float64   `json:"threshold"`
	ThresholdDefault bool      `json:"threshold_default"`
	ModelType        string    `json:"model_type,omitempty"`
	ModelVersion     string    `json:"model_version,omitempty"`
	MeanProbability  float64   `json:"mean_probability"`
}

func NewRunSummary(stage Stage) *RunSummary {
	return &RunSummary{
		RunID:     NewUUID(),
		Stage:     stage,
		StartedAt: time.Now().UTC(),
	}
}

func (s *RunSummary) Finish() {
	s.FinishedAt = time.Now().UTC()
}

func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
