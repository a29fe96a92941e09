package models

import (
	"sync"
	"time"
)

// Pipeline stages.
const (
	StageAggregate = "aggregate"
	StageScore     = "score"
	StageSeries    = "series"
)

// UnitFailure records one failed unit of work, keyed by day key or filename.
type UnitFailure struct {
	Entity string
	Stage  string
	Unit   string
	Err    error
}

// RunReport collects the outcome of one pipeline run.
// It is safe for concurrent use by the workers of a stage.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	mu            sync.Mutex
	DaysMerged    int
	FilesScored   int
	RecordsScored int
	SeriesWritten int
	Failures      []UnitFailure
}

// NewRunReport creates an empty report for the given run.
func NewRunReport(runID string) *RunReport {
	return &RunReport{RunID: runID, StartedAt: time.Now()}
}

// Fail records a failed unit.
func (r *RunReport) Fail(entity, stage, unit string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, UnitFailure{Entity: entity, Stage: stage, Unit: unit, Err: err})
}

// AddMerged counts a merged day.
func (r *RunReport) AddMerged() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DaysMerged++
}

// AddScored counts a scored corpus file and its records.
func (r *RunReport) AddScored(records int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FilesScored++
	r.RecordsScored += records
}

// AddSeries counts a written series file.
func (r *RunReport) AddSeries() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SeriesWritten++
}

// FailedUnits returns a copy of the failures recorded so far.
func (r *RunReport) FailedUnits() []UnitFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]UnitFailure, len(r.Failures))
	copy(out, r.Failures)
	return out
}

// Finish stamps the end of the run.
func (r *RunReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

// Duration returns the wall time of a finished run.
func (r *RunReport) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
