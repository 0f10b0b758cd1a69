// Package probe is the execution engine: it resolves credentials, drives
// scenarios against their services, and condenses the per-scenario results
// into a single run verdict.
package probe

import (
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of one scenario execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusTimeout Status = "timeout"
	StatusSkipped Status = "skipped"
)

// FailureClass refines a failure for verdict aggregation. Authentication
// failures outrank network failures, which outrank service failures.
type FailureClass string

const (
	FailureNone    FailureClass = ""
	FailureAuth    FailureClass = "auth"
	FailureNetwork FailureClass = "network"
	FailureService FailureClass = "service"
)

// ScenarioResult records one scenario's outcome in execution order.
type ScenarioResult struct {
	Service  string       `json:"service"`
	Scenario string       `json:"scenario"`
	Status   Status       `json:"status"`
	Class    FailureClass `json:"failure_class,omitempty"`
	// Reason is a short human explanation for non-success results.
	Reason     string        `json:"reason,omitempty"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Message    string        `json:"message,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
}

// Report is the full record of one run. Results appear in the order the
// scenarios executed, which for sequential runs is declaration order.
type Report struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Cancelled  bool             `json:"cancelled,omitempty"`
	Results    []ScenarioResult `json:"results"`
}

// NewReport stamps a fresh report with a unique run id.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

func (r *Report) finish() {
	r.FinishedAt = time.Now()
}

// Counts tallies results by status.
func (r *Report) Counts() (success, failure, timeout, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusSuccess:
			success++
		case StatusFailure:
			failure++
		case StatusTimeout:
			timeout++
		case StatusSkipped:
			skipped++
		}
	}
	return
}
