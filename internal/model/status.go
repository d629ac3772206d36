package model

import "time"

// RunState is the coarse state published for external polling.
type RunState string

const (
	StateProcessing RunState = "processing"
	StateCompleted  RunState = "completed"
	StateError      RunState = "error"
)

// Status is the operational status object written on every run.
type Status struct {
	Status    RunState  `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"runId,omitempty"`
}
