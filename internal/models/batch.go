package models

import (
	"time"

	"github.com/google/uuid"
)

// RecalcResult is the per-event outcome of a batch recalculation unit
type RecalcResult struct {
	EventID int    `json:"event_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchReport summarizes one recalculate-all run. One event failing never
// aborts the batch; its error lands here instead.
type BatchReport struct {
	RunID      uuid.UUID      `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Total      int            `json:"total"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"` // not dispatched because the run was cancelled
	Results    []RecalcResult `json:"results"`
}
