package workspace

import (
	"time"

	"med-eval/pkg/dataset"
	"med-eval/pkg/session"
)

// RunRecord is the persisted outcome of one conversation, stored as
// [case-id].run.json in the results directory.
type RunRecord struct {
	RunID       string            `json:"run_id"`
	CaseID      string            `json:"case_id"`
	Model       string            `json:"model"`
	Status      session.Status    `json:"status"`
	History     []session.Message `json:"history"`
	FinalAnswer string            `json:"final_answer,omitempty"`
	Correct     bool              `json:"correct"`
	Turns       int               `json:"turns"`
	StartedAt   time.Time         `json:"started_at"`
	DurationMS  int64             `json:"duration_ms"`
}

// CaseView couples a dataset case with its run record, if any.
type CaseView struct {
	ID   string        `json:"id"`
	Case *dataset.Case `json:"case,omitempty"`
	Run  *RunRecord    `json:"run,omitempty"`
}

// Config is what the viewer UI needs to render itself.
type Config struct {
	Model    string   `json:"model"`
	FHIRBase string   `json:"fhir_base"`
	Tasks    []string `json:"tasks"`
}

// Event is pushed to websocket clients when a run record changes on disk.
type Event struct {
	Type   string `json:"type"`
	CaseID string `json:"case_id"`
}
