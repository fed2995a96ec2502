// Package jobs hosts the background worker: cache warmup and scheduled
// PDF exports run off the request path through Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates widget caches.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskPDFExport renders the scheduled analytics PDF.
	TaskPDFExport = "dashboard:pdf_export"
)

// WarmupPayload scopes a warmup run.
type WarmupPayload struct {
	// Widgets limits the run to specific widget IDs; empty warms all.
	Widgets []string `json:"widgets,omitempty"`
}

// NewWarmupTask constructs an Asynq warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// ExportPayload scopes a scheduled export run.
type ExportPayload struct {
	Plan string `json:"plan,omitempty"`
}

// NewExportTask constructs an Asynq export task.
func NewExportTask(payload ExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPDFExport, data), nil
}
