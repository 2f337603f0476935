package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCollectionsOverdueScan flags unpaid installments past their due date.
	TaskCollectionsOverdueScan = "collections:overdue_scan"
)

// OverdueScanPayload parameterises one overdue scan. AsOf is an optional
// yyyy-mm-dd cutoff; empty means "today".
type OverdueScanPayload struct {
	AsOf string `json:"as_of,omitempty"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCollectionsOverdueScan, data), nil
}
