package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeExportInvoices is the task type for bulk invoice exports.
	TaskTypeExportInvoices = "export:invoices"
)

// ExportInvoicesPayload carries a bulk export request into the worker.
// ArtifactID is where the finished document lands; the client polls it.
// Either IDs or the filter fields select the working set.
type ExportInvoicesPayload struct {
	ArtifactID          string     `json:"artifact_id"`
	IDs                 []int64    `json:"ids,omitempty"`
	DateFrom            *time.Time `json:"date_from,omitempty"`
	DateTo              *time.Time `json:"date_to,omitempty"`
	CustomerID          *int64     `json:"customer_id,omitempty"`
	IncludeExchangeRate *bool      `json:"exchange_rate,omitempty"`
	Format              string     `json:"format"`
}

// NewExportInvoicesTask constructs an Asynq task.
func NewExportInvoicesTask(payload ExportInvoicesPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeExportInvoices, data), nil
}
