package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity recomputes ledger totals and flags imbalances.
	TaskLedgerIntegrity = "ledger:integrity"
)

// LedgerIntegrityPayload scopes an integrity run. An empty slug checks
// every company at once.
type LedgerIntegrityPayload struct {
	CompanySlug string `json:"company_slug"`
}

// NewLedgerIntegrityTask constructs an Asynq task.
func NewLedgerIntegrityTask(companySlug string) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{CompanySlug: strings.TrimSpace(companySlug)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}
