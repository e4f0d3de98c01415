package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/africanut/holding-admin/internal/jobs"
	"github.com/africanut/holding-admin/internal/ledger"
	"github.com/africanut/holding-admin/internal/platform/httpx"
)

const ledgerIntegrityJob = "ledger_integrity"

// LedgerChecker checks stored entries for imbalance and malformed rows.
type LedgerChecker interface {
	Integrity(ctx context.Context, filter ledger.Filter) (ledger.IntegrityReport, error)
}

// SessionEnsurer makes sure a backend session is held before a run.
type SessionEnsurer interface {
	Ensure(ctx context.Context, email, password string) error
}

// Credentials sign the worker in when no persisted session is usable.
type Credentials struct {
	Email    string
	Password string
}

// LedgerIntegrityJob verifies that total debit equals total credit and that
// every stored entry is a well-formed pair.
type LedgerIntegrityJob struct {
	ledger  LedgerChecker
	auth    SessionEnsurer
	creds   Credentials
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLedgerIntegrityJob wires the job. metrics may be nil.
func NewLedgerIntegrityJob(checker LedgerChecker, auth SessionEnsurer, creds Credentials, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerIntegrityJob{ledger: checker, auth: auth, creds: creds, logger: logger, metrics: metrics}
}

// Handle processes TaskLedgerIntegrity tasks. Failures that a retry cannot
// fix (bad payload, rejected credentials, corrupt entries) skip retry so
// the task is archived for inspection.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("ledger integrity: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.metrics.Track(ledgerIntegrityJob)
	return tracker.End(j.run(ctx, payload.CompanySlug))
}

func (j *LedgerIntegrityJob) run(ctx context.Context, company string) error {
	logger := j.logger.With(slog.String("job", ledgerIntegrityJob), slog.String("company", company))

	if err := j.auth.Ensure(ctx, j.creds.Email, j.creds.Password); err != nil {
		logger.Warn("ledger integrity sign in", slog.Any("error", err))
		return permanentIf(fmt.Errorf("ledger integrity: sign in: %w", err))
	}

	report, err := j.ledger.Integrity(ctx, ledger.Filter{CompanySlug: company})
	if err != nil {
		return permanentIf(fmt.Errorf("ledger integrity: fetch entries: %w", err))
	}
	if !report.Totals.Balanced {
		j.metrics.AddUnbalanced(company)
	}
	j.metrics.AddMalformed(company, len(report.Defects))
	for _, d := range report.Defects {
		logger.Error("malformed ledger entry", slog.String("entry_id", d.EntryID), slog.String("problem", d.Problem))
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("ledger integrity: %w: %w", err, asynq.SkipRetry)
	}

	logger.Info("ledger integrity ok",
		slog.String("total_debit", report.Totals.TotalDebit.String()),
		slog.String("total_credit", report.Totals.TotalCredit.String()),
	)
	return nil
}

func permanentIf(err error) error {
	if errors.Is(err, httpx.ErrUnauthorized) || errors.Is(err, httpx.ErrForbidden) {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}
