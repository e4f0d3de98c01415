package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// sharedFetchTimeout bounds a collapsed fetch once it no longer follows any
// single caller's context.
const sharedFetchTimeout = 60 * time.Second

// Source is the remote store of accounting entries.
type Source interface {
	ListEntries(ctx context.Context, filter Filter) ([]Entry, error)
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	UpdateEntry(ctx context.Context, id string, entry Entry) (Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// BalanceRecorder receives the outcome of every totals computation.
type BalanceRecorder interface {
	RecordLedgerBalance(company string, debit, credit float64)
}

// Service exposes ledger queries over a Source.
type Service struct {
	source   Source
	logger   *slog.Logger
	recorder BalanceRecorder
	fetches  singleflight.Group
}

// NewService builds Service. recorder may be nil.
func NewService(source Source, logger *slog.Logger, recorder BalanceRecorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger, recorder: recorder}
}

// Entries fetches entries and applies the filter locally. Concurrent calls
// with the same filter share one fetch; a caller that goes away stops
// waiting without failing the others.
func (s *Service) Entries(ctx context.Context, filter Filter) ([]Entry, error) {
	ch := s.fetches.DoChan(filter.Key(), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return s.source.ListEntries(fetchCtx, filter)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return filter.Apply(res.Val.([]Entry)), nil
	}
}

// Ledger returns the general ledger, rows in chronological order.
func (s *Service) Ledger(ctx context.Context, filter Filter) ([]AccountView, error) {
	entries, err := s.Entries(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortByDate(entries)
	return Build(entries), nil
}

// Totals computes the global debit/credit totals. An unbalanced result is
// returned as-is and logged; callers surface Totals.Check to the operator.
func (s *Service) Totals(ctx context.Context, filter Filter) (Totals, error) {
	entries, err := s.Entries(ctx, filter)
	if err != nil {
		return Totals{}, err
	}
	totals := ComputeTotals(entries)
	s.observe(filter.CompanySlug, totals)
	return totals, nil
}

// TrialBalance groups the ledger by account class.
func (s *Service) TrialBalance(ctx context.Context, filter Filter) (TrialBalanceReport, error) {
	views, err := s.Ledger(ctx, filter)
	if err != nil {
		return TrialBalanceReport{}, err
	}
	return TrialBalance(views), nil
}

// IncomeStatement computes the period result.
func (s *Service) IncomeStatement(ctx context.Context, filter Filter) (IncomeStatement, error) {
	views, err := s.Ledger(ctx, filter)
	if err != nil {
		return IncomeStatement{}, err
	}
	return Income(views), nil
}

// BalanceSheet computes assets against equity and liabilities.
func (s *Service) BalanceSheet(ctx context.Context, filter Filter) (BalanceSheet, error) {
	views, err := s.Ledger(ctx, filter)
	if err != nil {
		return BalanceSheet{}, err
	}
	bs := Balance(views)
	if !bs.Balanced {
		s.logger.Warn("balance sheet does not balance",
			slog.String("company", filter.CompanySlug),
			slog.String("assets", bs.Assets.Total.String()),
			slog.String("liabilities", bs.Liabilities.Total.String()),
		)
	}
	return bs, nil
}

// Monthly returns the income statement per month.
func (s *Service) Monthly(ctx context.Context, filter Filter) ([]MonthlyResult, error) {
	views, err := s.Ledger(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Monthly(views), nil
}

// Create validates the input and posts it to the backend.
func (s *Service) Create(ctx context.Context, in EntryInput) (Entry, error) {
	entry, err := ValidateInput(in)
	if err != nil {
		return Entry{}, err
	}
	created, err := s.source.CreateEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("accounting entry created",
		slog.String("id", created.ID),
		slog.String("company", created.CompanySlug),
		slog.String("amount", created.Amount.String()),
	)
	return created, nil
}

// Update replaces the mutable fields of an entry.
func (s *Service) Update(ctx context.Context, id string, in EntryInput) (Entry, error) {
	if strings.TrimSpace(id) == "" {
		return Entry{}, fmt.Errorf("ledger: entry id required: %w", httpx.ErrValidation)
	}
	entry, err := ValidateInput(in)
	if err != nil {
		return Entry{}, err
	}
	entry.ID = id
	return s.source.UpdateEntry(ctx, id, entry)
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("ledger: entry id required: %w", httpx.ErrValidation)
	}
	if err := s.source.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.logger.Info("accounting entry deleted", slog.String("id", id))
	return nil
}

// Export writes the filtered entries, or the ledger, in format.
func (s *Service) Export(ctx context.Context, w io.Writer, filter Filter, format string) error {
	if _, _, err := ContentType(format); err != nil {
		return err
	}
	entries, err := s.Entries(ctx, filter)
	if err != nil {
		return err
	}
	return Write(w, entries, format)
}

func (s *Service) observe(company string, totals Totals) {
	if s.recorder != nil {
		s.recorder.RecordLedgerBalance(company, totals.TotalDebit.InexactFloat64(), totals.TotalCredit.InexactFloat64())
	}
	if err := totals.Check(); err != nil {
		s.logger.Error("ledger out of balance",
			slog.String("company", company),
			slog.Any("error", err),
		)
	}
}

func sortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}
