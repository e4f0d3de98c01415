package ledger

import (
	"context"
	"errors"
)

// ErrMalformed signals stored entries that the entry form would have rejected.
var ErrMalformed = errors.New("ledger: malformed entries in storage")

// Defect describes one stored entry that breaks double-entry structure.
type Defect struct {
	EntryID string `json:"entryId"`
	Problem string `json:"problem"`
}

// Inspect lists entries missing a side, using the same account twice, posting
// to an account outside the chart or carrying a non-positive amount. Build
// and ComputeTotals assume none of these exist.
func Inspect(entries []Entry) []Defect {
	var defects []Defect
	add := func(e Entry, problem string) {
		defects = append(defects, Defect{EntryID: e.ID, Problem: problem})
	}
	for _, e := range entries {
		switch {
		case e.DebitAccount == "" || e.CreditAccount == "":
			add(e, "missing debit or credit account")
		case e.DebitAccount == e.CreditAccount:
			add(e, "debit and credit account are the same")
		default:
			if _, ok := LookupAccount(e.DebitAccount); !ok {
				add(e, "unknown debit account "+e.DebitAccount)
			}
			if _, ok := LookupAccount(e.CreditAccount); !ok {
				add(e, "unknown credit account "+e.CreditAccount)
			}
		}
		if !e.Amount.IsPositive() {
			add(e, "amount is not positive")
		}
	}
	return defects
}

// IntegrityReport is the outcome of a stored-data check.
type IntegrityReport struct {
	Totals  Totals   `json:"totals"`
	Defects []Defect `json:"defects"`
}

// Err returns ErrUnbalanced or ErrMalformed when the report is not clean.
func (r IntegrityReport) Err() error {
	if err := r.Totals.Check(); err != nil {
		return err
	}
	if len(r.Defects) > 0 {
		return ErrMalformed
	}
	return nil
}

// Integrity fetches the entries once and checks both totals and structure.
func (s *Service) Integrity(ctx context.Context, filter Filter) (IntegrityReport, error) {
	entries, err := s.Entries(ctx, filter)
	if err != nil {
		return IntegrityReport{}, err
	}
	totals := ComputeTotals(entries)
	s.observe(filter.CompanySlug, totals)
	return IntegrityReport{Totals: totals, Defects: Inspect(entries)}, nil
}
