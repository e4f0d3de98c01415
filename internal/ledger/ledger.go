package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Build groups entries into per-account general-ledger views.
//
// Every entry lands twice: as a debit row on its debit account and as a
// credit row on its credit account. Accounts come out sorted by code and
// rows keep the input order, so callers sort entries by date first when
// they want a chronological ledger.
func Build(entries []Entry) []AccountView {
	accounts := make(map[string]*AccountView)
	view := func(code string) *AccountView {
		acc, ok := accounts[code]
		if !ok {
			acc = &AccountView{Code: code, Name: AccountName(code), Transactions: []Row{}}
			accounts[code] = acc
		}
		return acc
	}

	for _, e := range entries {
		debit := view(e.DebitAccount)
		debit.TotalDebit = debit.TotalDebit.Add(e.Amount)
		debit.Transactions = append(debit.Transactions, rowFor(e, e.Amount, decimal.Zero))

		credit := view(e.CreditAccount)
		credit.TotalCredit = credit.TotalCredit.Add(e.Amount)
		credit.Transactions = append(credit.Transactions, rowFor(e, decimal.Zero, e.Amount))
	}

	out := make([]AccountView, 0, len(accounts))
	for _, acc := range accounts {
		acc.Balance = acc.TotalDebit.Sub(acc.TotalCredit)
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

func rowFor(e Entry, debit, credit decimal.Decimal) Row {
	return Row{
		EntryID:   e.ID,
		Date:      e.Date,
		Journal:   e.JournalCode,
		Reference: e.Reference,
		Label:     e.Label,
		Debit:     debit,
		Credit:    credit,
	}
}

// ComputeTotals sums every entry once into each total.
func ComputeTotals(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t.TotalDebit = t.TotalDebit.Add(e.Amount)
		t.TotalCredit = t.TotalCredit.Add(e.Amount)
	}
	return t.settle()
}

// TotalsOf sums account views. For views produced by Build the result
// always balances.
func TotalsOf(views []AccountView) Totals {
	var t Totals
	for _, v := range views {
		t.TotalDebit = t.TotalDebit.Add(v.TotalDebit)
		t.TotalCredit = t.TotalCredit.Add(v.TotalCredit)
	}
	return t.settle()
}

func (t Totals) settle() Totals {
	t.Balance = t.TotalDebit.Sub(t.TotalCredit)
	t.Balanced = t.TotalDebit.Equal(t.TotalCredit)
	return t
}

// Check reports ErrUnbalanced when debits and credits differ. A failure
// means stored data is corrupt and must be shown to the operator.
func (t Totals) Check() error {
	if t.Balanced {
		return nil
	}
	return fmt.Errorf("%w: debit %s, credit %s", ErrUnbalanced, t.TotalDebit.String(), t.TotalCredit.String())
}
