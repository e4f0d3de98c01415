package ledger

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func entry(id, debit, credit string, amount int64) Entry {
	return Entry{
		ID:            id,
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		JournalCode:   JournalMisc,
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        decimal.NewFromInt(amount),
		Label:         "entry " + id,
		CompanySlug:   "africanut-fish",
	}
}

func TestBuildSingleEntryMirrorsBothSides(t *testing.T) {
	views := Build([]Entry{entry("1", "601", "512", 1000)})
	require.Len(t, views, 2)

	require.Equal(t, "512", views[0].Code)
	require.True(t, views[0].TotalDebit.IsZero())
	require.True(t, views[0].TotalCredit.Equal(decimal.NewFromInt(1000)))
	require.True(t, views[0].Balance.Equal(decimal.NewFromInt(-1000)))
	require.Len(t, views[0].Transactions, 1)
	require.True(t, views[0].Transactions[0].Credit.Equal(decimal.NewFromInt(1000)))
	require.True(t, views[0].Transactions[0].Debit.IsZero())

	require.Equal(t, "601", views[1].Code)
	require.Equal(t, "Achats de matières premières", views[1].Name)
	require.True(t, views[1].TotalDebit.Equal(decimal.NewFromInt(1000)))
	require.True(t, views[1].TotalCredit.IsZero())
	require.Equal(t, "1", views[1].Transactions[0].EntryID)
}

func TestBuildSortsAccountsAndKeepsRowOrder(t *testing.T) {
	entries := []Entry{
		entry("a", "411", "701", 5000),
		entry("b", "601", "512", 2000),
		entry("c", "411", "706", 300),
	}
	views := Build(entries)

	codes := make([]string, 0, len(views))
	for _, v := range views {
		codes = append(codes, v.Code)
	}
	require.Equal(t, []string{"411", "512", "601", "701", "706"}, codes)

	clients := views[0]
	require.Len(t, clients.Transactions, 2)
	require.Equal(t, "a", clients.Transactions[0].EntryID)
	require.Equal(t, "c", clients.Transactions[1].EntryID)
	require.True(t, clients.TotalDebit.Equal(decimal.NewFromInt(5300)))
}

func TestBuildUnknownAccountName(t *testing.T) {
	views := Build([]Entry{entry("1", "999", "512", 10)})
	require.Equal(t, "999", views[1].Code)
	require.Equal(t, UnknownAccountName, views[1].Name)
}

func TestBuildEmpty(t *testing.T) {
	require.Empty(t, Build(nil))
	require.True(t, TotalsOf(Build(nil)).Balanced)
}

func TestBuildAlwaysBalances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := rng.Intn(40) + 1
		entries := make([]Entry, 0, n)
		for i := 0; i < n; i++ {
			debit := Chart[rng.Intn(len(Chart))].Code
			credit := Chart[rng.Intn(len(Chart))].Code
			for credit == debit {
				credit = Chart[rng.Intn(len(Chart))].Code
			}
			entries = append(entries, entry(strconv.Itoa(i), debit, credit, rng.Int63n(1_000_000)+1))
		}
		totals := TotalsOf(Build(entries))
		require.True(t, totals.Balanced, "round %d", round)
		require.True(t, totals.Balance.IsZero())
		require.True(t, totals.TotalDebit.Equal(ComputeTotals(entries).TotalDebit))
	}
}

func TestComputeTotalsTwoEntries(t *testing.T) {
	totals := ComputeTotals([]Entry{
		entry("1", "411", "701", 5000),
		entry("2", "601", "512", 2000),
	})
	require.True(t, totals.TotalDebit.Equal(decimal.NewFromInt(7000)))
	require.True(t, totals.TotalCredit.Equal(decimal.NewFromInt(7000)))
	require.True(t, totals.Balance.IsZero())
	require.True(t, totals.Balanced)
	require.NoError(t, totals.Check())
}

func TestTotalsCheckReportsImbalance(t *testing.T) {
	totals := Totals{TotalDebit: decimal.NewFromInt(10), TotalCredit: decimal.NewFromInt(9)}.settle()
	require.False(t, totals.Balanced)
	require.ErrorIs(t, totals.Check(), ErrUnbalanced)
	require.Contains(t, totals.Check().Error(), "debit 10")
}

func TestTrialBalanceGroupsByClass(t *testing.T) {
	report := TrialBalance(Build([]Entry{
		entry("1", "411", "701", 5000),
		entry("2", "601", "512", 2000),
		entry("3", "512", "411", 1500),
	}))

	classes := make([]string, 0)
	for _, c := range report.Classes {
		classes = append(classes, c.Class)
	}
	require.Equal(t, []string{"4", "5", "6", "7"}, classes)
	require.True(t, report.TotalDebit.Equal(report.TotalCredit))

	four := report.Classes[0]
	require.True(t, four.Debit.Equal(decimal.NewFromInt(5000)))
	require.True(t, four.Credit.Equal(decimal.NewFromInt(1500)))
	require.True(t, four.Balance.Equal(decimal.NewFromInt(3500)))
	require.Nil(t, four.Accounts[0].Transactions)
}

func TestChartLookups(t *testing.T) {
	acc, ok := LookupAccount("512")
	require.True(t, ok)
	require.Equal(t, SideDebit, acc.Side)
	require.Equal(t, "5", acc.Class)
	require.Equal(t, "701 - Ventes de produits finis", AccountLabel("701"))
	require.Equal(t, UnknownAccountName, AccountLabel("000"))

	byClass := AccountsByClass()
	require.Len(t, byClass["5"], 2)
	require.Equal(t, "511", byClass["5"][0].Code)
}
