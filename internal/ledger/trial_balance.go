package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ClassGroup aggregates the ledger views of one account class.
type ClassGroup struct {
	Class    string          `json:"class"`
	Accounts []AccountView   `json:"accounts"`
	Debit    decimal.Decimal `json:"debit"`
	Credit   decimal.Decimal `json:"credit"`
	Balance  decimal.Decimal `json:"balance"`
}

// TrialBalanceReport groups ledger views by class digit.
type TrialBalanceReport struct {
	Classes     []ClassGroup    `json:"classes"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// ClassOf returns the class digit of an account code.
func ClassOf(code string) string {
	if acc, ok := LookupAccount(code); ok {
		return acc.Class
	}
	if code == "" {
		return "?"
	}
	return code[:1]
}

// TrialBalance converts ledger views into a class-grouped trial balance.
func TrialBalance(views []AccountView) TrialBalanceReport {
	groups := make(map[string]*ClassGroup)
	keys := make([]string, 0)
	for _, v := range views {
		key := ClassOf(v.Code)
		grp, ok := groups[key]
		if !ok {
			grp = &ClassGroup{Class: key}
			groups[key] = grp
			keys = append(keys, key)
		}
		summary := v
		summary.Transactions = nil
		grp.Accounts = append(grp.Accounts, summary)
		grp.Debit = grp.Debit.Add(v.TotalDebit)
		grp.Credit = grp.Credit.Add(v.TotalCredit)
	}

	sort.Strings(keys)
	report := TrialBalanceReport{Classes: make([]ClassGroup, 0, len(keys))}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		grp.Balance = grp.Debit.Sub(grp.Credit)
		report.Classes = append(report.Classes, *grp)
		report.TotalDebit = report.TotalDebit.Add(grp.Debit)
		report.TotalCredit = report.TotalCredit.Add(grp.Credit)
	}
	return report
}

// IncomeStatement is the result of the period: class 7 products against
// class 6 charges, plus the net of class 8 (HAO) accounts.
type IncomeStatement struct {
	Products   decimal.Decimal `json:"products"`
	Charges    decimal.Decimal `json:"charges"`
	Other      decimal.Decimal `json:"other"`
	Result     decimal.Decimal `json:"result"`
	MarginRate decimal.Decimal `json:"marginRate"`
}

// BalanceSheetAssets lists the debit side of the balance sheet.
type BalanceSheetAssets struct {
	Fixed       decimal.Decimal `json:"fixed"`
	Stocks      decimal.Decimal `json:"stocks"`
	Receivables decimal.Decimal `json:"receivables"`
	Cash        decimal.Decimal `json:"cash"`
	Total       decimal.Decimal `json:"total"`
}

// BalanceSheetLiabilities lists the credit side of the balance sheet.
type BalanceSheetLiabilities struct {
	Equity   decimal.Decimal `json:"equity"`
	Result   decimal.Decimal `json:"result"`
	Payables decimal.Decimal `json:"payables"`
	Total    decimal.Decimal `json:"total"`
}

// BalanceSheet is built from account balances, so it balances whenever the
// ledger does.
type BalanceSheet struct {
	Assets      BalanceSheetAssets      `json:"assets"`
	Liabilities BalanceSheetLiabilities `json:"liabilities"`
	Balanced    bool                    `json:"balanced"`
}

// MonthlyResult is the income statement of one calendar month.
type MonthlyResult struct {
	Month    string          `json:"month"`
	Products decimal.Decimal `json:"products"`
	Charges  decimal.Decimal `json:"charges"`
	Result   decimal.Decimal `json:"result"`
}

// Income computes the income statement from ledger views. Products are read
// on the credit side and charges on the debit side, net of reversals.
func Income(views []AccountView) IncomeStatement {
	var st IncomeStatement
	for _, v := range views {
		switch ClassOf(v.Code) {
		case "7":
			st.Products = st.Products.Add(v.TotalCredit.Sub(v.TotalDebit))
		case "6":
			st.Charges = st.Charges.Add(v.TotalDebit.Sub(v.TotalCredit))
		case "8":
			st.Other = st.Other.Add(v.TotalCredit.Sub(v.TotalDebit))
		}
	}
	st.Result = st.Products.Sub(st.Charges).Add(st.Other)
	if st.Products.IsPositive() {
		st.MarginRate = st.Products.Sub(st.Charges).Div(st.Products).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return st
}

// Balance builds the balance sheet from ledger views. Class 4 accounts are
// split by the sign of their balance; the period result sits with equity.
func Balance(views []AccountView) BalanceSheet {
	var bs BalanceSheet
	for _, v := range views {
		net := v.TotalDebit.Sub(v.TotalCredit)
		switch ClassOf(v.Code) {
		case "1":
			bs.Liabilities.Equity = bs.Liabilities.Equity.Sub(net)
		case "2":
			bs.Assets.Fixed = bs.Assets.Fixed.Add(net)
		case "3":
			bs.Assets.Stocks = bs.Assets.Stocks.Add(net)
		case "4":
			if net.IsPositive() {
				bs.Assets.Receivables = bs.Assets.Receivables.Add(net)
			} else {
				bs.Liabilities.Payables = bs.Liabilities.Payables.Sub(net)
			}
		case "5":
			bs.Assets.Cash = bs.Assets.Cash.Add(net)
		}
	}
	bs.Liabilities.Result = Income(views).Result
	bs.Assets.Total = bs.Assets.Fixed.Add(bs.Assets.Stocks).Add(bs.Assets.Receivables).Add(bs.Assets.Cash)
	bs.Liabilities.Total = bs.Liabilities.Equity.Add(bs.Liabilities.Result).Add(bs.Liabilities.Payables)
	bs.Balanced = bs.Assets.Total.Equal(bs.Liabilities.Total)
	return bs
}

// Monthly splits the income statement by calendar month, oldest first.
func Monthly(views []AccountView) []MonthlyResult {
	months := make(map[string]*MonthlyResult)
	for _, v := range views {
		class := ClassOf(v.Code)
		if class != "6" && class != "7" {
			continue
		}
		for _, row := range v.Transactions {
			key := row.Date.Format("2006-01")
			m, ok := months[key]
			if !ok {
				m = &MonthlyResult{Month: key}
				months[key] = m
			}
			if class == "7" {
				m.Products = m.Products.Add(row.Credit.Sub(row.Debit))
			} else {
				m.Charges = m.Charges.Add(row.Debit.Sub(row.Credit))
			}
		}
	}
	out := make([]MonthlyResult, 0, len(months))
	for _, m := range months {
		m.Result = m.Products.Sub(m.Charges)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
