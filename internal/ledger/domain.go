package ledger

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// JournalCode identifies the journal an entry is booked in.
type JournalCode string

const (
	JournalPurchases JournalCode = "ACH"
	JournalSales     JournalCode = "VTE"
	JournalBank      JournalCode = "BNQ"
	JournalCash      JournalCode = "CSS"
	JournalMisc      JournalCode = "OD"
)

// Side is the natural side of an account.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// DocumentType enumerates supporting document kinds.
type DocumentType string

const (
	DocumentInvoice       DocumentType = "FACT"
	DocumentDeliveryNote  DocumentType = "BL"
	DocumentPurchaseOrder DocumentType = "BC"
	DocumentCheque        DocumentType = "CHEQ"
	DocumentTransfer      DocumentType = "TRANS"
	DocumentCreditNote    DocumentType = "AVOIR"
	DocumentContract      DocumentType = "CONTRAT"
	DocumentDeclaration   DocumentType = "DECL"
)

// Account is a node of the chart of accounts.
type Account struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Class string `json:"class"`
	Side  Side   `json:"side"`
}

// Entry is an elementary debit/credit pair as stored by the backend.
type Entry struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	JournalCode    JournalCode     `json:"journalCode"`
	Reference      string          `json:"reference,omitempty"`
	DebitAccount   string          `json:"debitAccount"`
	CreditAccount  string          `json:"creditAccount"`
	Amount         decimal.Decimal `json:"amount"`
	Label          string          `json:"label"`
	CompanySlug    string          `json:"companySlug"`
	CompanyName    string          `json:"companyName,omitempty"`
	DocumentType   DocumentType    `json:"documentType,omitempty"`
	DocumentNumber string          `json:"documentNumber,omitempty"`
	DocumentDate   *time.Time      `json:"documentDate,omitempty"`
}

// EntryInput carries the mutable fields of an entry on create and update.
type EntryInput struct {
	Date           string      `json:"date" validate:"required,datetime=2006-01-02"`
	JournalCode    string      `json:"journalCode" validate:"required,oneof=ACH VTE BNQ CSS OD"`
	Reference      string      `json:"reference" validate:"max=64"`
	DebitAccount   string      `json:"debitAccount" validate:"required,account"`
	CreditAccount  string      `json:"creditAccount" validate:"required,account,nefield=DebitAccount"`
	Amount         json.Number `json:"amount" validate:"required"`
	Label          string      `json:"label" validate:"required,max=255"`
	CompanySlug    string      `json:"companySlug" validate:"required"`
	DocumentType   string      `json:"documentType" validate:"omitempty,oneof=FACT BL BC CHEQ TRANS AVOIR CONTRAT DECL"`
	DocumentNumber string      `json:"documentNumber" validate:"max=64"`
	DocumentDate   string      `json:"documentDate" validate:"omitempty,datetime=2006-01-02"`
}

// Row is one side of an entry as it appears in an account's ledger.
type Row struct {
	EntryID   string          `json:"entryId"`
	Date      time.Time       `json:"date"`
	Journal   JournalCode     `json:"journal"`
	Reference string          `json:"reference,omitempty"`
	Label     string          `json:"label"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// AccountView is the derived general-ledger view of one account.
type AccountView struct {
	Code         string          `json:"accountCode"`
	Name         string          `json:"accountName"`
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Row           `json:"transactions"`
}

// Totals summarises debit and credit over an entry list.
type Totals struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"`
	Balanced    bool            `json:"balanced"`
}

var (
	// ErrUnbalanced signals stored entries whose debits and credits differ.
	ErrUnbalanced = errors.New("ledger: total debit does not equal total credit")
	// ErrEntryNotFound indicates an unknown entry id.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrUnknownFormat indicates an unsupported export format.
	ErrUnknownFormat = errors.New("ledger: unknown export format")
)
