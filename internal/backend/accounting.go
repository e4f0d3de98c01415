package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/africanut/holding-admin/internal/ledger"
)

const dateLayout = "2006-01-02"

type entryWire struct {
	ID             flexID          `json:"id"`
	Date           flexTime        `json:"date"`
	JournalCode    string          `json:"journalCode"`
	Reference      string          `json:"reference"`
	DebitAccount   string          `json:"debitAccount"`
	CreditAccount  string          `json:"creditAccount"`
	Amount         decimal.Decimal `json:"amount"`
	Label          string          `json:"label"`
	CompanySlug    string          `json:"companySlug"`
	Company        *named          `json:"company"`
	DocumentType   string          `json:"documentType"`
	DocumentNumber string          `json:"documentNumber"`
	DocumentDate   *flexTime       `json:"documentDate"`
}

func (w entryWire) entry() ledger.Entry {
	e := ledger.Entry{
		ID:             string(w.ID),
		Date:           w.Date.Time,
		JournalCode:    ledger.JournalCode(w.JournalCode),
		Reference:      w.Reference,
		DebitAccount:   w.DebitAccount,
		CreditAccount:  w.CreditAccount,
		Amount:         w.Amount,
		Label:          w.Label,
		CompanySlug:    w.CompanySlug,
		DocumentType:   ledger.DocumentType(w.DocumentType),
		DocumentNumber: w.DocumentNumber,
	}
	if w.Company != nil {
		if e.CompanySlug == "" {
			e.CompanySlug = w.Company.Slug
		}
		e.CompanyName = w.Company.Name
	}
	if w.DocumentDate != nil && !w.DocumentDate.IsZero() {
		d := w.DocumentDate.Time
		e.DocumentDate = &d
	}
	return e
}

type entryPayload struct {
	Date           string      `json:"date"`
	JournalCode    string      `json:"journalCode"`
	Reference      string      `json:"reference,omitempty"`
	DebitAccount   string      `json:"debitAccount"`
	CreditAccount  string      `json:"creditAccount"`
	Amount         json.Number `json:"amount"`
	Label          string      `json:"label"`
	CompanySlug    string      `json:"companySlug"`
	DocumentType   string      `json:"documentType,omitempty"`
	DocumentNumber string      `json:"documentNumber,omitempty"`
	DocumentDate   string      `json:"documentDate,omitempty"`
}

func payloadOf(e ledger.Entry) entryPayload {
	p := entryPayload{
		Date:           e.Date.Format(dateLayout),
		JournalCode:    string(e.JournalCode),
		Reference:      e.Reference,
		DebitAccount:   e.DebitAccount,
		CreditAccount:  e.CreditAccount,
		Amount:         json.Number(e.Amount.String()),
		Label:          e.Label,
		CompanySlug:    e.CompanySlug,
		DocumentType:   string(e.DocumentType),
		DocumentNumber: e.DocumentNumber,
	}
	if e.DocumentDate != nil {
		p.DocumentDate = e.DocumentDate.Format(dateLayout)
	}
	return p
}

// ListEntries fetches accounting entries. Company and date bounds are sent
// to the backend; the caller still filters locally.
func (c *Client) ListEntries(ctx context.Context, filter ledger.Filter) ([]ledger.Entry, error) {
	q := url.Values{}
	if filter.CompanySlug != "" {
		q.Set("companySlug", filter.CompanySlug)
	}
	if filter.From != nil {
		q.Set("startDate", filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		q.Set("endDate", filter.To.Format(dateLayout))
	}
	var wires []entryWire
	if err := c.do(ctx, call{op: "list entries", method: http.MethodGet, path: "/api/accounting", query: q, out: &wires, protected: true}); err != nil {
		return nil, err
	}
	entries := make([]ledger.Entry, 0, len(wires))
	for _, w := range wires {
		entries = append(entries, w.entry())
	}
	return entries, nil
}

// CreateEntry posts a new entry and returns it as stored.
func (c *Client) CreateEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	var out entryWire
	err := c.do(ctx, call{op: "create entry", method: http.MethodPost, path: "/api/accounting", body: payloadOf(e), out: &out, protected: true})
	if err != nil {
		return ledger.Entry{}, err
	}
	return out.entry(), nil
}

// UpdateEntry replaces the mutable fields of entry id.
func (c *Client) UpdateEntry(ctx context.Context, id string, e ledger.Entry) (ledger.Entry, error) {
	var out entryWire
	err := c.do(ctx, call{op: "update entry", method: http.MethodPut, path: "/api/accounting/" + url.PathEscape(id), body: payloadOf(e), out: &out, protected: true})
	if err != nil {
		return ledger.Entry{}, err
	}
	return out.entry(), nil
}

// DeleteEntry removes entry id.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "delete entry", method: http.MethodDelete, path: "/api/accounting/" + url.PathEscape(id), protected: true})
}
