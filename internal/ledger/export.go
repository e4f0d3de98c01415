package ledger

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Export formats understood by Export.
const (
	FormatCSV       = "csv"
	FormatJSON      = "json"
	FormatLedgerCSV = "ledger-csv"
)

const csvBufferSize = 32 * 1024

var entryHeader = []string{
	"Date", "Journal", "Référence", "Compte Débit", "Compte Crédit",
	"Libellé", "Montant (XAF)", "Entité", "Type de justificatif", "Numéro de justificatif",
}

var ledgerHeader = []string{
	"Compte", "Intitulé", "Date", "Journal", "Référence", "Libellé", "Débit", "Crédit",
}

// ContentType returns the MIME type and file extension of format.
func ContentType(format string) (string, string, error) {
	switch strings.ToLower(format) {
	case FormatCSV, FormatLedgerCSV:
		return "text/csv; charset=utf-8", "csv", nil
	case FormatJSON:
		return "application/json", "json", nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func newCSVWriter(w io.Writer) (*csv.Writer, *bufio.Writer) {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.Comma = ';'
	writer.UseCRLF = true
	return writer, buf
}

func flush(writer *csv.Writer, buf *bufio.Writer) error {
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

// Write renders entries in format. The ledger format sorts entries by date
// in place before aggregating them.
func Write(w io.Writer, entries []Entry, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, entries)
	case FormatLedgerCSV:
		sortByDate(entries)
		return WriteLedgerCSV(w, Build(entries))
	case FormatCSV:
		return WriteCSV(w, entries)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes one line per entry.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer, buf := newCSVWriter(w)
	if err := writer.Write(entryHeader); err != nil {
		return err
	}
	for _, e := range entries {
		company := e.CompanyName
		if company == "" {
			company = e.CompanySlug
		}
		journal := string(e.JournalCode)
		if journal == "" {
			journal = string(JournalMisc)
		}
		row := []string{
			e.Date.Format("02/01/2006"),
			journal,
			orDash(e.Reference),
			AccountLabel(e.DebitAccount),
			AccountLabel(e.CreditAccount),
			e.Label,
			e.Amount.String(),
			orDash(company),
			orDash(string(e.DocumentType)),
			orDash(e.DocumentNumber),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return flush(writer, buf)
}

// WriteLedgerCSV writes the general ledger, one line per account row
// followed by an account total line.
func WriteLedgerCSV(w io.Writer, views []AccountView) error {
	writer, buf := newCSVWriter(w)
	if err := writer.Write(ledgerHeader); err != nil {
		return err
	}
	for _, v := range views {
		for _, row := range v.Transactions {
			line := []string{
				v.Code,
				v.Name,
				row.Date.Format("02/01/2006"),
				string(row.Journal),
				orDash(row.Reference),
				row.Label,
				row.Debit.String(),
				row.Credit.String(),
			}
			if err := writer.Write(line); err != nil {
				return err
			}
		}
		total := []string{v.Code, v.Name, "", "", "", "Total", v.TotalDebit.String(), v.TotalCredit.String()}
		if err := writer.Write(total); err != nil {
			return err
		}
	}
	return flush(writer, buf)
}

// WriteJSON writes the entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if entries == nil {
		entries = []Entry{}
	}
	return enc.Encode(entries)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
