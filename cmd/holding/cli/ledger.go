package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/africanut/holding-admin/internal/ledger"
)

// LedgerReader is the part of ledger.Service used by the CLI.
type LedgerReader interface {
	Totals(ctx context.Context, filter ledger.Filter) (ledger.Totals, error)
	Export(ctx context.Context, w io.Writer, filter ledger.Filter, format string) error
}

// SessionEnsurer signs the CLI in before it reads the backend.
type SessionEnsurer interface {
	Ensure(ctx context.Context, email, password string) error
}

// LedgerOpsCLI offers ledger export and balance checks from a shell.
type LedgerOpsCLI struct {
	ledger   LedgerReader
	auth     SessionEnsurer
	email    string
	password string
}

// NewLedgerOpsCLI constructs the helper.
func NewLedgerOpsCLI(reader LedgerReader, auth SessionEnsurer, email, password string) (*LedgerOpsCLI, error) {
	if reader == nil || auth == nil {
		return nil, errors.New("ledger cli: reader and auth are required")
	}
	return &LedgerOpsCLI{ledger: reader, auth: auth, email: email, password: password}, nil
}

// LedgerOptions defines flags shared by the ledger commands.
type LedgerOptions struct {
	Company    string
	From       string
	To         string
	Format     string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// LedgerCheckSummary is the JSON output of the check command.
type LedgerCheckSummary struct {
	Company     string `json:"company"`
	TotalDebit  string `json:"total_debit"`
	TotalCredit string `json:"total_credit"`
	Balanced    bool   `json:"balanced"`
}

// ExportCommand writes the filtered entries as CSV or JSON.
func (c *LedgerOpsCLI) ExportCommand(ctx context.Context, opts LedgerOptions) int {
	opts = withStdio(opts)
	filter, ok := c.prepare(ctx, "ledger export", opts)
	if !ok {
		return 1
	}
	if err := c.ledger.Export(ctx, opts.Stdout, filter, opts.Format); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "ledger export: %v\n", err)
		return 1
	}
	return 0
}

// CheckCommand prints the ledger totals. It exits with 10 when debits and
// credits differ.
func (c *LedgerOpsCLI) CheckCommand(ctx context.Context, opts LedgerOptions) int {
	opts = withStdio(opts)
	filter, ok := c.prepare(ctx, "ledger check", opts)
	if !ok {
		return 1
	}
	totals, err := c.ledger.Totals(ctx, filter)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "ledger check: %v\n", err)
		return 1
	}
	summary := LedgerCheckSummary{
		Company:     filter.CompanySlug,
		TotalDebit:  totals.TotalDebit.String(),
		TotalCredit: totals.TotalCredit.String(),
		Balanced:    totals.Balanced,
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "ledger check: encode json: %v\n", err)
			return 1
		}
	} else {
		status := "balanced"
		if !summary.Balanced {
			status = "UNBALANCED"
		}
		_, _ = fmt.Fprintf(opts.Stdout, "debit %s  credit %s  %s\n", summary.TotalDebit, summary.TotalCredit, status)
	}
	if !totals.Balanced {
		return 10
	}
	return 0
}

func (c *LedgerOpsCLI) prepare(ctx context.Context, cmd string, opts LedgerOptions) (ledger.Filter, bool) {
	values := url.Values{}
	values.Set("company", opts.Company)
	values.Set("from", opts.From)
	values.Set("to", opts.To)
	filter, err := ledger.ParseFilter(values)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "%s: %v\n", cmd, err)
		return ledger.Filter{}, false
	}
	if err := c.auth.Ensure(ctx, c.email, c.password); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "%s: sign in: %v\n", cmd, err)
		return ledger.Filter{}, false
	}
	return filter, true
}

func withStdio(opts LedgerOptions) LedgerOptions {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return opts
}
