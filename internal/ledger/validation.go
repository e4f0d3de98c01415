package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

var errBadFilter = fmt.Errorf("ledger: invalid filter: %w", httpx.ErrValidation)

// ValidationError lists per-field problems found before any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "ledger: invalid entry: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match httpx.ErrValidation.
func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

// FieldErrors exposes the per-field messages.
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		_, ok := LookupAccount(fl.Field().String())
		return ok
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateInput checks a submitted entry form and converts it to an Entry.
// The returned entry has no ID; the backend assigns one.
func ValidateInput(in EntryInput) (Entry, error) {
	fields := make(map[string]string)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Entry{}, err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = messageFor(fe)
		}
	}

	var amount decimal.Decimal
	if _, missing := fields["amount"]; !missing {
		parsed, err := decimal.NewFromString(in.Amount.String())
		switch {
		case err != nil:
			fields["amount"] = "must be a number"
		case !parsed.IsPositive():
			fields["amount"] = "must be greater than zero"
		case !parsed.Equal(parsed.Truncate(0)):
			fields["amount"] = "must be a whole number of XAF"
		default:
			amount = parsed
		}
	}
	if len(fields) > 0 {
		return Entry{}, &ValidationError{Fields: fields}
	}

	date, _ := time.Parse(dateLayout, in.Date)
	entry := Entry{
		Date:           date,
		JournalCode:    JournalCode(in.JournalCode),
		Reference:      strings.TrimSpace(in.Reference),
		DebitAccount:   in.DebitAccount,
		CreditAccount:  in.CreditAccount,
		Amount:         amount,
		Label:          strings.TrimSpace(in.Label),
		CompanySlug:    in.CompanySlug,
		DocumentType:   DocumentType(in.DocumentType),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
	}
	if in.DocumentDate != "" {
		docDate, _ := time.Parse(dateLayout, in.DocumentDate)
		entry.DocumentDate = &docDate
	}
	return entry, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "account":
		return "is not in the chart of accounts"
	case "nefield":
		return "must differ from the debit account"
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
