package ledger

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Filter narrows an entry list before aggregation.
type Filter struct {
	CompanySlug string
	From        *time.Time
	To          *time.Time
	Query       string
}

// ParseFilter reads company, from, to and q query parameters.
func ParseFilter(values url.Values) (Filter, error) {
	f := Filter{
		CompanySlug: strings.TrimSpace(values.Get("company")),
		Query:       strings.TrimSpace(values.Get("q")),
	}
	if raw := values.Get("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: from must be YYYY-MM-DD", errBadFilter)
		}
		f.From = &from
	}
	if raw := values.Get("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: to must be YYYY-MM-DD", errBadFilter)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return Filter{}, fmt.Errorf("%w: to is before from", errBadFilter)
	}
	return f, nil
}

// Key identifies the filter for request de-duplication.
func (f Filter) Key() string {
	var b strings.Builder
	b.WriteString(f.CompanySlug)
	b.WriteByte('|')
	if f.From != nil {
		b.WriteString(f.From.Format(dateLayout))
	}
	b.WriteByte('|')
	if f.To != nil {
		b.WriteString(f.To.Format(dateLayout))
	}
	return b.String()
}

// Apply returns the entries matching every set criterion, in input order.
// Date bounds are inclusive and compare calendar days.
func (f Filter) Apply(entries []Entry) []Entry {
	query := strings.ToLower(f.Query)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.CompanySlug != "" && e.CompanySlug != f.CompanySlug {
			continue
		}
		day := truncateDay(e.Date)
		if f.From != nil && day.Before(truncateDay(*f.From)) {
			continue
		}
		if f.To != nil && day.After(truncateDay(*f.To)) {
			continue
		}
		if query != "" && !matches(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matches(e Entry, query string) bool {
	return strings.Contains(strings.ToLower(e.Label), query) ||
		strings.Contains(e.DebitAccount, query) ||
		strings.Contains(e.CreditAccount, query) ||
		strings.Contains(strings.ToLower(e.Reference), query) ||
		strings.Contains(strings.ToLower(e.CompanySlug), query)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
