package hr

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// ValidationError lists per-field problems of an employee form.
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
	return "hr: invalid employee: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// ValidateEmployee checks the form and converts it to an Employee without ID.
// Text fields are trimmed first, so a blank name counts as missing.
func ValidateEmployee(in EmployeeInput) (Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.CompanySlug = strings.TrimSpace(in.CompanySlug)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	fields := make(map[string]string)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Employee{}, err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = messageFor(fe)
		}
	}

	var salary *decimal.Decimal
	if raw := strings.TrimSpace(in.Salary.String()); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		switch {
		case err != nil:
			fields["salary"] = "must be a number"
		case parsed.IsNegative():
			fields["salary"] = "must not be negative"
		default:
			salary = &parsed
		}
	}
	if len(fields) > 0 {
		return Employee{}, &ValidationError{Fields: fields}
	}

	emp := Employee{
		Name:         in.Name,
		Role:         in.Role,
		CompanySlug:  in.CompanySlug,
		Email:        in.Email,
		Nationality:  strings.TrimSpace(in.Nationality),
		ContractType: in.ContractType,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Salary:       salary,
		PhotoURL:     in.PhotoURL,
	}
	if in.DateOfBirth != "" {
		dob, _ := time.Parse(dateLayout, in.DateOfBirth)
		emp.DateOfBirth = &dob
	}
	return emp, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be an email address"
	case "url":
		return "must be a URL"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
