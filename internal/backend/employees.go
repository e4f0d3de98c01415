package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/africanut/holding-admin/internal/hr"
)

type employeeWire struct {
	ID           flexID           `json:"id"`
	Name         string           `json:"name"`
	Role         string           `json:"role"`
	CompanySlug  string           `json:"companySlug"`
	Company      *named           `json:"company"`
	DateOfBirth  *flexTime        `json:"date_of_birth"`
	Email        string           `json:"email"`
	Nationality  string           `json:"nationality"`
	ContractType string           `json:"contract_type"`
	Phone        string           `json:"phone"`
	Address      string           `json:"address"`
	Salary       *decimal.Decimal `json:"salary"`
	PhotoURL     string           `json:"photo_url"`
}

func (w employeeWire) employee() hr.Employee {
	e := hr.Employee{
		ID:           string(w.ID),
		Name:         w.Name,
		Role:         w.Role,
		CompanySlug:  w.CompanySlug,
		Email:        w.Email,
		Nationality:  w.Nationality,
		ContractType: w.ContractType,
		Phone:        w.Phone,
		Address:      w.Address,
		Salary:       w.Salary,
		PhotoURL:     w.PhotoURL,
	}
	if w.Company != nil {
		if e.CompanySlug == "" {
			e.CompanySlug = w.Company.Slug
		}
		e.CompanyName = w.Company.Name
	}
	if w.DateOfBirth != nil && !w.DateOfBirth.IsZero() {
		d := w.DateOfBirth.Time
		e.DateOfBirth = &d
	}
	return e
}

type employeePayload struct {
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	CompanySlug  string       `json:"companySlug"`
	DateOfBirth  string       `json:"date_of_birth,omitempty"`
	Email        string       `json:"email,omitempty"`
	Nationality  string       `json:"nationality,omitempty"`
	ContractType string       `json:"contract_type,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Address      string       `json:"address,omitempty"`
	Salary       *json.Number `json:"salary"`
	PhotoURL     string       `json:"photo_url,omitempty"`
}

func employeePayloadOf(e hr.Employee) employeePayload {
	p := employeePayload{
		Name:         e.Name,
		Role:         e.Role,
		CompanySlug:  e.CompanySlug,
		Email:        e.Email,
		Nationality:  e.Nationality,
		ContractType: e.ContractType,
		Phone:        e.Phone,
		Address:      e.Address,
		PhotoURL:     e.PhotoURL,
	}
	if e.DateOfBirth != nil {
		p.DateOfBirth = e.DateOfBirth.Format(dateLayout)
	}
	if e.Salary != nil {
		n := json.Number(e.Salary.String())
		p.Salary = &n
	}
	return p
}

// ListEmployees fetches every employee record.
func (c *Client) ListEmployees(ctx context.Context) ([]hr.Employee, error) {
	var wires []employeeWire
	if err := c.do(ctx, call{op: "list employees", method: http.MethodGet, path: "/api/employees", out: &wires, protected: true}); err != nil {
		return nil, err
	}
	out := make([]hr.Employee, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.employee())
	}
	return out, nil
}

func (c *Client) CreateEmployee(ctx context.Context, e hr.Employee) (hr.Employee, error) {
	var out employeeWire
	err := c.do(ctx, call{op: "create employee", method: http.MethodPost, path: "/api/employees", body: employeePayloadOf(e), out: &out, protected: true})
	if err != nil {
		return hr.Employee{}, err
	}
	return out.employee(), nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, e hr.Employee) (hr.Employee, error) {
	var out employeeWire
	err := c.do(ctx, call{op: "update employee", method: http.MethodPut, path: "/api/employees/" + url.PathEscape(id), body: employeePayloadOf(e), out: &out, protected: true})
	if err != nil {
		return hr.Employee{}, err
	}
	return out.employee(), nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "delete employee", method: http.MethodDelete, path: "/api/employees/" + url.PathEscape(id), protected: true})
}
