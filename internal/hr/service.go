package hr

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// Source is the remote store of employee records.
type Source interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	CreateEmployee(ctx context.Context, e Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, id string, e Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// Service exposes employee records over a Source.
type Service struct {
	source Source
	logger *slog.Logger
}

// NewService builds Service.
func NewService(source Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// List returns employees of company (all when empty) whose name, role or
// company name contains query, sorted by name.
func (s *Service) List(ctx context.Context, company, query string) ([]Employee, error) {
	all, err := s.source.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	company = strings.TrimSpace(company)
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Employee, 0, len(all))
	for _, e := range all {
		if company != "" && e.CompanySlug != company {
			continue
		}
		if query != "" && !matches(e, query) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func matches(e Employee, query string) bool {
	for _, field := range []string{e.Name, e.Role, e.CompanyName} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, in EmployeeInput) (Employee, error) {
	emp, err := ValidateEmployee(in)
	if err != nil {
		return Employee{}, err
	}
	created, err := s.source.CreateEmployee(ctx, emp)
	if err != nil {
		return Employee{}, err
	}
	s.logger.Info("employee created", slog.String("id", created.ID), slog.String("company", created.CompanySlug))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in EmployeeInput) (Employee, error) {
	if strings.TrimSpace(id) == "" {
		return Employee{}, fmt.Errorf("hr: employee id required: %w", httpx.ErrValidation)
	}
	emp, err := ValidateEmployee(in)
	if err != nil {
		return Employee{}, err
	}
	emp.ID = id
	return s.source.UpdateEmployee(ctx, id, emp)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("hr: employee id required: %w", httpx.ErrValidation)
	}
	if err := s.source.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.logger.Info("employee deleted", slog.String("id", id))
	return nil
}
