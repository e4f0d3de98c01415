// Package hr manages the employee records of the group's companies.
package hr

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Contract types offered by the HR form.
const (
	ContractCDI        = "CDI"
	ContractCDD        = "CDD"
	ContractInternship = "Stage"
	ContractFreelance  = "Freelance"
)

// Employee is one staff record as stored by the backend.
type Employee struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Role         string           `json:"role"`
	CompanySlug  string           `json:"companySlug"`
	CompanyName  string           `json:"companyName,omitempty"`
	DateOfBirth  *time.Time       `json:"dateOfBirth,omitempty"`
	Email        string           `json:"email,omitempty"`
	Nationality  string           `json:"nationality,omitempty"`
	ContractType string           `json:"contractType,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	Address      string           `json:"address,omitempty"`
	Salary       *decimal.Decimal `json:"salary,omitempty"`
	PhotoURL     string           `json:"photoUrl,omitempty"`
}

// EmployeeInput is the submitted employee form.
type EmployeeInput struct {
	Name         string      `json:"name" validate:"required,max=120"`
	Role         string      `json:"role" validate:"required,max=80"`
	CompanySlug  string      `json:"companySlug" validate:"required"`
	DateOfBirth  string      `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Email        string      `json:"email" validate:"omitempty,email"`
	Nationality  string      `json:"nationality" validate:"max=60"`
	ContractType string      `json:"contractType" validate:"omitempty,oneof=CDI CDD Stage Freelance"`
	Phone        string      `json:"phone" validate:"max=30"`
	Address      string      `json:"address" validate:"max=200"`
	Salary       json.Number `json:"salary"`
	PhotoURL     string      `json:"photoUrl" validate:"omitempty,url"`
}
