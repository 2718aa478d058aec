package rental

import (
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// ServiceAccount is a recurring utility or provider the household pays
// every month (water, power, internet). The calendar surfaces it until
// a payment record exists for the period.
type ServiceAccount struct {
	shared.BaseAggregateRoot
	Name          string            `gorm:"not null;size:120" json:"name"`
	Provider      string            `gorm:"size:120" json:"provider,omitempty"`
	PayDay        int               `gorm:"not null" json:"pay_day"`
	MonthlyAmount valueobject.Money `gorm:"type:decimal(18,2);not null" json:"monthly_amount"`
	Active        bool              `gorm:"not null" json:"active"`
}

// TableName specifies the database table name
func (ServiceAccount) TableName() string {
	return "service_accounts"
}

// NewServiceAccount creates a monthly service obligation
func NewServiceAccount(name, provider string, payDay int, monthlyAmount valueobject.Money) (*ServiceAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "service name is required")
	}
	if payDay < 1 || payDay > 31 {
		return nil, shared.NewDomainError("INVALID_INPUT", "pay day must be between 1 and 31")
	}
	return &ServiceAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Provider:          provider,
		PayDay:            payDay,
		MonthlyAmount:     monthlyAmount,
		Active:            true,
	}, nil
}

// Employee is a salaried worker paid monthly (cleaner, doorman)
type Employee struct {
	shared.BaseAggregateRoot
	Name   string            `gorm:"not null;size:120" json:"name"`
	Role   string            `gorm:"size:80" json:"role,omitempty"`
	PayDay int               `gorm:"not null" json:"pay_day"`
	Salary valueobject.Money `gorm:"type:decimal(18,2);not null" json:"salary"`
	Active bool              `gorm:"not null" json:"active"`
}

// TableName specifies the database table name
func (Employee) TableName() string {
	return "employees"
}

// NewEmployee creates a monthly payroll obligation
func NewEmployee(name, role string, payDay int, salary valueobject.Money) (*Employee, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "employee name is required")
	}
	if payDay < 1 || payDay > 31 {
		return nil, shared.NewDomainError("INVALID_INPUT", "pay day must be between 1 and 31")
	}
	if !salary.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "salary must be greater than zero")
	}
	return &Employee{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Role:              role,
		PayDay:            payDay,
		Salary:            salary,
		Active:            true,
	}, nil
}
