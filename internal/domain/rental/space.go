package rental

import (
	"fmt"

	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// SpaceKind distinguishes long-term rentals from short-stay units
type SpaceKind string

const (
	SpaceRental SpaceKind = "RENTAL"
	SpaceAirbnb SpaceKind = "AIRBNB"
)

// IsValid checks whether the kind is known
func (k SpaceKind) IsValid() bool {
	return k == SpaceRental || k == SpaceAirbnb
}

// Space is a rentable unit: an apartment, room or short-stay loft.
// Rental spaces carry the payer and monthly terms the reconciler uses
// to synthesize pending bills.
type Space struct {
	shared.BaseAggregateRoot
	Label          string            `gorm:"not null;size:120" json:"label"`
	Kind           SpaceKind         `gorm:"not null;size:10;index" json:"kind"`
	PayerName      string            `gorm:"size:120" json:"payer_name,omitempty"`
	PayDay         int               `gorm:"not null;default:0" json:"pay_day"`
	MonthlyAmount  valueobject.Money `gorm:"type:decimal(18,2);not null" json:"monthly_amount"`
	DefaultConcept string            `gorm:"not null;size:10;default:'RENT'" json:"default_concept"`
	Notes          string            `gorm:"size:500" json:"notes,omitempty"`
	Active         bool              `gorm:"not null" json:"active"`
}

// TableName specifies the database table name
func (Space) TableName() string {
	return "spaces"
}

// NewSpace creates a rentable unit
func NewSpace(label string, kind SpaceKind, payerName string, payDay int, monthlyAmount valueobject.Money, defaultConcept string) (*Space, error) {
	if label == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "space label is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown space kind %q", kind))
	}
	if payDay < 0 || payDay > 31 {
		return nil, shared.NewDomainError("INVALID_INPUT", "pay day must be between 0 and 31")
	}
	if monthlyAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "monthly amount cannot be negative")
	}
	if defaultConcept == "" {
		defaultConcept = "RENT"
	}
	return &Space{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Label:             label,
		Kind:              kind,
		PayerName:         payerName,
		PayDay:            payDay,
		MonthlyAmount:     monthlyAmount,
		DefaultConcept:    defaultConcept,
		Active:            true,
	}, nil
}

// AssignPayer sets or replaces the monthly payer and terms
func (s *Space) AssignPayer(name string, payDay int, monthlyAmount valueobject.Money) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "payer name is required")
	}
	if payDay < 1 || payDay > 31 {
		return shared.NewDomainError("INVALID_INPUT", "pay day must be between 1 and 31")
	}
	if !monthlyAmount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "monthly amount must be greater than zero")
	}
	s.PayerName = name
	s.PayDay = payDay
	s.MonthlyAmount = monthlyAmount
	s.IncrementVersion()
	return nil
}

// ReleasePayer clears the payer when a tenant moves out
func (s *Space) ReleasePayer() {
	s.PayerName = ""
	s.PayDay = 0
	s.IncrementVersion()
}

// Deactivate takes the space out of reconciliation and the calendar
func (s *Space) Deactivate() {
	s.Active = false
	s.IncrementVersion()
}

// Activate puts the space back into service
func (s *Space) Activate() {
	s.Active = true
	s.IncrementVersion()
}

// HasMonthlyObligation reports whether the reconciler should expect a
// charge for this space every month
func (s *Space) HasMonthlyObligation() bool {
	return s.Active && s.Kind == SpaceRental && s.PayerName != "" && s.PayDay >= 1
}
