package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// OwnerKind distinguishes which kind of space a charge bills against
type OwnerKind string

const (
	OwnerRental OwnerKind = "RENTAL"
	OwnerAirbnb OwnerKind = "AIRBNB"
)

// IsValid checks whether the owner kind is known
func (k OwnerKind) IsValid() bool {
	return k == OwnerRental || k == OwnerAirbnb
}

// ChargeConcept classifies what a charge collects
type ChargeConcept string

const (
	ConceptRent   ChargeConcept = "RENT"
	ConceptAirbnb ChargeConcept = "AIRBNB"
	ConceptOther  ChargeConcept = "OTHER"
)

// IsValid checks whether the concept is known
func (c ChargeConcept) IsValid() bool {
	return c == ConceptRent || c == ConceptAirbnb || c == ConceptOther
}

// ChargeStatus represents the collection state of a charge
type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "PENDING"
	ChargeStatusPartial ChargeStatus = "PARTIAL"
	ChargeStatusPaid    ChargeStatus = "PAID"
)

// IsValid checks whether the status is known
func (s ChargeStatus) IsValid() bool {
	return s == ChargeStatusPending || s == ChargeStatusPartial || s == ChargeStatusPaid
}

// PaymentMethod records how money was received
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodCard     PaymentMethod = "CARD"
	MethodYape     PaymentMethod = "YAPE"
	MethodOther    PaymentMethod = "OTHER"
)

// Charge is the central ledger aggregate. Each charge records the agreed
// amount for an obligation, the amount actually received, and the signed
// difference between them (paid minus agreed, so underpayment is negative).
type Charge struct {
	shared.BaseAggregateRoot
	Code            string                `gorm:"uniqueIndex;not null;size:20" json:"code"`
	SpaceID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"space_id"`
	SpaceKind       OwnerKind             `gorm:"not null;size:10" json:"space_kind"`
	BookingID       *uuid.UUID            `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	Concept         ChargeConcept         `gorm:"not null;size:10" json:"concept"`
	ConceptLabel    string                `gorm:"size:120" json:"concept_label,omitempty"`
	Period          *valueobject.Period   `gorm:"size:7;index" json:"period,omitempty"`
	AgreedAmount    valueobject.Money     `gorm:"type:decimal(18,2);not null" json:"agreed_amount"`
	PaidAmount      valueobject.Money     `gorm:"type:decimal(18,2);not null" json:"paid_amount"`
	Difference      valueobject.Money     `gorm:"type:decimal(18,2);not null" json:"difference"`
	DueDate         time.Time             `gorm:"not null;index" json:"due_date"`
	PaidDate        *time.Time            `json:"paid_date,omitempty"`
	PaymentMethod   PaymentMethod         `gorm:"size:20" json:"payment_method,omitempty"`
	Reference       string                `gorm:"size:200" json:"reference,omitempty"`
	Status          ChargeStatus          `gorm:"not null;size:10;index" json:"status"`
	IsPartial       bool                  `gorm:"not null;default:false" json:"is_partial"`
	RelatedChargeID *uuid.UUID            `gorm:"type:uuid;index" json:"related_charge_id,omitempty"`
	DaysDelta       *int                  `json:"days_delta,omitempty"`
}

// TableName specifies the database table name
func (Charge) TableName() string {
	return "charges"
}

// DeriveStatus maps a paid-minus-agreed difference to a charge status.
// Exact payment and overpayment both settle the charge; underpayment
// leaves it partially collected.
func DeriveStatus(difference valueobject.Money) ChargeStatus {
	if difference.IsNegative() {
		return ChargeStatusPartial
	}
	return ChargeStatusPaid
}

// NewCharge creates a charge with a status derived from its amounts.
// paidDate may be nil for charges registered before any money arrives.
func NewCharge(
	code string,
	spaceID uuid.UUID,
	spaceKind OwnerKind,
	concept ChargeConcept,
	conceptLabel string,
	period *valueobject.Period,
	agreed valueobject.Money,
	paid valueobject.Money,
	dueDate time.Time,
	paidDate *time.Time,
	method PaymentMethod,
	reference string,
) (*Charge, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "charge code is required")
	}
	if spaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "space is required")
	}
	if !spaceKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown space kind %q", spaceKind))
	}
	if !concept.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown concept %q", concept))
	}
	if period != nil && !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid period %q", *period))
	}
	if !agreed.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "agreed amount must be greater than zero")
	}
	if paid.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "paid amount cannot be negative")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "due date is required")
	}

	difference, err := paid.Subtract(agreed)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	charge := &Charge{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		SpaceID:           spaceID,
		SpaceKind:         spaceKind,
		Concept:           concept,
		ConceptLabel:      conceptLabel,
		Period:            period,
		AgreedAmount:      agreed,
		PaidAmount:        paid,
		Difference:        difference,
		DueDate:           dueDate,
		PaidDate:          paidDate,
		PaymentMethod:     method,
		Reference:         reference,
		Status:            DeriveStatus(difference),
	}
	charge.refreshDaysDelta(ChargeStatusPending)

	charge.AddDomainEvent(NewChargeRegisteredEvent(charge))
	return charge, nil
}

// newPartialCharge creates a child installment hanging off a principal.
// The child records only the installment it represents and stays PARTIAL
// forever; settlement is tracked on the principal.
func newPartialCharge(
	principal *Charge,
	code string,
	amount valueobject.Money,
	paidDate time.Time,
	method PaymentMethod,
	reference string,
) *Charge {
	pd := paidDate
	child := &Charge{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		SpaceID:           principal.SpaceID,
		SpaceKind:         principal.SpaceKind,
		BookingID:         principal.BookingID,
		Concept:           principal.Concept,
		ConceptLabel:      principal.ConceptLabel,
		Period:            principal.Period,
		AgreedAmount:      amount,
		PaidAmount:        amount,
		Difference:        valueobject.Zero(amount.Currency()),
		DueDate:           principal.DueDate,
		PaidDate:          &pd,
		PaymentMethod:     method,
		Reference:         reference,
		Status:            ChargeStatusPartial,
		IsPartial:         true,
		RelatedChargeID:   &principal.ID,
	}
	child.AddDomainEvent(NewPartialPaymentRegisteredEvent(child, principal))
	return child
}

// PaymentUpdate carries the mutable fields of a charge. Nil pointers
// leave the current value untouched.
type PaymentUpdate struct {
	AgreedAmount  *valueobject.Money
	PaidAmount    *valueobject.Money
	DueDate       *time.Time
	PaidDate      *time.Time
	PaymentMethod *PaymentMethod
	Reference     *string
	Status        *ChargeStatus
	ConceptLabel  *string
}

// ApplyPaymentUpdate mutates the charge and recomputes its difference.
// The status is never re-derived here: an operator correcting amounts
// keeps the status they see unless they change it explicitly.
func (c *Charge) ApplyPaymentUpdate(update PaymentUpdate) error {
	previous := c.Status

	if update.AgreedAmount != nil {
		if !update.AgreedAmount.IsPositive() {
			return shared.NewDomainError("INVALID_INPUT", "agreed amount must be greater than zero")
		}
		c.AgreedAmount = *update.AgreedAmount
	}
	if update.PaidAmount != nil {
		if update.PaidAmount.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "paid amount cannot be negative")
		}
		c.PaidAmount = *update.PaidAmount
	}
	if update.DueDate != nil {
		if update.DueDate.IsZero() {
			return shared.NewDomainError("INVALID_INPUT", "due date cannot be empty")
		}
		c.DueDate = *update.DueDate
	}
	if update.PaidDate != nil {
		c.PaidDate = update.PaidDate
	}
	if update.PaymentMethod != nil {
		c.PaymentMethod = *update.PaymentMethod
	}
	if update.Reference != nil {
		c.Reference = *update.Reference
	}
	if update.ConceptLabel != nil {
		c.ConceptLabel = *update.ConceptLabel
	}
	if update.Status != nil {
		if !update.Status.IsValid() {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown status %q", *update.Status))
		}
		c.Status = *update.Status
	}

	difference, err := c.PaidAmount.Subtract(c.AgreedAmount)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	c.Difference = difference
	c.refreshDaysDelta(previous)
	c.IncrementVersion()

	c.AddDomainEvent(NewChargeUpdatedEvent(c, previous))
	return nil
}

// markSettled flips a partially collected principal to PAID once its
// installment chain reaches the agreed total.
func (c *Charge) markSettled(settledOn time.Time) {
	previous := c.Status
	c.Status = ChargeStatusPaid
	if c.PaidDate == nil {
		d := settledOn
		c.PaidDate = &d
	}
	c.refreshDaysDelta(previous)
	c.IncrementVersion()
	c.AddDomainEvent(NewChargeSettledEvent(c))
}

// refreshDaysDelta records how early or late the charge was settled.
// Positive means paid after the due date.
func (c *Charge) refreshDaysDelta(previous ChargeStatus) {
	if c.Status != ChargeStatusPaid || previous == ChargeStatusPaid {
		return
	}
	if c.PaidDate == nil || c.DueDate.IsZero() {
		return
	}
	delta := int(dateOnly(*c.PaidDate).Sub(dateOnly(c.DueDate)).Hours() / 24)
	c.DaysDelta = &delta
}

// IsSettled reports whether the charge is fully collected
func (c *Charge) IsSettled() bool {
	return c.Status == ChargeStatusPaid
}

// IsOverdue reports whether the charge is unsettled past its due date
func (c *Charge) IsOverdue(today time.Time) bool {
	return c.Status != ChargeStatusPaid && dateOnly(c.DueDate).Before(dateOnly(today))
}

// dateOnly truncates a time to midnight UTC for calendar-day comparison
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
