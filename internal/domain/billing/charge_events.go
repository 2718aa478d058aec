package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// Event type constants
const (
	EventChargeRegistered        = "billing.charge.registered"
	EventChargeUpdated           = "billing.charge.updated"
	EventChargeSettled           = "billing.charge.settled"
	EventChargeDeleted           = "billing.charge.deleted"
	EventPartialPaymentRegistered = "billing.charge.partial_payment_registered"
	EventRecurringMaterialized   = "billing.recurring.materialized"
)

// ChargeRegisteredEvent is raised when a new charge enters the ledger
type ChargeRegisteredEvent struct {
	shared.BaseDomainEvent
	Code         string            `json:"code"`
	SpaceID      uuid.UUID         `json:"space_id"`
	Concept      ChargeConcept     `json:"concept"`
	AgreedAmount valueobject.Money `json:"agreed_amount"`
	PaidAmount   valueobject.Money `json:"paid_amount"`
	Status       ChargeStatus      `json:"status"`
	DueDate      time.Time         `json:"due_date"`
}

// NewChargeRegisteredEvent creates a new ChargeRegisteredEvent
func NewChargeRegisteredEvent(c *Charge) *ChargeRegisteredEvent {
	return &ChargeRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventChargeRegistered, "Charge", c.ID),
		Code:            c.Code,
		SpaceID:         c.SpaceID,
		Concept:         c.Concept,
		AgreedAmount:    c.AgreedAmount,
		PaidAmount:      c.PaidAmount,
		Status:          c.Status,
		DueDate:         c.DueDate,
	}
}

// ChargeUpdatedEvent is raised when a charge's amounts or dates change
type ChargeUpdatedEvent struct {
	shared.BaseDomainEvent
	Code           string            `json:"code"`
	PreviousStatus ChargeStatus      `json:"previous_status"`
	Status         ChargeStatus      `json:"status"`
	Difference     valueobject.Money `json:"difference"`
}

// NewChargeUpdatedEvent creates a new ChargeUpdatedEvent
func NewChargeUpdatedEvent(c *Charge, previous ChargeStatus) *ChargeUpdatedEvent {
	return &ChargeUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventChargeUpdated, "Charge", c.ID),
		Code:            c.Code,
		PreviousStatus:  previous,
		Status:          c.Status,
		Difference:      c.Difference,
	}
}

// ChargeSettledEvent is raised when a charge reaches PAID
type ChargeSettledEvent struct {
	shared.BaseDomainEvent
	Code      string     `json:"code"`
	PaidDate  *time.Time `json:"paid_date,omitempty"`
	DaysDelta *int       `json:"days_delta,omitempty"`
}

// NewChargeSettledEvent creates a new ChargeSettledEvent
func NewChargeSettledEvent(c *Charge) *ChargeSettledEvent {
	return &ChargeSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventChargeSettled, "Charge", c.ID),
		Code:            c.Code,
		PaidDate:        c.PaidDate,
		DaysDelta:       c.DaysDelta,
	}
}

// PartialPaymentRegisteredEvent is raised when an installment is attached
// to a partially collected principal
type PartialPaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	Code          string            `json:"code"`
	PrincipalID   uuid.UUID         `json:"principal_id"`
	PrincipalCode string            `json:"principal_code"`
	Amount        valueobject.Money `json:"amount"`
	PaidDate      *time.Time        `json:"paid_date,omitempty"`
}

// NewPartialPaymentRegisteredEvent creates a new PartialPaymentRegisteredEvent
func NewPartialPaymentRegisteredEvent(child, principal *Charge) *PartialPaymentRegisteredEvent {
	return &PartialPaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPartialPaymentRegistered, "Charge", child.ID),
		Code:            child.Code,
		PrincipalID:     principal.ID,
		PrincipalCode:   principal.Code,
		Amount:          child.PaidAmount,
		PaidDate:        child.PaidDate,
	}
}
