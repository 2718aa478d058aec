package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// Cadence is how often a recurring obligation comes due
type Cadence string

const (
	CadenceMonthly  Cadence = "MONTHLY"
	CadenceBiweekly Cadence = "BIWEEKLY"
	CadenceWeekly   Cadence = "WEEKLY"
	CadenceAnnual   Cadence = "ANNUAL"
)

// IsValid checks whether the cadence is known
func (c Cadence) IsValid() bool {
	switch c {
	case CadenceMonthly, CadenceBiweekly, CadenceWeekly, CadenceAnnual:
		return true
	}
	return false
}

// RecurringTemplate describes an ad-hoc recurring obligation (insurance,
// utilities not tied to a space, subscriptions). Instances are projected
// month by month and only persisted once money actually moves.
type RecurringTemplate struct {
	shared.BaseAggregateRoot
	Code      string            `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Payee     string            `gorm:"not null;size:120" json:"payee"`
	Detail    string            `gorm:"size:200" json:"detail,omitempty"`
	Amount    valueobject.Money `gorm:"type:decimal(18,2);not null" json:"amount"`
	Variable  bool              `gorm:"not null;default:false" json:"variable"`
	Cadence   Cadence           `gorm:"not null;size:10" json:"cadence"`
	PayDay    int               `gorm:"not null" json:"pay_day"`
	StartDate time.Time         `gorm:"not null" json:"start_date"`
	EndDate   *time.Time        `json:"end_date,omitempty"`
	Active    bool              `gorm:"not null" json:"active"`
}

// TableName specifies the database table name
func (RecurringTemplate) TableName() string {
	return "recurring_templates"
}

// NewRecurringTemplate creates a recurring obligation template
func NewRecurringTemplate(
	code string,
	payee string,
	detail string,
	amount valueobject.Money,
	variable bool,
	cadence Cadence,
	payDay int,
	startDate time.Time,
	endDate *time.Time,
) (*RecurringTemplate, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "template code is required")
	}
	if payee == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "payee is required")
	}
	if !cadence.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown cadence %q", cadence))
	}
	if payDay < 1 || payDay > 31 {
		return nil, shared.NewDomainError("INVALID_INPUT", "pay day must be between 1 and 31")
	}
	if !variable && !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "amount must be greater than zero unless the template is variable")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "start date is required")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, shared.NewDomainError("INVALID_INPUT", "end date cannot precede start date")
	}
	return &RecurringTemplate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Payee:             payee,
		Detail:            detail,
		Amount:            amount,
		Variable:          variable,
		Cadence:           cadence,
		PayDay:            payDay,
		StartDate:         startDate,
		EndDate:           endDate,
		Active:            true,
	}, nil
}

// Deactivate stops future projections without touching history
func (t *RecurringTemplate) Deactivate() {
	t.Active = false
	t.IncrementVersion()
}

// Activate re-enables projections
func (t *RecurringTemplate) Activate() {
	t.Active = true
	t.IncrementVersion()
}

// withinWindow reports whether a candidate due date falls inside the
// template's active window [start, end].
func (t *RecurringTemplate) withinWindow(d time.Time) bool {
	if dateOnly(d).Before(dateOnly(t.StartDate)) {
		return false
	}
	if t.EndDate != nil && dateOnly(d).After(dateOnly(*t.EndDate)) {
		return false
	}
	return true
}

// DueDateFor computes when the template comes due in a given month.
// MONTHLY templates fall on their pay day; ANNUAL templates only in the
// month of their start date, on the start date's day. WEEKLY and
// BIWEEKLY have no single due date at month granularity and project to
// nothing rather than guessing one.
func (t *RecurringTemplate) DueDateFor(year int, month time.Month) *time.Time {
	var candidate time.Time
	switch t.Cadence {
	case CadenceMonthly:
		candidate = time.Date(year, month, t.PayDay, 0, 0, 0, 0, time.UTC)
		if candidate.Month() != month {
			return nil
		}
	case CadenceAnnual:
		if month != t.StartDate.Month() {
			return nil
		}
		candidate = time.Date(year, month, t.StartDate.Day(), 0, 0, 0, 0, time.UTC)
		if candidate.Month() != month {
			return nil
		}
	default:
		return nil
	}
	if !t.withinWindow(candidate) {
		return nil
	}
	return &candidate
}

// RecurringInstance is a persisted materialization of a template for one
// period, created once the payment is actually recorded.
type RecurringInstance struct {
	shared.BaseAggregateRoot
	TemplateID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_recurring_instance_period" json:"template_id"`
	Period     valueobject.Period `gorm:"size:7;not null;uniqueIndex:idx_recurring_instance_period" json:"period"`
	Amount     valueobject.Money  `gorm:"type:decimal(18,2);not null" json:"amount"`
	DueDate    time.Time          `gorm:"not null" json:"due_date"`
	PaidDate   *time.Time         `json:"paid_date,omitempty"`
	Method     PaymentMethod      `gorm:"size:20" json:"method,omitempty"`
	Reference  string             `gorm:"size:200" json:"reference,omitempty"`
}

// TableName specifies the database table name
func (RecurringInstance) TableName() string {
	return "recurring_instances"
}

// NewRecurringInstance materializes a template for one period
func NewRecurringInstance(
	template *RecurringTemplate,
	period valueobject.Period,
	amount valueobject.Money,
	dueDate time.Time,
	paidDate *time.Time,
	method PaymentMethod,
	reference string,
) (*RecurringInstance, error) {
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid period %q", period))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "amount must be greater than zero")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "due date is required")
	}
	inst := &RecurringInstance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TemplateID:        template.ID,
		Period:            period,
		Amount:            amount,
		DueDate:           dueDate,
		PaidDate:          paidDate,
		Method:            method,
		Reference:         reference,
	}
	inst.AddDomainEvent(&RecurringMaterializedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventRecurringMaterialized, "RecurringInstance", inst.ID),
		TemplateID:      template.ID,
		TemplateCode:    template.Code,
		Period:          period,
		Amount:          amount,
	})
	return inst, nil
}

// RecurringMaterializedEvent is raised when a projected instance is persisted
type RecurringMaterializedEvent struct {
	shared.BaseDomainEvent
	TemplateID   uuid.UUID          `json:"template_id"`
	TemplateCode string             `json:"template_code"`
	Period       valueobject.Period `json:"period"`
	Amount       valueobject.Money  `json:"amount"`
}

// VirtualInstance is a projected, non-persisted occurrence of a template
// for one month. Variable templates project with a zero amount until the
// real figure is known.
type VirtualInstance struct {
	TemplateID   uuid.UUID          `json:"template_id"`
	TemplateCode string             `json:"template_code"`
	Payee        string             `json:"payee"`
	Detail       string             `json:"detail,omitempty"`
	Amount       valueobject.Money  `json:"amount"`
	Variable     bool               `json:"variable"`
	DueDate      time.Time          `json:"due_date"`
	Period       valueobject.Period `json:"period"`
	Calculated   bool               `json:"calculated"`
}

// Project computes the virtual occurrence of a template for a month.
// It returns nil when the template is inactive, has no due date that
// month, or alreadyGenerated reports a persisted instance for the
// period. Projection is pure and safe to recompute on every request.
func Project(template *RecurringTemplate, year int, month time.Month, alreadyGenerated bool) *VirtualInstance {
	if template == nil || !template.Active {
		return nil
	}
	if alreadyGenerated {
		return nil
	}
	due := template.DueDateFor(year, month)
	if due == nil {
		return nil
	}
	amount := template.Amount
	if template.Variable {
		currency := template.Amount.Currency()
		if currency == "" {
			currency = valueobject.DefaultCurrency
		}
		amount = valueobject.Zero(currency)
	}
	return &VirtualInstance{
		TemplateID:   template.ID,
		TemplateCode: template.Code,
		Payee:        template.Payee,
		Detail:       template.Detail,
		Amount:       amount,
		Variable:     template.Variable,
		DueDate:      *due,
		Period:       valueobject.NewPeriod(year, month),
		Calculated:   true,
	}
}
