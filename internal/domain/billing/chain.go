package billing

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ChainService implements the installment rules for partially collected
// charges. It is a pure domain service; persistence happens in the
// application layer inside a single transaction.
type ChainService struct{}

// NewChainService creates a new ChainService
func NewChainService() *ChainService {
	return &ChainService{}
}

// ChainTotal returns the money collected so far across a principal and
// its installments, including the principal's own initial payment.
func (s *ChainService) ChainTotal(principal *Charge, children []*Charge) valueobject.Money {
	total := principal.PaidAmount
	for _, child := range children {
		total = total.MustAdd(child.PaidAmount)
	}
	return total
}

// RegisterPartial attaches a new installment to a partially collected
// principal. The installment inherits the principal's space, concept,
// period and due date, and may never push the chain past the agreed
// total. When the chain reaches the agreed total exactly, the principal
// flips to PAID.
func (s *ChainService) RegisterPartial(
	principal *Charge,
	children []*Charge,
	code string,
	amount valueobject.Money,
	paidDate time.Time,
	method PaymentMethod,
	reference string,
) (*Charge, error) {
	if principal.Status != ChargeStatusPartial {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("charge %s is %s; installments can only be added to a PARTIAL charge",
				principal.Code, principal.Status))
	}
	if principal.IsPartial {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("charge %s is itself an installment; pay against its principal", principal.Code))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "installment amount must be greater than zero")
	}
	if paidDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "installment paid date is required")
	}

	collected := s.ChainTotal(principal, children)
	remaining := principal.AgreedAmount.MustSubtract(collected)
	exceeds, err := amount.GreaterThan(remaining)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if exceeds {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("installment of %s exceeds outstanding balance of %s on charge %s",
				amount.StringFixed(2), remaining.StringFixed(2), principal.Code))
	}

	child := newPartialCharge(principal, code, amount, paidDate, method, reference)

	if collected.MustAdd(amount).Equals(principal.AgreedAmount) {
		principal.markSettled(paidDate)
	}
	return child, nil
}

// ChainPayment is one row of a chain summary
type ChainPayment struct {
	ChargeID  uuid.UUID         `json:"charge_id"`
	Code      string            `json:"code"`
	Amount    valueobject.Money `json:"amount"`
	PaidDate  *time.Time        `json:"paid_date,omitempty"`
	Method    PaymentMethod     `json:"method,omitempty"`
	Reference string            `json:"reference,omitempty"`
	Principal bool              `json:"principal"`
}

// ChainSummary aggregates a principal and its installments
type ChainSummary struct {
	PrincipalID   uuid.UUID         `json:"principal_id"`
	PrincipalCode string            `json:"principal_code"`
	Status        ChargeStatus      `json:"status"`
	AgreedAmount  valueobject.Money `json:"agreed_amount"`
	TotalPaid     valueobject.Money `json:"total_paid"`
	Balance       valueobject.Money `json:"balance"`
	PercentPaid   decimal.Decimal   `json:"percent_paid"`
	Payments      []ChainPayment    `json:"payments"`
}

// SummarizeChain computes the consolidated view of a principal and its
// installments: total collected, outstanding balance, percentage paid,
// and every payment with the principal first and installments ordered
// by paid date.
func (s *ChainService) SummarizeChain(principal *Charge, children []*Charge) ChainSummary {
	totalPaid := s.ChainTotal(principal, children)
	balance := principal.AgreedAmount.MustSubtract(totalPaid)

	percent := decimal.Zero
	if !principal.AgreedAmount.IsZero() {
		percent = totalPaid.Amount().
			Div(principal.AgreedAmount.Amount()).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	sorted := make([]*Charge, len(children))
	copy(sorted, children)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PaidDate, sorted[j].PaidDate
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Before(*b)
	})

	payments := make([]ChainPayment, 0, len(sorted)+1)
	payments = append(payments, ChainPayment{
		ChargeID:  principal.ID,
		Code:      principal.Code,
		Amount:    principal.PaidAmount,
		PaidDate:  principal.PaidDate,
		Method:    principal.PaymentMethod,
		Reference: principal.Reference,
		Principal: true,
	})
	for _, child := range sorted {
		payments = append(payments, ChainPayment{
			ChargeID:  child.ID,
			Code:      child.Code,
			Amount:    child.PaidAmount,
			PaidDate:  child.PaidDate,
			Method:    child.PaymentMethod,
			Reference: child.Reference,
		})
	}

	return ChainSummary{
		PrincipalID:   principal.ID,
		PrincipalCode: principal.Code,
		Status:        principal.Status,
		AgreedAmount:  principal.AgreedAmount,
		TotalPaid:     totalPaid,
		Balance:       balance,
		PercentPaid:   percent,
		Payments:      payments,
	}
}
