package billing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// SpaceBillingInfo is the slice of a rental space the billing domain
// needs. The application layer builds it from the rental aggregates so
// this package never depends on them directly.
type SpaceBillingInfo struct {
	ID             uuid.UUID
	Label          string
	Kind           OwnerKind
	PayerName      string
	PayDay         int
	MonthlyAmount  valueobject.Money
	DefaultConcept ChargeConcept
	Active         bool
}

// Bill is one line of a monthly statement: either a persisted charge or
// a synthesized pending entry for a space nobody has billed yet.
type Bill struct {
	ChargeID     *uuid.UUID         `json:"charge_id,omitempty"`
	Code         string             `json:"code,omitempty"`
	SpaceID      uuid.UUID          `json:"space_id"`
	SpaceLabel   string             `json:"space_label"`
	SpaceKind    OwnerKind          `json:"space_kind"`
	Concept      ChargeConcept      `json:"concept"`
	ConceptLabel string             `json:"concept_label,omitempty"`
	Period       valueobject.Period `json:"period"`
	AgreedAmount valueobject.Money  `json:"agreed_amount"`
	PaidAmount   valueobject.Money  `json:"paid_amount"`
	Difference   valueobject.Money  `json:"difference"`
	DueDate      time.Time          `json:"due_date"`
	Status       ChargeStatus       `json:"status"`
	Virtual      bool               `json:"virtual"`
}

// ReconciliationService merges the persisted ledger with synthesized
// pending entries for one month. Pure: it works only on the records it
// is handed and can be recomputed on every request.
type ReconciliationService struct{}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService() *ReconciliationService {
	return &ReconciliationService{}
}

// ReconcileMonth builds the monthly statement. charges must be every
// persisted charge due in the target month; spaces every rental space.
// periodCovered holds space ids that already have a persisted charge
// tagged with the target period regardless of its due date. A space
// covered either way is never synthesized again, so no (space, period)
// pair appears twice.
func (s *ReconciliationService) ReconcileMonth(
	year int,
	month time.Month,
	charges []*Charge,
	spaces []SpaceBillingInfo,
	periodCovered map[uuid.UUID]bool,
) []Bill {
	period := valueobject.NewPeriod(year, month)
	labels := make(map[uuid.UUID]SpaceBillingInfo, len(spaces))
	for _, sp := range spaces {
		labels[sp.ID] = sp
	}

	bills := make([]Bill, 0, len(charges))
	covered := make(map[uuid.UUID]bool, len(charges)+len(periodCovered))
	for id, ok := range periodCovered {
		if ok {
			covered[id] = true
		}
	}
	for _, c := range charges {
		bill := Bill{
			ChargeID:     &c.ID,
			Code:         c.Code,
			SpaceID:      c.SpaceID,
			SpaceLabel:   c.ConceptLabel,
			SpaceKind:    c.SpaceKind,
			Concept:      c.Concept,
			ConceptLabel: c.ConceptLabel,
			Period:       period,
			AgreedAmount: c.AgreedAmount,
			PaidAmount:   c.PaidAmount,
			Difference:   c.Difference,
			DueDate:      c.DueDate,
			Status:       c.Status,
		}
		if sp, ok := labels[c.SpaceID]; ok {
			bill.SpaceLabel = sp.Label
			bill.SpaceKind = sp.Kind
		}
		if c.Period != nil {
			bill.Period = *c.Period
		}
		bills = append(bills, bill)
		if c.Period == nil || *c.Period == period {
			covered[c.SpaceID] = true
		}
	}

	for _, sp := range spaces {
		if !sp.Active || sp.Kind != OwnerRental {
			continue
		}
		if sp.PayerName == "" || sp.PayDay < 1 {
			continue
		}
		if covered[sp.ID] {
			continue
		}
		due := time.Date(year, month, sp.PayDay, 0, 0, 0, 0, time.UTC)
		if due.Month() != month {
			continue
		}
		zero := valueobject.Zero(sp.MonthlyAmount.Currency())
		bills = append(bills, Bill{
			SpaceID:      sp.ID,
			SpaceLabel:   sp.Label,
			SpaceKind:    sp.Kind,
			Concept:      sp.DefaultConcept,
			Period:       period,
			AgreedAmount: sp.MonthlyAmount,
			PaidAmount:   zero,
			Difference:   zero.MustSubtract(sp.MonthlyAmount),
			DueDate:      due,
			Status:       ChargeStatusPending,
			Virtual:      true,
		})
	}

	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].DueDate.Before(bills[j].DueDate)
	})
	return bills
}
