package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// ReconcileService builds the monthly statement by merging the charge
// ledger with synthesized pending bills
type ReconcileService struct {
	chargeRepo billing.ChargeRepository
	spaceRepo  rental.SpaceRepository
	reconciler *billing.ReconciliationService
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	chargeRepo billing.ChargeRepository,
	spaceRepo rental.SpaceRepository,
) *ReconcileService {
	return &ReconcileService{
		chargeRepo: chargeRepo,
		spaceRepo:  spaceRepo,
		reconciler: billing.NewReconciliationService(),
	}
}

// spaceBillingInfo maps a rental space to the billing read model
func spaceBillingInfo(sp *rental.Space) billing.SpaceBillingInfo {
	kind := billing.OwnerRental
	if sp.Kind == rental.SpaceAirbnb {
		kind = billing.OwnerAirbnb
	}
	concept := billing.ChargeConcept(sp.DefaultConcept)
	if !concept.IsValid() {
		concept = billing.ConceptRent
	}
	return billing.SpaceBillingInfo{
		ID:             sp.ID,
		Label:          sp.Label,
		Kind:           kind,
		PayerName:      sp.PayerName,
		PayDay:         sp.PayDay,
		MonthlyAmount:  sp.MonthlyAmount,
		DefaultConcept: concept,
		Active:         sp.Active,
	}
}

// ReconcileMonth merges persisted charges due in the month with virtual
// pending bills for spaces nobody has billed for the period yet
func (s *ReconcileService) ReconcileMonth(ctx context.Context, year int, month time.Month) ([]billing.Bill, error) {
	period := valueobject.NewPeriod(year, month)
	charges, err := s.chargeRepo.FindDueBetween(ctx, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to load charges for %s: %w", period, err)
	}

	spaces, _, err := s.spaceRepo.FindAll(ctx, rental.SpaceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load spaces: %w", err)
	}

	infos := make([]billing.SpaceBillingInfo, 0, len(spaces))
	covered := make(map[uuid.UUID]bool)
	for _, sp := range spaces {
		info := spaceBillingInfo(sp)
		infos = append(infos, info)
		if !sp.HasMonthlyObligation() {
			continue
		}
		exists, err := s.chargeRepo.ExistsForSpacePeriod(ctx, sp.ID, period)
		if err != nil {
			return nil, fmt.Errorf("failed to check charges for space %s: %w", sp.Label, err)
		}
		if exists {
			covered[sp.ID] = true
		}
	}

	return s.reconciler.ReconcileMonth(year, month, charges, infos, covered), nil
}
