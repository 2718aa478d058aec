package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// ChargeFilter represents filter options for charge queries
type ChargeFilter struct {
	shared.Filter
	SpaceID   *uuid.UUID
	BookingID *uuid.UUID
	SpaceKind *OwnerKind
	Concept   *ChargeConcept
	Status    *ChargeStatus
	Period    *valueobject.Period
	IsPartial *bool
	DueFrom   *time.Time
	DueTo     *time.Time
}

// ChargeRepository defines the persistence contract for charges
type ChargeRepository interface {
	Save(ctx context.Context, charge *Charge) error
	FindByID(ctx context.Context, id uuid.UUID) (*Charge, error)
	FindByCode(ctx context.Context, code string) (*Charge, error)
	FindAll(ctx context.Context, filter ChargeFilter) ([]*Charge, int64, error)
	FindDueBetween(ctx context.Context, from, to time.Time) ([]*Charge, error)
	FindChildren(ctx context.Context, principalID uuid.UUID) ([]*Charge, error)
	CountChildren(ctx context.Context, principalID uuid.UUID) (int64, error)
	ExistsForSpacePeriod(ctx context.Context, spaceID uuid.UUID, period valueobject.Period) (bool, error)
	SumPaidByBooking(ctx context.Context, bookingID uuid.UUID) (valueobject.Money, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecurringTemplateRepository defines the persistence contract for templates
type RecurringTemplateRepository interface {
	Save(ctx context.Context, template *RecurringTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*RecurringTemplate, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*RecurringTemplate, int64, error)
	FindActive(ctx context.Context) ([]*RecurringTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecurringInstanceRepository defines the persistence contract for
// materialized recurring instances
type RecurringInstanceRepository interface {
	Save(ctx context.Context, instance *RecurringInstance) error
	FindByID(ctx context.Context, id uuid.UUID) (*RecurringInstance, error)
	FindByTemplateAndPeriod(ctx context.Context, templateID uuid.UUID, period valueobject.Period) (*RecurringInstance, error)
	FindByPeriod(ctx context.Context, period valueobject.Period) ([]*RecurringInstance, error)
	ExistsForPeriod(ctx context.Context, templateID uuid.UUID, period valueobject.Period) (bool, error)
}

// SequenceAllocator hands out the next code of a family. Allocation is
// atomic: two concurrent callers never receive the same code.
type SequenceAllocator interface {
	Next(ctx context.Context, family CodeFamily) (string, error)
}

// ObligationKind names the ledgers the obligation checker knows about
type ObligationKind string

const (
	ObligationRent     ObligationKind = "RENT"
	ObligationService  ObligationKind = "SERVICE"
	ObligationEmployee ObligationKind = "EMPLOYEE"
)

// ObligationChecker answers whether an obligation is already covered
// for a period. Implementations consult both the legacy per-owner
// ledger and the charge ledger; a record in either satisfies it.
type ObligationChecker interface {
	IsSatisfied(ctx context.Context, kind ObligationKind, ownerID uuid.UUID, period valueobject.Period) (bool, error)
	SatisfiedSet(ctx context.Context, kind ObligationKind, ownerIDs []uuid.UUID, period valueobject.Period) (map[uuid.UUID]bool, error)
}
